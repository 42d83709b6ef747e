package peersync

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/lojinha-labs/storefront-backend/internal/catalog"
	"github.com/lojinha-labs/storefront-backend/internal/identity"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type mirrorStub struct {
	mu       sync.Mutex
	products []catalog.Product
	calls    int
}

func (m *mirrorStub) ReplaceAll(_ context.Context, products []catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
	m.calls++
	return nil
}

func (m *mirrorStub) snapshot() ([]catalog.Product, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products, m.calls
}

type mergerStub struct {
	mu   sync.Mutex
	locs []identity.Location
}

func (m *mergerStub) MergeLocation(_ context.Context, loc identity.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locs = append(m.locs, loc)
	return nil
}

func TestSendWhenNotOpenDropsSilently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	transport, _ := NewMemoryPair()
	ch := NewChannel(transport, testLogger(), nil)

	if got := ch.State(); got != StateUninitialized {
		t.Fatalf("expected uninitialized, got %s", got)
	}

	ch.Send(ctx, KindProductUpdate, []catalog.Product{})

	stats := ch.Stats()
	if stats.Dropped != 1 || stats.Sent != 0 {
		t.Fatalf("expected silent drop, got %+v", stats)
	}
}

func TestInitializeOpensChannel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	transport, _ := NewMemoryPair()
	ch := NewChannel(transport, testLogger(), nil)

	ch.Initialize(ctx)
	waitFor(t, "open state", func() bool { return ch.State() == StateOpen })

	if err := ch.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	waitFor(t, "closed state", func() bool { return ch.State() == StateClosed })
}

func TestProductUpdateReplacesMirrorAndFiresHookOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	local, remote := NewMemoryPair()
	ch := NewChannel(local, testLogger(), nil)

	mirror := &mirrorStub{}
	hookCount := 0
	var hookMu sync.Mutex
	RegisterStorefrontHandlers(ch, HandlerParams{
		Catalog: mirror,
		OnProductsReplaced: func() {
			hookMu.Lock()
			hookCount++
			hookMu.Unlock()
		},
	})

	ch.Initialize(ctx)
	waitFor(t, "open state", func() bool { return ch.State() == StateOpen })

	if _, err := remote.Dial(ctx); err != nil {
		t.Fatalf("dial remote: %v", err)
	}
	frame := []byte(`{"type":"product_update","payload":[{"id":1,"name":"X","price":9.99}]}`)
	if err := remote.Send(ctx, frame); err != nil {
		t.Fatalf("send frame: %v", err)
	}

	waitFor(t, "mirror replacement", func() bool {
		products, _ := mirror.snapshot()
		return len(products) == 1
	})

	products, calls := mirror.snapshot()
	if products[0].ID != 1 || products[0].Name != "X" || !products[0].Price.Equal(decimal.NewFromFloat(9.99)) {
		t.Fatalf("unexpected mirror contents: %+v", products)
	}
	if calls != 1 {
		t.Fatalf("mirror replaced %d times, want 1", calls)
	}

	hookMu.Lock()
	defer hookMu.Unlock()
	if hookCount != 1 {
		t.Fatalf("re-render hook fired %d times, want 1", hookCount)
	}
}

func TestUserLocationMergesIntoSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	local, remote := NewMemoryPair()
	ch := NewChannel(local, testLogger(), nil)

	merger := &mergerStub{}
	RegisterStorefrontHandlers(ch, HandlerParams{Identity: merger})

	ch.Initialize(ctx)
	waitFor(t, "open state", func() bool { return ch.State() == StateOpen })

	if _, err := remote.Dial(ctx); err != nil {
		t.Fatalf("dial remote: %v", err)
	}
	frame := []byte(`{"type":"user_location","payload":{"latitude":-23.55,"longitude":-46.63,"accuracy":10}}`)
	if err := remote.Send(ctx, frame); err != nil {
		t.Fatalf("send frame: %v", err)
	}

	waitFor(t, "location merge", func() bool {
		merger.mu.Lock()
		defer merger.mu.Unlock()
		return len(merger.locs) == 1
	})

	merger.mu.Lock()
	defer merger.mu.Unlock()
	if merger.locs[0].Latitude != -23.55 {
		t.Fatalf("unexpected location: %+v", merger.locs[0])
	}
}

func TestPurchaseCompleteInvokesHookWithRawPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	local, remote := NewMemoryPair()
	ch := NewChannel(local, testLogger(), nil)

	var mu sync.Mutex
	var payloads []string
	RegisterStorefrontHandlers(ch, HandlerParams{
		OnPurchaseComplete: func(_ context.Context, payload json.RawMessage) {
			mu.Lock()
			payloads = append(payloads, string(payload))
			mu.Unlock()
		},
	})

	ch.Initialize(ctx)
	waitFor(t, "open state", func() bool { return ch.State() == StateOpen })

	if _, err := remote.Dial(ctx); err != nil {
		t.Fatalf("dial remote: %v", err)
	}
	if err := remote.Send(ctx, []byte(`{"type":"purchase_complete","payload":{"orderId":"ORD1"}}`)); err != nil {
		t.Fatalf("send frame: %v", err)
	}

	waitFor(t, "purchase hook", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(payloads) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if payloads[0] != `{"orderId":"ORD1"}` {
		t.Fatalf("payload not passed through as-is: %s", payloads[0])
	}
}

func TestUnknownKindIsSilentNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	local, remote := NewMemoryPair()
	ch := NewChannel(local, testLogger(), nil)

	ch.Initialize(ctx)
	waitFor(t, "open state", func() bool { return ch.State() == StateOpen })

	if _, err := remote.Dial(ctx); err != nil {
		t.Fatalf("dial remote: %v", err)
	}
	if err := remote.Send(ctx, []byte(`{"type":"mystery","payload":{}}`)); err != nil {
		t.Fatalf("send frame: %v", err)
	}

	waitFor(t, "ignored counter", func() bool { return ch.Stats().Ignored == 1 })

	stats := ch.Stats()
	if stats.Dispatched != 0 || stats.Received != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMalformedFrameCountsParseFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	local, remote := NewMemoryPair()
	ch := NewChannel(local, testLogger(), nil)

	ch.Initialize(ctx)
	waitFor(t, "open state", func() bool { return ch.State() == StateOpen })

	if _, err := remote.Dial(ctx); err != nil {
		t.Fatalf("dial remote: %v", err)
	}
	if err := remote.Send(ctx, []byte(`{not json`)); err != nil {
		t.Fatalf("send frame: %v", err)
	}

	waitFor(t, "parse failure counter", func() bool { return ch.Stats().ParseFailures == 1 })

	// The channel keeps dispatching after a bad frame.
	mirror := &mirrorStub{}
	RegisterStorefrontHandlers(ch, HandlerParams{Catalog: mirror})
	if err := remote.Send(ctx, []byte(`{"type":"product_update","payload":[]}`)); err != nil {
		t.Fatalf("send second frame: %v", err)
	}
	waitFor(t, "dispatch after failure", func() bool { return ch.Stats().Dispatched == 1 })
}

func TestRoundTripBetweenTwoChannels(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	left, right := NewMemoryPair()

	adminSide := NewChannel(left, testLogger(), nil)
	storeSide := NewChannel(right, testLogger(), nil)

	mirror := &mirrorStub{}
	RegisterStorefrontHandlers(storeSide, HandlerParams{Catalog: mirror})

	adminSide.Initialize(ctx)
	storeSide.Initialize(ctx)
	waitFor(t, "both open", func() bool {
		return adminSide.State() == StateOpen && storeSide.State() == StateOpen
	})

	products := []catalog.Product{{ID: 7, Name: "Lamp", Price: decimal.NewFromFloat(12.5)}}
	adminSide.Send(ctx, KindProductUpdate, products)

	waitFor(t, "mirror update", func() bool {
		got, _ := mirror.snapshot()
		return len(got) == 1 && got[0].ID == 7
	})

	if adminSide.Stats().Sent != 1 {
		t.Fatalf("expected one sent frame, got %+v", adminSide.Stats())
	}
}
