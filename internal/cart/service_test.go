package cart

import (
	"context"
	"testing"

	"github.com/lojinha-labs/storefront-backend/internal/catalog"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/lojinha-labs/storefront-backend/pkg/kvstore"
	"github.com/shopspring/decimal"
)

type stubCatalog struct {
	products map[int64]catalog.Product
}

func (s stubCatalog) Get(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &p, nil
}

func buildTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: NewRepository(kvstore.NewMemory(), nil),
		Products: stubCatalog{products: map[int64]catalog.Product{
			1: {ID: 1, Name: "Mug", Price: decimal.NewFromFloat(9.5)},
			2: {ID: 2, Name: "Shirt", Price: decimal.NewFromFloat(25)},
		}},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestAddMergesByProductID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := buildTestService(t)

	if _, err := svc.Add(ctx, 1, 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	lines, err := svc.Add(ctx, 1, 1)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", lines[0].Quantity)
	}
}

func TestAddKeepsDistinctProductsSeparate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := buildTestService(t)

	if _, err := svc.Add(ctx, 1, 1); err != nil {
		t.Fatalf("add product 1: %v", err)
	}
	lines, err := svc.Add(ctx, 2, 3)
	if err != nil {
		t.Fatalf("add product 2: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	if lines[1].Quantity != 3 || lines[1].Name != "Shirt" {
		t.Fatalf("unexpected second line: %+v", lines[1])
	}
}

func TestAddSnapshotsProductFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	stub := stubCatalog{products: map[int64]catalog.Product{
		1: {ID: 1, Name: "Mug", Price: decimal.NewFromFloat(9.5)},
	}}
	svc, err := NewService(ServiceParams{Repo: NewRepository(kvstore.NewMemory(), nil), Products: stub})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if _, err := svc.Add(ctx, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A later catalog mutation must not reach the existing line.
	stub.products[1] = catalog.Product{ID: 1, Name: "Renamed", Price: decimal.NewFromFloat(99)}

	lines, err := svc.Items(ctx)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if lines[0].Name != "Mug" || !lines[0].Price.Equal(decimal.NewFromFloat(9.5)) {
		t.Fatalf("snapshot mutated: %+v", lines[0])
	}
}

func TestAddUnknownProduct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := buildTestService(t)

	if _, err := svc.Add(ctx, 404, 1); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := buildTestService(t)

	if _, err := svc.Add(ctx, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	lines, err := svc.Items(ctx)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(lines))
	}
}
