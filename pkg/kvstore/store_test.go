package kvstore

import (
	"context"
	"testing"

	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
)

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	raw, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if string(raw) != `{"a":1}` {
		t.Fatalf("unexpected value %q", raw)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("key survived Delete")
	}
}

func TestGetJSONAbsentKeyLeavesDefault(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	dest := []string{"default"}
	found, err := GetJSON(ctx, store, "nothing", &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected found=false for absent key")
	}
	if len(dest) != 1 || dest[0] != "default" {
		t.Fatalf("dest mutated for absent key: %v", dest)
	}
}

func TestGetJSONMalformedValueIsParseError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	if err := store.Put(ctx, "bad", []byte(`{not json`)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	var dest map[string]any
	_, err := GetJSON(ctx, store, "bad", &dest)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeParse) {
		t.Fatalf("expected PARSE_ERROR, got %v", err)
	}
}

func TestPutJSONRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	type payload struct {
		Name string `json:"name"`
	}
	if err := PutJSON(ctx, store, "p", payload{Name: "x"}); err != nil {
		t.Fatalf("PutJSON returned error: %v", err)
	}

	var got payload
	found, err := GetJSON(ctx, store, "p", &got)
	if err != nil || !found {
		t.Fatalf("GetJSON failed: found=%v err=%v", found, err)
	}
	if got.Name != "x" {
		t.Fatalf("unexpected payload %+v", got)
	}
}
