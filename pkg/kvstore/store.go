package kvstore

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
)

// Store is the persistence surface shared by the identity and storefront
// layers. Values are opaque JSON documents keyed by string; there is no
// schema versioning and no compare-and-swap, so concurrent writers to the
// same key are last-writer-wins.
type Store interface {
	// Get returns the raw value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON loads and decodes the value at key into dest. A missing key
// returns (false, nil) and leaves dest untouched, so callers fall back to
// their zero state. A value that fails to decode returns a PARSE_ERROR so
// callers can log it and fall back rather than crash.
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read "+key)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeParse, err, "decode "+key)
	}
	return true, nil
}

// PutJSON encodes value and stores it at key.
func PutJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+key)
	}
	if err := s.Put(ctx, key, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write "+key)
	}
	return nil
}
