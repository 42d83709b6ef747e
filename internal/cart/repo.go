package cart

import (
	"context"

	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/lojinha-labs/storefront-backend/pkg/kvstore"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
)

const keyCart = "storeCart"

// Repository persists the cart in the key-value store.
type Repository struct {
	store kvstore.Store
	logg  *logger.Logger
}

// NewRepository constructs a cart repo bound to the provided store.
func NewRepository(store kvstore.Store, logg *logger.Logger) *Repository {
	return &Repository{store: store, logg: logg}
}

// Lines returns the stored cart lines, empty when nothing was added yet.
func (r *Repository) Lines(ctx context.Context) ([]Line, error) {
	var lines []Line
	if _, err := kvstore.GetJSON(ctx, r.store, keyCart, &lines); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeParse) {
			if r.logg != nil {
				r.logg.Warn(r.logg.WithField(ctx, "key", keyCart), "discarding corrupt cart")
			}
			return nil, nil
		}
		return nil, err
	}
	return lines, nil
}

// SaveLines overwrites the cart.
func (r *Repository) SaveLines(ctx context.Context, lines []Line) error {
	return kvstore.PutJSON(ctx, r.store, keyCart, lines)
}

// Clear empties the cart.
func (r *Repository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, keyCart)
}
