package catalog

import (
	"context"

	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/lojinha-labs/storefront-backend/pkg/kvstore"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
)

const keyProducts = "storeProducts"

// Repository persists the product list in the key-value store.
type Repository struct {
	store kvstore.Store
	logg  *logger.Logger
}

// NewRepository constructs a catalog repo bound to the provided store.
func NewRepository(store kvstore.Store, logg *logger.Logger) *Repository {
	return &Repository{store: store, logg: logg}
}

// Products returns the stored product list. The boolean reports whether the
// key existed; first load uses it to decide on seeding.
func (r *Repository) Products(ctx context.Context) ([]Product, bool, error) {
	var products []Product
	found, err := kvstore.GetJSON(ctx, r.store, keyProducts, &products)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeParse) {
			if r.logg != nil {
				r.logg.Warn(r.logg.WithField(ctx, "key", keyProducts), "discarding corrupt product list")
			}
			return nil, false, nil
		}
		return nil, false, err
	}
	return products, found, nil
}

// SaveProducts overwrites the product list.
func (r *Repository) SaveProducts(ctx context.Context, products []Product) error {
	return kvstore.PutJSON(ctx, r.store, keyProducts, products)
}
