package orders

import (
	"context"

	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/lojinha-labs/storefront-backend/pkg/kvstore"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
)

const (
	keyOrders     = "storeOrders"
	keyPaymentURL = "paymentUrl"
)

// Repository persists the order log and payment settings in the key-value
// store.
type Repository struct {
	store kvstore.Store
	logg  *logger.Logger
}

// NewRepository constructs an orders repo bound to the provided store.
func NewRepository(store kvstore.Store, logg *logger.Logger) *Repository {
	return &Repository{store: store, logg: logg}
}

// Orders returns the full order log, oldest first.
func (r *Repository) Orders(ctx context.Context) ([]Order, error) {
	var log []Order
	if _, err := kvstore.GetJSON(ctx, r.store, keyOrders, &log); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeParse) {
			if r.logg != nil {
				r.logg.Warn(r.logg.WithField(ctx, "key", keyOrders), "discarding corrupt order log")
			}
			return nil, nil
		}
		return nil, err
	}
	return log, nil
}

// SaveOrders overwrites the order log. Callers append, never rewrite entries.
func (r *Repository) SaveOrders(ctx context.Context, log []Order) error {
	return kvstore.PutJSON(ctx, r.store, keyOrders, log)
}

// PaymentURL returns the configured payment URL, empty when unset.
func (r *Repository) PaymentURL(ctx context.Context) (string, error) {
	var url string
	if _, err := kvstore.GetJSON(ctx, r.store, keyPaymentURL, &url); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeParse) {
			return "", nil
		}
		return "", err
	}
	return url, nil
}

// SetPaymentURL persists the payment URL override.
func (r *Repository) SetPaymentURL(ctx context.Context, url string) error {
	return kvstore.PutJSON(ctx, r.store, keyPaymentURL, url)
}
