package peersync

import (
	"context"
	"encoding/json"

	"github.com/lojinha-labs/storefront-backend/internal/catalog"
	"github.com/lojinha-labs/storefront-backend/internal/identity"
	"github.com/lojinha-labs/storefront-backend/internal/orders"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
)

type catalogMirror interface {
	ReplaceAll(ctx context.Context, products []catalog.Product) error
}

type locationMerger interface {
	MergeLocation(ctx context.Context, loc identity.Location) error
}

// HandlerParams wires the storefront effects behind the built-in message
// kinds.
type HandlerParams struct {
	Catalog  catalogMirror
	Identity locationMerger
	// OnProductsReplaced runs once per applied product_update, after the
	// mirror swap. Optional.
	OnProductsReplaced func()
	// OnPurchaseComplete receives the purchase_complete payload as-is.
	// Optional.
	OnPurchaseComplete func(ctx context.Context, payload json.RawMessage)
}

// RegisterStorefrontHandlers installs the built-in dispatch table:
// product_update replaces the catalog mirror, user_location merges into the
// session, purchase_complete invokes the success hook.
func RegisterStorefrontHandlers(ch *Channel, params HandlerParams) {
	if params.Catalog != nil {
		ch.RegisterHandler(KindProductUpdate, func(ctx context.Context, payload json.RawMessage) error {
			var products []catalog.Product
			if err := json.Unmarshal(payload, &products); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeParse, err, "decode product list")
			}
			if err := params.Catalog.ReplaceAll(ctx, products); err != nil {
				return err
			}
			if params.OnProductsReplaced != nil {
				params.OnProductsReplaced()
			}
			return nil
		})
	}

	if params.Identity != nil {
		ch.RegisterHandler(KindUserLocation, func(ctx context.Context, payload json.RawMessage) error {
			var loc identity.Location
			if err := json.Unmarshal(payload, &loc); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeParse, err, "decode location")
			}
			return params.Identity.MergeLocation(ctx, loc)
		})
	}

	ch.RegisterHandler(KindPurchaseComplete, func(ctx context.Context, payload json.RawMessage) error {
		if params.OnPurchaseComplete != nil {
			params.OnPurchaseComplete(ctx, payload)
		}
		return nil
	})
}

// ProductBroadcaster adapts the channel to the catalog service's publisher.
type ProductBroadcaster struct {
	Channel *Channel
}

func (b ProductBroadcaster) PublishProducts(ctx context.Context, products []catalog.Product) {
	b.Channel.Send(ctx, KindProductUpdate, products)
}

// PurchaseBroadcaster adapts the channel to the orders service's publisher.
type PurchaseBroadcaster struct {
	Channel *Channel
}

func (b PurchaseBroadcaster) PublishPurchase(ctx context.Context, order orders.Order) {
	b.Channel.Send(ctx, KindPurchaseComplete, order)
}
