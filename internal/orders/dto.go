package orders

import (
	"time"

	"github.com/lojinha-labs/storefront-backend/internal/cart"
	"github.com/lojinha-labs/storefront-backend/internal/identity"
	"github.com/shopspring/decimal"
)

// StatusPending is the only status an order ever has: the log is append-only
// and there is no fulfillment pipeline behind it.
const StatusPending = "pending"

// Order is an append-only purchase record. Lines are snapshots; later catalog
// changes never rewrite history.
type Order struct {
	OrderID   string             `json:"orderId"`
	Lines     []cart.Line        `json:"lines"`
	Total     decimal.Decimal    `json:"total"`
	Customer  string             `json:"customer"`
	Location  *identity.Location `json:"location,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Status    string             `json:"status"`
}

// CheckoutResult pairs the recorded order with the configured payment URL,
// when one was set through the admin settings.
type CheckoutResult struct {
	Order      *Order `json:"order"`
	PaymentURL string `json:"payment_url,omitempty"`
}

// BuyNowRequest captures the single-product checkout payload.
type BuyNowRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
}
