package cart

import (
	"github.com/shopspring/decimal"
)

// Line is a cart entry holding a snapshot of the product at add time.
// Catalog mutations never propagate into existing lines.
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// AddRequest captures the payload sent to the add-to-cart endpoint.
type AddRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"omitempty,min=1"`
}
