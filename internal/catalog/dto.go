package catalog

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Product wire payloads carry numeric prices ({"price": 29.99}), not
	// decimal strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry. IDs are numeric and time-derived for
// admin-created products; past cart and order lines keep their own snapshots,
// so mutations here never propagate backwards.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description,omitempty"`
}

// ProductInput captures the admin create/update payload.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}
