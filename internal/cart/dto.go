package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemInput is one requested cart addition.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// AddItemsRequest carries one or more additions in a single call.
type AddItemsRequest struct {
	Items []AddItemInput `json:"items" validate:"required,min=1,dive"`
}

// SkippedItem explains why a requested addition was not applied.
type SkippedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Reason    string    `json:"reason"`
}

// AddItemsResult reports the partial outcome of an add call.
type AddItemsResult struct {
	Cart        *CartView     `json:"cart"`
	Skipped     []SkippedItem `json:"skipped,omitempty"`
	CartCleared bool          `json:"cart_cleared"`
}

// LineView is one priced cart line.
type LineView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

// CartView is the buyer's cart with its charge breakdown.
type CartView struct {
	ShopID      *uuid.UUID      `json:"shop_id,omitempty"`
	Lines       []LineView      `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}
