package checkout

import (
	"github.com/google/uuid"

	"github.com/cravecart/cravecart-backend/internal/orders"
	"github.com/cravecart/cravecart-backend/pkg/enums"
)

// RequestItem is one ad-hoc line supplied in the checkout body. When items
// are present the stored cart is bypassed and left untouched.
type RequestItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// CheckoutRequest is the payload for converting the cart, or an ad-hoc
// item list, into an order.
type CheckoutRequest struct {
	PaymentMethod enums.PaymentMethod `json:"payment_method" validate:"required"`
	Note          *string             `json:"note,omitempty"`
	Items         []RequestItem       `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// SkippedItem reports a requested line that no longer resolved to a
// purchasable product and was left out of the order.
type SkippedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Reason    string    `json:"reason"`
}

// CheckoutResult carries the outcome of a checkout. Cash checkouts return
// the created order; hosted checkouts return the Stripe redirect URL and
// defer order creation to the webhook reconciler.
type CheckoutResult struct {
	Order       *orders.OrderDTO `json:"order,omitempty"`
	RedirectURL string           `json:"redirect_url,omitempty"`
	Skipped     []SkippedItem    `json:"skipped_items,omitempty"`
}
