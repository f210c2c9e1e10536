package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
)

// OrderItemDTO is the immutable purchased line returned to clients.
type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// FeedbackDTO is the single rating attached to an order.
type FeedbackDTO struct {
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderDTO is the full order payload.
type OrderDTO struct {
	ID              uuid.UUID            `json:"id"`
	OrderCode       string               `json:"order_code"`
	ShopID          uuid.UUID            `json:"shop_id"`
	PaymentMethod   enums.PaymentMethod  `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus  `json:"payment_status"`
	Status          enums.OrderStatus    `json:"status"`
	TrackingStatus  enums.TrackingStatus `json:"tracking_status"`
	Note            *string              `json:"note,omitempty"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	Tax             decimal.Decimal      `json:"tax"`
	DeliveryFee     decimal.Decimal      `json:"delivery_fee"`
	GrandTotal      decimal.Decimal      `json:"grand_total"`
	RejectionReason *string              `json:"rejection_reason,omitempty"`
	Items           []OrderItemDTO       `json:"items"`
	Feedback        *FeedbackDTO         `json:"feedback,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// LeaveFeedbackRequest is the buyer's one-time rating payload.
type LeaveFeedbackRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

// UpdateStatusRequest is the seller's decision payload. A rejection must
// carry a reason.
type UpdateStatusRequest struct {
	Status          enums.OrderStatus `json:"status" validate:"required"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
}

// UpdateTrackingRequest moves the delivery progress marker.
type UpdateTrackingRequest struct {
	TrackingStatus enums.TrackingStatus `json:"tracking_status" validate:"required"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	var feedback *FeedbackDTO
	if o.Feedback != nil {
		feedback = &FeedbackDTO{
			Rating:    o.Feedback.Rating,
			Comment:   o.Feedback.Comment,
			CreatedAt: o.Feedback.CreatedAt,
		}
	}
	return &OrderDTO{
		ID:              o.ID,
		OrderCode:       o.OrderCode,
		ShopID:          o.ShopID,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Status:          o.Status,
		TrackingStatus:  o.TrackingStatus,
		Note:            o.Note,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		DeliveryFee:     o.DeliveryFee,
		GrandTotal:      o.GrandTotal,
		RejectionReason: o.RejectionReason,
		Items:           items,
		Feedback:        feedback,
		CreatedAt:       o.CreatedAt,
	}
}
