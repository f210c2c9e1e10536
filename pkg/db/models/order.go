package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cravecart/cravecart-backend/pkg/enums"
)

// Order is the purchase record produced by checkout. Orders are never
// deleted; rejection and cancellation are status transitions.
type Order struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	ShopID          uuid.UUID            `gorm:"column:shop_id;type:uuid;not null;index"`
	OrderCode       string               `gorm:"column:order_code;not null;uniqueIndex"`
	PaymentMethod   enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null;default:'cash_on_delivery'"`
	PaymentStatus   enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	Status          enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	TrackingStatus  enums.TrackingStatus `gorm:"column:tracking_status;type:text;not null;default:'order_confirmed'"`
	Note            *string              `gorm:"column:note"`
	Subtotal        decimal.Decimal      `gorm:"column:subtotal;type:numeric(10,2);not null;default:0"`
	Tax             decimal.Decimal      `gorm:"column:tax;type:numeric(10,2);not null;default:0"`
	DeliveryFee     decimal.Decimal      `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	GrandTotal      decimal.Decimal      `gorm:"column:grand_total;type:numeric(10,2);not null;default:0"`
	RejectionReason *string              `gorm:"column:rejection_reason"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Feedback        *OrderFeedback       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is the immutable snapshot of one purchased line.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(8,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// OrderFeedback is the single rating a buyer may leave per order.
type OrderFeedback struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// PaymentEvent is the persisted webhook idempotency marker. The unique
// event_id constraint turns duplicate deliveries into conflicts the
// reconciler resolves by returning the already-created order.
type PaymentEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   string    `gorm:"column:event_id;not null;uniqueIndex"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
