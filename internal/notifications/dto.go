package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
)

// NotificationDTO is the API projection of an in-app notification.
type NotificationDTO struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Kind      string     `json:"kind"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
}

// RegisterDeviceRequest binds an FCM registration token to the caller.
type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform,omitempty" validate:"omitempty,oneof=android ios web"`
}

func fromModel(notification *models.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:        notification.ID,
		Title:     notification.Title,
		Body:      notification.Body,
		Kind:      notification.Kind,
		OrderID:   notification.OrderID,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt,
	}
}
