package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoom pairs a customer with a seller. One room per pair.
type ChatRoom struct {
	ID         uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID     `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:idx_chat_rooms_pair"`
	SellerID   uuid.UUID     `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:idx_chat_rooms_pair"`
	Messages   []ChatMessage `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime"`
}

// ChatMessage is a persisted relay message; live transport is external.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID    uuid.UUID `gorm:"column:room_id;type:uuid;not null;index"`
	SenderID  uuid.UUID `gorm:"column:sender_id;type:uuid;not null"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
