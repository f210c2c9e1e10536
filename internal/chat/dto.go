package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
)

// RoomDTO is the API projection of a chat room.
type RoomDTO struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageDTO is the API projection of a chat message.
type MessageDTO struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"room_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// OpenRoomRequest starts or resumes a conversation with a peer.
type OpenRoomRequest struct {
	PeerID uuid.UUID `json:"peer_id" validate:"required"`
}

// SendMessageRequest is the payload for posting into a room.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

// MessagePage is one page of room history, newest first.
type MessagePage struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func roomFromModel(room *models.ChatRoom) *RoomDTO {
	return &RoomDTO{
		ID:         room.ID,
		CustomerID: room.CustomerID,
		SellerID:   room.SellerID,
		CreatedAt:  room.CreatedAt,
	}
}

func messageFromModel(message *models.ChatMessage) *MessageDTO {
	return &MessageDTO{
		ID:        message.ID,
		RoomID:    message.RoomID,
		SenderID:  message.SenderID,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
}
