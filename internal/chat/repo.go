package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/pagination"
)

// Repository provides persistence for chat rooms and messages.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindRoom loads the room for a customer/seller pair.
func (r *Repository) FindRoom(ctx context.Context, customerID, sellerID uuid.UUID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND seller_id = ?", customerID, sellerID).
		First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindRoomByID loads a room by id.
func (r *Repository) FindRoomByID(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateRoom persists a new room. The pair index rejects a duplicate.
func (r *Repository) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// ListRoomsByUser returns every room the user participates in, newest first.
func (r *Repository) ListRoomsByUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateMessage persists a message.
func (r *Repository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListMessages returns room history newest first, keyset paginated.
func (r *Repository) ListMessages(ctx context.Context, roomID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.ChatMessage, error) {
	query := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
