package models

import (
	"time"

	"github.com/google/uuid"
)

// CraveVideo is a short promotional clip a seller attaches to a product.
type CraveVideo struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID    uuid.UUID `gorm:"column:shop_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Caption   string    `gorm:"column:caption"`
	VideoURL  string    `gorm:"column:video_url;not null"`
	ThumbURL  string    `gorm:"column:thumb_url"`
	ViewCount int64     `gorm:"column:view_count;not null;default:0"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// VideoLike records a unique like per user per video.
type VideoLike struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VideoID   uuid.UUID `gorm:"column:video_id;type:uuid;not null;uniqueIndex:idx_video_likes_user_video"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_video_likes_user_video"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// VideoReport is a user complaint against a video.
type VideoReport struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VideoID   uuid.UUID `gorm:"column:video_id;type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Reason    string    `gorm:"column:reason;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
