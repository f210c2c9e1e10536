package crave

import (
	"time"

	"github.com/google/uuid"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
)

// VideoDTO is the API projection of a crave video.
type VideoDTO struct {
	ID        uuid.UUID `json:"id"`
	ShopID    uuid.UUID `json:"shop_id"`
	ProductID uuid.UUID `json:"product_id"`
	Caption   string    `json:"caption,omitempty"`
	VideoURL  string    `json:"video_url"`
	ThumbURL  string    `json:"thumb_url,omitempty"`
	ViewCount int64     `json:"view_count"`
	LikeCount int64     `json:"like_count"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateVideoRequest is the seller payload for publishing a clip.
type CreateVideoRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Caption   string    `json:"caption,omitempty"`
	VideoURL  string    `json:"video_url" validate:"required,url"`
	ThumbURL  string    `json:"thumb_url,omitempty" validate:"omitempty,url"`
}

// UpdateVideoRequest carries partial video edits.
type UpdateVideoRequest struct {
	Caption  *string `json:"caption,omitempty"`
	ThumbURL *string `json:"thumb_url,omitempty" validate:"omitempty,url"`
}

// ReportVideoRequest is a viewer complaint.
type ReportVideoRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// FeedPage is one page of the public feed, newest first.
type FeedPage struct {
	Videos     []VideoDTO `json:"videos"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func fromModel(video *models.CraveVideo, likeCount int64, liked bool) *VideoDTO {
	return &VideoDTO{
		ID:        video.ID,
		ShopID:    video.ShopID,
		ProductID: video.ProductID,
		Caption:   video.Caption,
		VideoURL:  video.VideoURL,
		ThumbURL:  video.ThumbURL,
		ViewCount: video.ViewCount,
		LikeCount: likeCount,
		Liked:     liked,
		CreatedAt: video.CreatedAt,
	}
}
