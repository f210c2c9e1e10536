package crave

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/pagination"
)

// Repository provides persistence for crave videos, likes, and reports.
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

// Create persists a new video.
func (r *Repository) Create(ctx context.Context, video *models.CraveVideo) error {
	return r.db.WithContext(ctx).Create(video).Error
}

// FindByID loads a video by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CraveVideo, error) {
	var video models.CraveVideo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// ListByShop returns a shop's videos, newest first.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID, includeInactive bool) ([]models.CraveVideo, error) {
	query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var videos []models.CraveVideo
	if err := query.Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// Feed returns active videos newest first, keyset paginated.
func (r *Repository) Feed(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CraveVideo, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var videos []models.CraveVideo
	if err := query.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// Update applies partial edits to a shop's video.
func (r *Repository) Update(ctx context.Context, shopID, videoID uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.CraveVideo{}).
		Where("id = ? AND shop_id = ?", videoID, shopID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate hides a video from the feed without deleting likes or reports.
func (r *Repository) Deactivate(ctx context.Context, shopID, videoID uuid.UUID) error {
	return r.Update(ctx, shopID, videoID, map[string]any{"is_active": false})
}

// IncrementViews bumps the view counter atomically.
func (r *Repository) IncrementViews(ctx context.Context, videoID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CraveVideo{}).
		Where("id = ?", videoID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// CreateLike records a like. The pair index rejects a second like.
func (r *Repository) CreateLike(ctx context.Context, like *models.VideoLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteLike removes a user's like.
func (r *Repository) DeleteLike(ctx context.Context, videoID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("video_id = ? AND user_id = ?", videoID, userID).
		Delete(&models.VideoLike{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountLikes returns like counts for the given videos.
func (r *Repository) CountLikes(ctx context.Context, videoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(videoIDs) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	type likeCount struct {
		VideoID uuid.UUID `gorm:"column:video_id"`
		Count   int64     `gorm:"column:count"`
	}
	var rows []likeCount
	if err := r.db.WithContext(ctx).
		Model(&models.VideoLike{}).
		Select("video_id, COUNT(*) AS count").
		Where("video_id IN ?", videoIDs).
		Group("video_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.VideoID] = row.Count
	}
	return out, nil
}

// LikedVideoIDs returns which of the given videos the user has liked.
func (r *Repository) LikedVideoIDs(ctx context.Context, userID uuid.UUID, videoIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	if userID == uuid.Nil || len(videoIDs) == 0 {
		return map[uuid.UUID]bool{}, nil
	}
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.VideoLike{}).
		Where("user_id = ? AND video_id IN ?", userID, videoIDs).
		Pluck("video_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// CreateReport persists a complaint.
func (r *Repository) CreateReport(ctx context.Context, report *models.VideoReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}
