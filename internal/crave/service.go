package crave

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/pkg/db"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/pagination"
)

// Service defines the crave video feed operations.
type Service interface {
	Feed(ctx context.Context, viewerID uuid.UUID, page pagination.Params) (*FeedPage, error)
	GetVideo(ctx context.Context, viewerID, videoID uuid.UUID) (*VideoDTO, error)
	ListMyVideos(ctx context.Context, sellerID uuid.UUID) ([]VideoDTO, error)
	CreateVideo(ctx context.Context, sellerID uuid.UUID, req CreateVideoRequest) (*VideoDTO, error)
	UpdateVideo(ctx context.Context, sellerID, videoID uuid.UUID, req UpdateVideoRequest) (*VideoDTO, error)
	DeleteVideo(ctx context.Context, sellerID, videoID uuid.UUID) error
	Like(ctx context.Context, userID, videoID uuid.UUID) error
	Unlike(ctx context.Context, userID, videoID uuid.UUID) error
	Report(ctx context.Context, userID, videoID uuid.UUID, req ReportVideoRequest) error
}

type repository interface {
	Create(ctx context.Context, video *models.CraveVideo) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CraveVideo, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, includeInactive bool) ([]models.CraveVideo, error)
	Feed(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CraveVideo, error)
	Update(ctx context.Context, shopID, videoID uuid.UUID, updates map[string]any) error
	Deactivate(ctx context.Context, shopID, videoID uuid.UUID) error
	IncrementViews(ctx context.Context, videoID uuid.UUID) error
	CreateLike(ctx context.Context, like *models.VideoLike) error
	DeleteLike(ctx context.Context, videoID, userID uuid.UUID) error
	CountLikes(ctx context.Context, videoIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	LikedVideoIDs(ctx context.Context, userID uuid.UUID, videoIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CreateReport(ctx context.Context, report *models.VideoReport) error
}

type shopResolver interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
}

type service struct {
	repo    repository
	shops   shopResolver
	catalog products.CatalogReader
}

// NewService builds the crave service.
func NewService(repo repository, shops shopResolver, catalog products.CatalogReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("crave repository is required")
	}
	if shops == nil {
		return nil, fmt.Errorf("shop resolver is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader is required")
	}
	return &service{repo: repo, shops: shops, catalog: catalog}, nil
}

// Feed serves the public video feed. An anonymous viewer passes uuid.Nil
// and gets liked=false throughout.
func (s *service) Feed(ctx context.Context, viewerID uuid.UUID, page pagination.Params) (*FeedPage, error) {
	cursor, err := pagination.Parse(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.Feed(ctx, cursor, pagination.LimitWithBuffer(page.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load feed")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	videos, err := s.decorate(ctx, viewerID, rows)
	if err != nil {
		return nil, err
	}
	return &FeedPage{Videos: videos, NextCursor: next}, nil
}

// GetVideo loads one active video and counts the view.
func (s *service) GetVideo(ctx context.Context, viewerID, videoID uuid.UUID) (*VideoDTO, error) {
	video, err := s.loadVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
	}
	// Views are best effort; a lost increment is not worth failing the read.
	if err := s.repo.IncrementViews(ctx, videoID); err == nil {
		video.ViewCount++
	}

	videos, err := s.decorate(ctx, viewerID, []models.CraveVideo{*video})
	if err != nil {
		return nil, err
	}
	return &videos[0], nil
}

func (s *service) ListMyVideos(ctx context.Context, sellerID uuid.UUID) ([]VideoDTO, error) {
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShop(ctx, shop.ID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list videos")
	}
	return s.decorate(ctx, sellerID, rows)
}

func (s *service) CreateVideo(ctx context.Context, sellerID uuid.UUID, req CreateVideoRequest) (*VideoDTO, error) {
	if strings.TrimSpace(req.VideoURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "video url is required")
	}
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	item, err := s.catalog.GetItem(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if item.ShopID != shop.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	video := &models.CraveVideo{
		ShopID:    shop.ID,
		ProductID: req.ProductID,
		Caption:   strings.TrimSpace(req.Caption),
		VideoURL:  strings.TrimSpace(req.VideoURL),
		ThumbURL:  strings.TrimSpace(req.ThumbURL),
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, video); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create video")
	}
	return fromModel(video, 0, false), nil
}

func (s *service) UpdateVideo(ctx context.Context, sellerID, videoID uuid.UUID, req UpdateVideoRequest) (*VideoDTO, error) {
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Caption != nil {
		updates["caption"] = strings.TrimSpace(*req.Caption)
	}
	if req.ThumbURL != nil {
		updates["thumb_url"] = strings.TrimSpace(*req.ThumbURL)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, shop.ID, videoID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update video")
	}

	video, err := s.loadVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	videos, err := s.decorate(ctx, sellerID, []models.CraveVideo{*video})
	if err != nil {
		return nil, err
	}
	return &videos[0], nil
}

func (s *service) DeleteVideo(ctx context.Context, sellerID, videoID uuid.UUID) error {
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, shop.ID, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate video")
	}
	return nil
}

func (s *service) Like(ctx context.Context, userID, videoID uuid.UUID) error {
	video, err := s.loadVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if !video.IsActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
	}
	if err := s.repo.CreateLike(ctx, &models.VideoLike{VideoID: videoID, UserID: userID}); err != nil {
		if db.IsUniqueViolation(err, "idx_video_likes_user_video") {
			return pkgerrors.New(pkgerrors.CodeConflict, "video already liked")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create like")
	}
	return nil
}

// Unlike removes the like. Removing an absent like is a no-op.
func (s *service) Unlike(ctx context.Context, userID, videoID uuid.UUID) error {
	if err := s.repo.DeleteLike(ctx, videoID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete like")
	}
	return nil
}

func (s *service) Report(ctx context.Context, userID, videoID uuid.UUID, req ReportVideoRequest) error {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "report reason is required")
	}
	if _, err := s.loadVideo(ctx, videoID); err != nil {
		return err
	}
	report := &models.VideoReport{VideoID: videoID, UserID: userID, Reason: reason}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create report")
	}
	return nil
}

// decorate attaches like counts and the viewer's like state.
func (s *service) decorate(ctx context.Context, viewerID uuid.UUID, rows []models.CraveVideo) ([]VideoDTO, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	counts, err := s.repo.CountLikes(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count likes")
	}
	liked, err := s.repo.LikedVideoIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load liked videos")
	}

	out := make([]VideoDTO, 0, len(rows))
	for i := range rows {
		video := &rows[i]
		out = append(out, *fromModel(video, counts[video.ID], liked[video.ID]))
	}
	return out, nil
}

func (s *service) loadVideo(ctx context.Context, videoID uuid.UUID) (*models.CraveVideo, error) {
	video, err := s.repo.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load video")
	}
	return video, nil
}

func (s *service) ownedShop(ctx context.Context, sellerID uuid.UUID) (*models.Shop, error) {
	shop, err := s.shops.FindByOwner(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found for seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load seller shop")
	}
	return shop, nil
}
