package crave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/pagination"
)

type stubRepo struct {
	videos  map[uuid.UUID]*models.CraveVideo
	likes   map[uuid.UUID]map[uuid.UUID]bool
	reports []models.VideoReport
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		videos: map[uuid.UUID]*models.CraveVideo{},
		likes:  map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (r *stubRepo) Create(_ context.Context, video *models.CraveVideo) error {
	video.ID = uuid.New()
	video.CreatedAt = time.Now()
	r.videos[video.ID] = video
	return nil
}

func (r *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.CraveVideo, error) {
	if video, ok := r.videos[id]; ok {
		copied := *video
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) ListByShop(_ context.Context, shopID uuid.UUID, includeInactive bool) ([]models.CraveVideo, error) {
	var out []models.CraveVideo
	for _, video := range r.videos {
		if video.ShopID != shopID {
			continue
		}
		if !includeInactive && !video.IsActive {
			continue
		}
		out = append(out, *video)
	}
	return out, nil
}

func (r *stubRepo) Feed(_ context.Context, _ *pagination.Cursor, limit int) ([]models.CraveVideo, error) {
	var out []models.CraveVideo
	for _, video := range r.videos {
		if video.IsActive && len(out) < limit {
			out = append(out, *video)
		}
	}
	return out, nil
}

func (r *stubRepo) Update(_ context.Context, shopID, videoID uuid.UUID, updates map[string]any) error {
	video, ok := r.videos[videoID]
	if !ok || video.ShopID != shopID {
		return gorm.ErrRecordNotFound
	}
	if caption, ok := updates["caption"].(string); ok {
		video.Caption = caption
	}
	if thumb, ok := updates["thumb_url"].(string); ok {
		video.ThumbURL = thumb
	}
	if active, ok := updates["is_active"].(bool); ok {
		video.IsActive = active
	}
	return nil
}

func (r *stubRepo) Deactivate(ctx context.Context, shopID, videoID uuid.UUID) error {
	return r.Update(ctx, shopID, videoID, map[string]any{"is_active": false})
}

func (r *stubRepo) IncrementViews(_ context.Context, videoID uuid.UUID) error {
	if video, ok := r.videos[videoID]; ok {
		video.ViewCount++
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *stubRepo) CreateLike(_ context.Context, like *models.VideoLike) error {
	byUser := r.likes[like.VideoID]
	if byUser == nil {
		byUser = map[uuid.UUID]bool{}
		r.likes[like.VideoID] = byUser
	}
	if byUser[like.UserID] {
		return errors.New(`duplicate key value violates unique constraint "idx_video_likes_user_video"`)
	}
	byUser[like.UserID] = true
	return nil
}

func (r *stubRepo) DeleteLike(_ context.Context, videoID, userID uuid.UUID) error {
	if byUser, ok := r.likes[videoID]; ok && byUser[userID] {
		delete(byUser, userID)
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *stubRepo) CountLikes(_ context.Context, videoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	for _, id := range videoIDs {
		out[id] = int64(len(r.likes[id]))
	}
	return out, nil
}

func (r *stubRepo) LikedVideoIDs(_ context.Context, userID uuid.UUID, videoIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	for _, id := range videoIDs {
		if byUser, ok := r.likes[id]; ok && byUser[userID] {
			out[id] = true
		}
	}
	return out, nil
}

func (r *stubRepo) CreateReport(_ context.Context, report *models.VideoReport) error {
	r.reports = append(r.reports, *report)
	return nil
}

type stubShops struct {
	shop *models.Shop
}

func (s *stubShops) FindByOwner(_ context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	if s.shop != nil && s.shop.OwnerUserID == ownerID {
		return s.shop, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCatalog struct {
	items map[uuid.UUID]products.CatalogItem
}

func (s *stubCatalog) GetItem(_ context.Context, id uuid.UUID) (*products.CatalogItem, error) {
	if item, ok := s.items[id]; ok {
		return &item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalog) GetItems(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]products.CatalogItem, error) {
	out := map[uuid.UUID]products.CatalogItem{}
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

type craveFixture struct {
	sellerID  uuid.UUID
	shopID    uuid.UUID
	productID uuid.UUID
	repo      *stubRepo
	service   Service
}

func newCraveFixture(t *testing.T) *craveFixture {
	t.Helper()
	f := &craveFixture{
		sellerID:  uuid.New(),
		shopID:    uuid.New(),
		productID: uuid.New(),
		repo:      newStubRepo(),
	}
	shops := &stubShops{shop: &models.Shop{ID: f.shopID, OwnerUserID: f.sellerID}}
	catalog := &stubCatalog{items: map[uuid.UUID]products.CatalogItem{
		f.productID: {
			ID:        f.productID,
			ShopID:    f.shopID,
			Name:      "Ramen Bowl",
			UnitPrice: decimal.RequireFromString("11.00"),
			IsActive:  true,
		},
	}}
	svc, err := NewService(f.repo, shops, catalog)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	f.service = svc
	return f
}

func (f *craveFixture) publish(t *testing.T) *VideoDTO {
	t.Helper()
	video, err := f.service.CreateVideo(context.Background(), f.sellerID, CreateVideoRequest{
		ProductID: f.productID,
		Caption:   "fresh out of the wok",
		VideoURL:  "https://cdn.cravecart.app/videos/wok.mp4",
	})
	if err != nil {
		t.Fatalf("creating video: %v", err)
	}
	return video
}

func TestCreateVideo_RejectsForeignProduct(t *testing.T) {
	f := newCraveFixture(t)

	_, err := f.service.CreateVideo(context.Background(), f.sellerID, CreateVideoRequest{
		ProductID: uuid.New(),
		VideoURL:  "https://cdn.cravecart.app/videos/other.mp4",
	})
	if err == nil {
		t.Fatal("expected not found for foreign product")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetVideo_CountsView(t *testing.T) {
	f := newCraveFixture(t)
	video := f.publish(t)

	got, err := f.service.GetVideo(context.Background(), uuid.Nil, video.ID)
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("expected 1 view, got %d", got.ViewCount)
	}
	if _, err := f.service.GetVideo(context.Background(), uuid.Nil, video.ID); err != nil {
		t.Fatalf("second view: %v", err)
	}
	if f.repo.videos[video.ID].ViewCount != 2 {
		t.Fatalf("expected 2 views, got %d", f.repo.videos[video.ID].ViewCount)
	}
}

func TestLike_OncePerUser(t *testing.T) {
	f := newCraveFixture(t)
	video := f.publish(t)
	userID := uuid.New()

	if err := f.service.Like(context.Background(), userID, video.ID); err != nil {
		t.Fatalf("first like: %v", err)
	}
	err := f.service.Like(context.Background(), userID, video.ID)
	if err == nil {
		t.Fatal("expected conflict on second like")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	// unlike is idempotent
	if err := f.service.Unlike(context.Background(), userID, video.ID); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if err := f.service.Unlike(context.Background(), userID, video.ID); err != nil {
		t.Fatalf("second unlike: %v", err)
	}
}

func TestFeed_DecoratesLikes(t *testing.T) {
	f := newCraveFixture(t)
	video := f.publish(t)
	viewerID := uuid.New()
	if err := f.service.Like(context.Background(), viewerID, video.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	page, err := f.service.Feed(context.Background(), viewerID, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(page.Videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(page.Videos))
	}
	if page.Videos[0].LikeCount != 1 || !page.Videos[0].Liked {
		t.Fatalf("expected liked video with count 1, got %+v", page.Videos[0])
	}
}

func TestDeleteVideo_HidesFromFeed(t *testing.T) {
	f := newCraveFixture(t)
	video := f.publish(t)

	if err := f.service.DeleteVideo(context.Background(), f.sellerID, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	page, err := f.service.Feed(context.Background(), uuid.Nil, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(page.Videos) != 0 {
		t.Fatalf("expected empty feed, got %d", len(page.Videos))
	}
	if _, err := f.service.GetVideo(context.Background(), uuid.Nil, video.ID); err == nil {
		t.Fatal("expected not found for deactivated video")
	}
}

func TestReport_RequiresReason(t *testing.T) {
	f := newCraveFixture(t)
	video := f.publish(t)

	if err := f.service.Report(context.Background(), uuid.New(), video.ID, ReportVideoRequest{Reason: "  "}); err == nil {
		t.Fatal("expected validation error for blank reason")
	}
	if err := f.service.Report(context.Background(), uuid.New(), video.ID, ReportVideoRequest{Reason: "not food related"}); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(f.repo.reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(f.repo.reports))
	}
}
