package shops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

// Service defines the behavior needed by the shop controllers.
type Service interface {
	ListShops(ctx context.Context, limit, offset int) ([]ShopDTO, error)
	GetShop(ctx context.Context, id uuid.UUID) (*ShopDTO, error)
	GetMyShop(ctx context.Context, ownerID uuid.UUID) (*ShopDTO, error)
	UpdateMyShop(ctx context.Context, ownerID uuid.UUID, req UpdateShopRequest) (*ShopDTO, error)
	AddImages(ctx context.Context, ownerID uuid.UUID, urls []string) (*ShopDTO, error)
	RemoveImage(ctx context.Context, ownerID, imageID uuid.UUID) error
	UpsertDocuments(ctx context.Context, ownerID uuid.UUID, req UpsertDocumentsRequest) error
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
	List(ctx context.Context, limit, offset int) ([]models.Shop, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AddImages(ctx context.Context, shopID uuid.UUID, urls []string) ([]models.ShopImage, error)
	RemoveImage(ctx context.Context, shopID, imageID uuid.UUID) error
	UpsertDocuments(ctx context.Context, doc *models.ShopDocument) error
}

type service struct {
	repo repository
}

// NewService constructs a shop service with the provided repository.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shops repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListShops(ctx context.Context, limit, offset int) ([]ShopDTO, error) {
	shops, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shops")
	}
	out := make([]ShopDTO, 0, len(shops))
	for i := range shops {
		out = append(out, *FromModel(&shops[i]))
	}
	return out, nil
}

func (s *service) GetShop(ctx context.Context, id uuid.UUID) (*ShopDTO, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shop")
	}
	return FromModel(shop), nil
}

func (s *service) GetMyShop(ctx context.Context, ownerID uuid.UUID) (*ShopDTO, error) {
	shop, err := s.ownedShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FromModel(shop), nil
}

func (s *service) UpdateMyShop(ctx context.Context, ownerID uuid.UUID, req UpdateShopRequest) (*ShopDTO, error) {
	shop, err := s.ownedShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = req.Description
	}
	if req.Address != nil {
		updates["address"] = req.Address
	}
	if req.Phone != nil {
		updates["phone"] = req.Phone
	}
	if req.LogoURL != nil {
		updates["logo_url"] = req.LogoURL
	}
	if req.BannerURL != nil {
		updates["banner_url"] = req.BannerURL
	}
	if req.OpeningHours != nil {
		updates["opening_hours"] = req.OpeningHours
	}
	if len(updates) == 0 {
		return FromModel(shop), nil
	}

	if err := s.repo.Update(ctx, shop.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shop")
	}
	return s.GetShop(ctx, shop.ID)
}

func (s *service) AddImages(ctx context.Context, ownerID uuid.UUID, urls []string) (*ShopDTO, error) {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one image url is required")
	}

	shop, err := s.ownedShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.AddImages(ctx, shop.ID, cleaned); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add shop images")
	}
	return s.GetShop(ctx, shop.ID)
}

func (s *service) RemoveImage(ctx context.Context, ownerID, imageID uuid.UUID) error {
	shop, err := s.ownedShop(ctx, ownerID)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveImage(ctx, shop.ID, imageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shop image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove shop image")
	}
	return nil
}

func (s *service) UpsertDocuments(ctx context.Context, ownerID uuid.UUID, req UpsertDocumentsRequest) error {
	if req.LicenseURL == nil && req.IDProofURL == nil && req.HygieneCertURL == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one document url is required")
	}
	shop, err := s.ownedShop(ctx, ownerID)
	if err != nil {
		return err
	}
	doc := &models.ShopDocument{
		ShopID:         shop.ID,
		LicenseURL:     req.LicenseURL,
		IDProofURL:     req.IDProofURL,
		HygieneCertURL: req.HygieneCertURL,
	}
	if err := s.repo.UpsertDocuments(ctx, doc); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert shop documents")
	}
	return nil
}

func (s *service) ownedShop(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	shop, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found for seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load seller shop")
	}
	return shop, nil
}
