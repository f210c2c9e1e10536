package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/pagination"
)

// Service defines the behavior needed by the product controllers.
type Service interface {
	Browse(ctx context.Context, filter BrowseFilter, page pagination.Params) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListMyProducts(ctx context.Context, sellerID uuid.UUID) ([]ProductDTO, error)
	CreateProduct(ctx context.Context, sellerID uuid.UUID, req CreateProductRequest) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, includeInactive bool) ([]models.Product, error)
	Browse(ctx context.Context, filter BrowseFilter, cursor *pagination.Cursor, limit int) ([]models.Product, error)
	Update(ctx context.Context, shopID, productID uuid.UUID, updates map[string]any) error
	Deactivate(ctx context.Context, shopID, productID uuid.UUID) error
}

type shopResolver interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
}

type service struct {
	repo  repository
	shops shopResolver
}

// NewService constructs a product service with the provided dependencies.
func NewService(repo repository, shops shopResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	if shops == nil {
		return nil, fmt.Errorf("shop resolver is required")
	}
	return &service{repo: repo, shops: shops}, nil
}

func (s *service) Browse(ctx context.Context, filter BrowseFilter, page pagination.Params) (*ProductPage, error) {
	cursor, err := pagination.Parse(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.Browse(ctx, filter, cursor, pagination.LimitWithBuffer(page.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "browse products")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ProductPage{Products: out, NextCursor: next}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return FromModel(product), nil
}

func (s *service) ListMyProducts(ctx context.Context, sellerID uuid.UUID) ([]ProductDTO, error) {
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShop(ctx, shop.ID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shop products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, req CreateProductRequest) (*ProductDTO, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if req.PreOrder && (req.PreOrderStart == nil || req.PreOrderEnd == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pre-order products require a start and end window")
	}
	if req.PreOrderStart != nil && req.PreOrderEnd != nil && !req.PreOrderEnd.After(*req.PreOrderStart) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pre-order window end must be after start")
	}

	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	product := req.toModel(shop.ID)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
		}
		updates["price"] = *req.Price
	}
	if req.Cuisine != nil {
		updates["cuisine"] = req.Cuisine
	}
	if req.Ingredients != nil {
		updates["ingredients"] = req.Ingredients
	}
	if req.DietaryTags != nil {
		updates["dietary_tags"] = pq.StringArray(req.DietaryTags)
	}
	if req.AllergenTags != nil {
		updates["allergen_tags"] = pq.StringArray(req.AllergenTags)
	}
	if req.ImageURL != nil {
		updates["image_url"] = req.ImageURL
	}
	if req.PreOrder != nil {
		updates["pre_order"] = *req.PreOrder
	}
	if req.AlwaysAvail != nil {
		updates["always_available"] = *req.AlwaysAvail
	}
	if req.PreOrderStart != nil {
		updates["pre_order_start"] = req.PreOrderStart
	}
	if req.PreOrderEnd != nil {
		updates["pre_order_end"] = req.PreOrderEnd
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, shop.ID, productID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product")
	}
	return FromModel(product), nil
}

func (s *service) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, shop.ID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate product")
	}
	return nil
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
