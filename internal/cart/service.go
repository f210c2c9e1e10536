package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/pricing"
	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

const (
	skipReasonNotFound      = "product not found"
	skipReasonUnavailable   = "product unavailable"
	skipReasonDifferentShop = "product belongs to a different shop"
)

// Service exposes the buyer cart operations. A cart only ever holds
// products from a single shop; adding from another shop replaces it.
type Service interface {
	AddItems(ctx context.Context, userID uuid.UUID, req AddItemsRequest) (*AddItemsResult, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	IncreaseQuantity(ctx context.Context, userID, productID uuid.UUID) (*CartView, error)
	DecreaseQuantity(ctx context.Context, userID, productID uuid.UUID) (*CartView, error)
	RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	FindLine(ctx context.Context, userID, productID uuid.UUID) (*models.CartLine, error)
	Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, userID, productID uuid.UUID) error
	ClearByUser(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo    repository
	catalog products.CatalogReader
	rates   pricing.Rates
	now     func() time.Time
}

// ServiceParams bundles the cart service dependencies.
type ServiceParams struct {
	Repo    repository
	Catalog products.CatalogReader
	Rates   pricing.Rates
	Now     func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		catalog: params.Catalog,
		rates:   params.Rates,
		now:     now,
	}, nil
}

func (s *service) AddItems(ctx context.Context, userID uuid.UUID, req AddItemsRequest) (*AddItemsResult, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}

	now := s.now()
	var skipped []SkippedItem
	type accepted struct {
		item products.CatalogItem
		qty  int
	}
	var toAdd []accepted
	var targetShop *uuid.UUID

	for _, item := range req.Items {
		catalogItem, err := s.catalog.GetItem(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				skipped = append(skipped, SkippedItem{ProductID: item.ProductID, Reason: skipReasonNotFound})
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !catalogItem.Available(now) {
			skipped = append(skipped, SkippedItem{ProductID: item.ProductID, Reason: skipReasonUnavailable})
			continue
		}
		if targetShop == nil {
			shopID := catalogItem.ShopID
			targetShop = &shopID
		} else if *targetShop != catalogItem.ShopID {
			skipped = append(skipped, SkippedItem{ProductID: item.ProductID, Reason: skipReasonDifferentShop})
			continue
		}
		toAdd = append(toAdd, accepted{item: *catalogItem, qty: item.Quantity})
	}

	if len(toAdd) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no addable items in request").WithDetails(map[string]any{
			"skipped": skipped,
		})
	}

	cleared, err := s.enforceSingleShop(ctx, userID, *targetShop)
	if err != nil {
		return nil, err
	}

	for _, add := range toAdd {
		if err := s.repo.Upsert(ctx, userID, add.item.ID, add.qty); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert cart line")
		}
	}

	view, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AddItemsResult{Cart: view, Skipped: skipped, CartCleared: cleared}, nil
}

// enforceSingleShop clears the cart when its current contents belong to a
// different shop than the one being added to.
func (s *service) enforceSingleShop(ctx context.Context, userID, shopID uuid.UUID) (bool, error) {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
	}
	if len(lines) == 0 {
		return false, nil
	}

	existing, err := s.catalog.GetItem(ctx, lines[0].ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orphaned line; replace the cart.
			if err := s.repo.ClearByUser(ctx, userID); err != nil {
				return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
			}
			return true, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart product")
	}
	if existing.ShopID == shopID {
		return false, nil
	}

	if err := s.repo.ClearByUser(ctx, userID); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return true, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
	}
	if len(lines) == 0 {
		return &CartView{
			Lines:       []LineView{},
			Subtotal:    decimal.Zero,
			Tax:         decimal.Zero,
			DeliveryFee: decimal.Zero,
			GrandTotal:  decimal.Zero,
		}, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	items, err := s.catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}

	var shopID *uuid.UUID
	views := make([]LineView, 0, len(lines))
	quoteLines := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		item, ok := items[line.ProductID]
		if !ok {
			continue
		}
		if shopID == nil {
			id := item.ShopID
			shopID = &id
		}
		views = append(views, LineView{
			ProductID: item.ID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
		quoteLines = append(quoteLines, pricing.Line{
			ProductID: item.ID,
			UnitPrice: item.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	if len(quoteLines) == 0 {
		return &CartView{
			Lines:       []LineView{},
			Subtotal:    decimal.Zero,
			Tax:         decimal.Zero,
			DeliveryFee: decimal.Zero,
			GrandTotal:  decimal.Zero,
		}, nil
	}

	totals, err := pricing.Quote(s.rates, quoteLines)
	if err != nil {
		return nil, err
	}

	return &CartView{
		ShopID:      shopID,
		Lines:       views,
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		DeliveryFee: totals.DeliveryFee,
		GrandTotal:  totals.GrandTotal,
	}, nil
}

func (s *service) IncreaseQuantity(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	line, err := s.loadLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetQuantity(ctx, userID, productID, line.Quantity+1); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
	}
	return s.GetCart(ctx, userID)
}

// DecreaseQuantity lowers a line by one; going below one removes it.
func (s *service) DecreaseQuantity(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	line, err := s.loadLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if line.Quantity <= 1 {
		if err := s.repo.DeleteLine(ctx, userID, productID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
		}
		return s.GetCart(ctx, userID)
	}
	if err := s.repo.SetQuantity(ctx, userID, productID, line.Quantity-1); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	if err := s.repo.DeleteLine(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.ClearByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func (s *service) loadLine(ctx context.Context, userID, productID uuid.UUID) (*models.CartLine, error) {
	line, err := s.repo.FindLine(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}
	return line, nil
}
