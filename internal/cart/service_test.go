package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/pricing"
	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

type stubRepo struct {
	lines   map[uuid.UUID]map[uuid.UUID]*models.CartLine
	cleared int
}

func newStubRepo() *stubRepo {
	return &stubRepo{lines: map[uuid.UUID]map[uuid.UUID]*models.CartLine{}}
}

func (r *stubRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var out []models.CartLine
	for _, line := range r.lines[userID] {
		out = append(out, *line)
	}
	return out, nil
}

func (r *stubRepo) FindLine(_ context.Context, userID, productID uuid.UUID) (*models.CartLine, error) {
	if line, ok := r.lines[userID][productID]; ok {
		copied := *line
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) Upsert(_ context.Context, userID, productID uuid.UUID, quantity int) error {
	if r.lines[userID] == nil {
		r.lines[userID] = map[uuid.UUID]*models.CartLine{}
	}
	if line, ok := r.lines[userID][productID]; ok {
		line.Quantity += quantity
		return nil
	}
	r.lines[userID][productID] = &models.CartLine{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return nil
}

func (r *stubRepo) SetQuantity(_ context.Context, userID, productID uuid.UUID, quantity int) error {
	line, ok := r.lines[userID][productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	line.Quantity = quantity
	return nil
}

func (r *stubRepo) DeleteLine(_ context.Context, userID, productID uuid.UUID) error {
	if _, ok := r.lines[userID][productID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.lines[userID], productID)
	return nil
}

func (r *stubRepo) ClearByUser(_ context.Context, userID uuid.UUID) error {
	r.cleared++
	delete(r.lines, userID)
	return nil
}

type stubCatalog struct {
	items map[uuid.UUID]products.CatalogItem
}

func (c *stubCatalog) GetItem(_ context.Context, id uuid.UUID) (*products.CatalogItem, error) {
	if item, ok := c.items[id]; ok {
		return &item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (c *stubCatalog) GetItems(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]products.CatalogItem, error) {
	out := map[uuid.UUID]products.CatalogItem{}
	for _, id := range ids {
		if item, ok := c.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func catalogItem(shopID uuid.UUID, price string) products.CatalogItem {
	return products.CatalogItem{
		ID:          uuid.New(),
		ShopID:      shopID,
		Name:        "item",
		UnitPrice:   decimal.RequireFromString(price),
		IsActive:    true,
		AlwaysAvail: true,
	}
}

func newTestService(t *testing.T, repo *stubRepo, catalog *stubCatalog) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Catalog: catalog,
		Rates: pricing.Rates{
			TaxRate:     decimal.RequireFromString("0.10"),
			DeliveryFee: decimal.RequireFromString("50.00"),
		},
		Now: func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestAddItems_UpsertIncrementsQuantity(t *testing.T) {
	shopID := uuid.New()
	item := catalogItem(shopID, "10.00")
	repo := newStubRepo()
	catalog := &stubCatalog{items: map[uuid.UUID]products.CatalogItem{item.ID: item}}
	svc := newTestService(t, repo, catalog)
	userID := uuid.New()

	req := AddItemsRequest{Items: []AddItemInput{{ProductID: item.ID, Quantity: 2}}}
	if _, err := svc.AddItems(context.Background(), userID, req); err != nil {
		t.Fatalf("first add: %v", err)
	}
	result, err := svc.AddItems(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(result.Cart.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(result.Cart.Lines))
	}
	if result.Cart.Lines[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", result.Cart.Lines[0].Quantity)
	}
}

func TestAddItems_DifferentShopClearsCart(t *testing.T) {
	first := catalogItem(uuid.New(), "10.00")
	second := catalogItem(uuid.New(), "7.50")
	repo := newStubRepo()
	catalog := &stubCatalog{items: map[uuid.UUID]products.CatalogItem{
		first.ID:  first,
		second.ID: second,
	}}
	svc := newTestService(t, repo, catalog)
	userID := uuid.New()

	if _, err := svc.AddItems(context.Background(), userID, AddItemsRequest{
		Items: []AddItemInput{{ProductID: first.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	result, err := svc.AddItems(context.Background(), userID, AddItemsRequest{
		Items: []AddItemInput{{ProductID: second.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("cross-shop add: %v", err)
	}

	if !result.CartCleared {
		t.Fatal("expected cart to be cleared when switching shops")
	}
	if len(result.Cart.Lines) != 1 || result.Cart.Lines[0].ProductID != second.ID {
		t.Fatalf("expected cart to hold only the new shop's item, got %+v", result.Cart.Lines)
	}
}

func TestAddItems_SkipsUnknownAndForeignItems(t *testing.T) {
	shopID := uuid.New()
	valid := catalogItem(shopID, "5.00")
	foreign := catalogItem(uuid.New(), "9.00")
	missing := uuid.New()
	repo := newStubRepo()
	catalog := &stubCatalog{items: map[uuid.UUID]products.CatalogItem{
		valid.ID:   valid,
		foreign.ID: foreign,
	}}
	svc := newTestService(t, repo, catalog)
	userID := uuid.New()

	result, err := svc.AddItems(context.Background(), userID, AddItemsRequest{
		Items: []AddItemInput{
			{ProductID: valid.ID, Quantity: 1},
			{ProductID: foreign.ID, Quantity: 1},
			{ProductID: missing, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("partial add: %v", err)
	}

	if len(result.Cart.Lines) != 1 {
		t.Fatalf("expected one accepted line, got %d", len(result.Cart.Lines))
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("expected two skipped items, got %d", len(result.Skipped))
	}
}

func TestAddItems_AllSkippedFails(t *testing.T) {
	repo := newStubRepo()
	catalog := &stubCatalog{items: map[uuid.UUID]products.CatalogItem{}}
	svc := newTestService(t, repo, catalog)

	_, err := svc.AddItems(context.Background(), uuid.New(), AddItemsRequest{
		Items: []AddItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error when every item is skipped")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecreaseQuantity_RemovesLineAtOne(t *testing.T) {
	shopID := uuid.New()
	item := catalogItem(shopID, "10.00")
	repo := newStubRepo()
	catalog := &stubCatalog{items: map[uuid.UUID]products.CatalogItem{item.ID: item}}
	svc := newTestService(t, repo, catalog)
	userID := uuid.New()

	if _, err := svc.AddItems(context.Background(), userID, AddItemsRequest{
		Items: []AddItemInput{{ProductID: item.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	view, err := svc.DecreaseQuantity(context.Background(), userID, item.ID)
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Lines))
	}
}

func TestGetCart_Totals(t *testing.T) {
	shopID := uuid.New()
	item := catalogItem(shopID, "20.00")
	repo := newStubRepo()
	catalog := &stubCatalog{items: map[uuid.UUID]products.CatalogItem{item.ID: item}}
	svc := newTestService(t, repo, catalog)
	userID := uuid.New()

	if _, err := svc.AddItems(context.Background(), userID, AddItemsRequest{
		Items: []AddItemInput{{ProductID: item.ID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	view, err := svc.GetCart(context.Background(), userID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if got := view.Subtotal.StringFixed(2); got != "40.00" {
		t.Fatalf("expected subtotal 40.00, got %s", got)
	}
	if got := view.Tax.StringFixed(2); got != "4.00" {
		t.Fatalf("expected tax 4.00, got %s", got)
	}
	if got := view.GrandTotal.StringFixed(2); got != "94.00" {
		t.Fatalf("expected grand total 94.00, got %s", got)
	}
}
