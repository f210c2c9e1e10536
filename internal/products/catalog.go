package products

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
)

// CatalogItem is the minimal pricing view of a product used by cart and
// checkout. Prices are read at lookup time; order items snapshot them.
type CatalogItem struct {
	ID            uuid.UUID
	ShopID        uuid.UUID
	Name          string
	UnitPrice     decimal.Decimal
	IsActive      bool
	PreOrder      bool
	AlwaysAvail   bool
	PreOrderStart *time.Time
	PreOrderEnd   *time.Time
}

// Available reports whether the item can be ordered at the given time.
func (i CatalogItem) Available(now time.Time) bool {
	if !i.IsActive {
		return false
	}
	if i.AlwaysAvail {
		return true
	}
	if i.PreOrder && i.PreOrderStart != nil && i.PreOrderEnd != nil {
		return !now.Before(*i.PreOrderStart) && now.Before(*i.PreOrderEnd)
	}
	return true
}

// CatalogReader resolves products for cart and checkout flows.
type CatalogReader interface {
	GetItem(ctx context.Context, id uuid.UUID) (*CatalogItem, error)
	GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]CatalogItem, error)
}

type catalogReader struct {
	repo *Repository
}

// NewCatalogReader builds the read-only catalog surface over the repo.
func NewCatalogReader(repo *Repository) CatalogReader {
	return &catalogReader{repo: repo}
}

func (c *catalogReader) GetItem(ctx context.Context, id uuid.UUID) (*CatalogItem, error) {
	product, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item := itemFromModel(product)
	return &item, nil
}

func (c *catalogReader) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]CatalogItem, error) {
	rows, err := c.repo.FindManyByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]CatalogItem, len(rows))
	for i := range rows {
		out[rows[i].ID] = itemFromModel(&rows[i])
	}
	return out, nil
}

func itemFromModel(p *models.Product) CatalogItem {
	return CatalogItem{
		ID:            p.ID,
		ShopID:        p.ShopID,
		Name:          p.Name,
		UnitPrice:     p.Price,
		IsActive:      p.IsActive,
		PreOrder:      p.PreOrder,
		AlwaysAvail:   p.AlwaysAvail,
		PreOrderStart: p.PreOrderStart,
		PreOrderEnd:   p.PreOrderEnd,
	}
}
