package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/pagination"
)

// Repository exposes product persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a products repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads a product by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindManyByID loads the products matching the provided IDs.
func (r *Repository) FindManyByID(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListByShop returns a shop's products, newest first.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID, includeInactive bool) ([]models.Product, error) {
	var products []models.Product
	q := r.db.WithContext(ctx).Where("shop_id = ?", shopID).Order("created_at DESC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Browse returns one cursor page of active products matching the filter.
// It fetches limit+1 rows so the caller can detect the next page.
func (r *Repository) Browse(ctx context.Context, filter BrowseFilter, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if filter.ShopID != nil {
		q = q.Where("shop_id = ?", *filter.ShopID)
	}
	if cuisine := strings.TrimSpace(filter.Cuisine); cuisine != "" {
		q = q.Where("LOWER(cuisine) = LOWER(?)", cuisine)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	if len(filter.Dietary) > 0 {
		q = q.Where("dietary_tags @> ?", pq.StringArray(filter.Dietary))
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Update applies the provided column updates to a product owned by the shop.
func (r *Repository) Update(ctx context.Context, shopID, productID uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND shop_id = ?", productID, shopID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate soft-removes a product from the catalog.
func (r *Repository) Deactivate(ctx context.Context, shopID, productID uuid.UUID) error {
	return r.Update(ctx, shopID, productID, map[string]any{"is_active": false})
}
