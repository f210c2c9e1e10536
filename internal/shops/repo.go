package shops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
)

// Repository exposes shop persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a shops repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new shop and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateShopDTO) (*models.Shop, error) {
	shop := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(shop).Error; err != nil {
		return nil, err
	}
	return shop, nil
}

// FindByID loads a shop with its gallery images.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Preload("Images").First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindByOwner loads the shop owned by the given user.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Preload("Images").Where("owner_user_id = ?", ownerID).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// List returns shops ordered by creation time, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Shop, error) {
	var shops []models.Shop
	q := r.db.WithContext(ctx).Preload("Images").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// Update applies the provided column updates to a shop.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AddImages appends gallery images to a shop.
func (r *Repository) AddImages(ctx context.Context, shopID uuid.UUID, urls []string) ([]models.ShopImage, error) {
	images := make([]models.ShopImage, 0, len(urls))
	for _, u := range urls {
		images = append(images, models.ShopImage{ShopID: shopID, ImageURL: u})
	}
	if err := r.db.WithContext(ctx).Create(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// RemoveImage deletes a single gallery image owned by the shop.
func (r *Repository) RemoveImage(ctx context.Context, shopID, imageID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", imageID, shopID).
		Delete(&models.ShopImage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertDocuments creates or replaces the shop's verification documents.
func (r *Repository) UpsertDocuments(ctx context.Context, doc *models.ShopDocument) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"license_url", "id_proof_url", "hygiene_cert_url", "updated_at"}),
		}).
		Create(doc).Error
}

// FindDocuments loads the verification documents for a shop.
func (r *Repository) FindDocuments(ctx context.Context, shopID uuid.UUID) (*models.ShopDocument, error) {
	var doc models.ShopDocument
	if err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}
