package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
)

// ProductDTO is the public product payload.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	ShopID        uuid.UUID       `json:"shop_id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Cuisine       *string         `json:"cuisine,omitempty"`
	Ingredients   *string         `json:"ingredients,omitempty"`
	DietaryTags   []string        `json:"dietary_tags"`
	AllergenTags  []string        `json:"allergen_tags"`
	ImageURL      *string         `json:"image_url,omitempty"`
	PreOrder      bool            `json:"pre_order"`
	AlwaysAvail   bool            `json:"always_available"`
	PreOrderStart *time.Time      `json:"pre_order_start,omitempty"`
	PreOrderEnd   *time.Time      `json:"pre_order_end,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CreateProductRequest is the seller-facing creation payload.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	Cuisine       *string         `json:"cuisine,omitempty"`
	Ingredients   *string         `json:"ingredients,omitempty"`
	DietaryTags   []string        `json:"dietary_tags,omitempty"`
	AllergenTags  []string        `json:"allergen_tags,omitempty"`
	ImageURL      *string         `json:"image_url,omitempty"`
	PreOrder      bool            `json:"pre_order"`
	AlwaysAvail   bool            `json:"always_available"`
	PreOrderStart *time.Time      `json:"pre_order_start,omitempty"`
	PreOrderEnd   *time.Time      `json:"pre_order_end,omitempty"`
}

// UpdateProductRequest is the partial edit payload.
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Cuisine       *string          `json:"cuisine,omitempty"`
	Ingredients   *string          `json:"ingredients,omitempty"`
	DietaryTags   []string         `json:"dietary_tags,omitempty"`
	AllergenTags  []string         `json:"allergen_tags,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
	PreOrder      *bool            `json:"pre_order,omitempty"`
	AlwaysAvail   *bool            `json:"always_available,omitempty"`
	PreOrderStart *time.Time       `json:"pre_order_start,omitempty"`
	PreOrderEnd   *time.Time       `json:"pre_order_end,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

// BrowseFilter narrows the public catalog listing.
type BrowseFilter struct {
	ShopID  *uuid.UUID
	Cuisine string
	Search  string
	Dietary []string
}

// ProductPage is one cursor page of products.
type ProductPage struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:            p.ID,
		ShopID:        p.ShopID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Cuisine:       p.Cuisine,
		Ingredients:   p.Ingredients,
		DietaryTags:   append([]string(nil), p.DietaryTags...),
		AllergenTags:  append([]string(nil), p.AllergenTags...),
		ImageURL:      p.ImageURL,
		PreOrder:      p.PreOrder,
		AlwaysAvail:   p.AlwaysAvail,
		PreOrderStart: p.PreOrderStart,
		PreOrderEnd:   p.PreOrderEnd,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
}

func (c CreateProductRequest) toModel(shopID uuid.UUID) *models.Product {
	return &models.Product{
		ShopID:        shopID,
		Name:          c.Name,
		Description:   c.Description,
		Price:         c.Price,
		Cuisine:       c.Cuisine,
		Ingredients:   c.Ingredients,
		DietaryTags:   pq.StringArray(c.DietaryTags),
		AllergenTags:  pq.StringArray(c.AllergenTags),
		ImageURL:      c.ImageURL,
		PreOrder:      c.PreOrder,
		AlwaysAvail:   c.AlwaysAvail,
		PreOrderStart: c.PreOrderStart,
		PreOrderEnd:   c.PreOrderEnd,
		IsActive:      true,
	}
}
