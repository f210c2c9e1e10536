package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a sellable menu item owned by a shop.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID        uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index"`
	Name          string          `gorm:"column:name;not null"`
	Description   *string         `gorm:"column:description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(8,2);not null"`
	Cuisine       *string         `gorm:"column:cuisine"`
	Ingredients   *string         `gorm:"column:ingredients"`
	DietaryTags   pq.StringArray  `gorm:"column:dietary_tags;type:text[]"`
	AllergenTags  pq.StringArray  `gorm:"column:allergen_tags;type:text[]"`
	ImageURL      *string         `gorm:"column:image_url"`
	PreOrder      bool            `gorm:"column:pre_order;not null;default:false"`
	AlwaysAvail   bool            `gorm:"column:always_available;not null;default:false"`
	PreOrderStart *time.Time      `gorm:"column:pre_order_start"`
	PreOrderEnd   *time.Time      `gorm:"column:pre_order_end"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
