package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop is the seller's storefront.
type Shop struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID  uuid.UUID  `gorm:"column:owner_user_id;type:uuid;not null;uniqueIndex"`
	Name         string     `gorm:"column:name;not null"`
	Description  *string    `gorm:"column:description"`
	Address      *string    `gorm:"column:address"`
	Phone        *string    `gorm:"column:phone"`
	LogoURL      *string    `gorm:"column:logo_url"`
	BannerURL    *string    `gorm:"column:banner_url"`
	OpeningHours *string    `gorm:"column:opening_hours"`
	Images       []ShopImage `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// ShopImage stores gallery image URLs for a shop. File storage is external;
// only the resolved URL is persisted.
type ShopImage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID    uuid.UUID `gorm:"column:shop_id;type:uuid;not null;index"`
	ImageURL  string    `gorm:"column:image_url;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ShopDocument stores the verification document URLs a seller uploads.
type ShopDocument struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID         uuid.UUID `gorm:"column:shop_id;type:uuid;not null;uniqueIndex"`
	LicenseURL     *string   `gorm:"column:license_url"`
	IDProofURL     *string   `gorm:"column:id_proof_url"`
	HygieneCertURL *string   `gorm:"column:hygiene_cert_url"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
