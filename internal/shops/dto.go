package shops

import (
	"time"

	"github.com/google/uuid"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
)

// ShopDTO is the public shop payload.
type ShopDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Address      *string   `json:"address,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	LogoURL      *string   `json:"logo_url,omitempty"`
	BannerURL    *string   `json:"banner_url,omitempty"`
	OpeningHours *string   `json:"opening_hours,omitempty"`
	Images       []string  `json:"images"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateShopDTO carries the fields the repo needs to persist a shop.
type CreateShopDTO struct {
	OwnerUserID  uuid.UUID
	Name         string
	Description  *string
	Address      *string
	Phone        *string
	LogoURL      *string
	BannerURL    *string
	OpeningHours *string
}

// UpdateShopRequest is the seller-facing shop edit payload.
type UpdateShopRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Address      *string `json:"address,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty"`
	BannerURL    *string `json:"banner_url,omitempty"`
	OpeningHours *string `json:"opening_hours,omitempty"`
}

// UpsertDocumentsRequest carries the verification document URLs.
type UpsertDocumentsRequest struct {
	LicenseURL     *string `json:"license_url,omitempty"`
	IDProofURL     *string `json:"id_proof_url,omitempty"`
	HygieneCertURL *string `json:"hygiene_cert_url,omitempty"`
}

func FromModel(shop *models.Shop) *ShopDTO {
	if shop == nil {
		return nil
	}
	images := make([]string, 0, len(shop.Images))
	for _, img := range shop.Images {
		images = append(images, img.ImageURL)
	}
	return &ShopDTO{
		ID:           shop.ID,
		Name:         shop.Name,
		Description:  shop.Description,
		Address:      shop.Address,
		Phone:        shop.Phone,
		LogoURL:      shop.LogoURL,
		BannerURL:    shop.BannerURL,
		OpeningHours: shop.OpeningHours,
		Images:       images,
		CreatedAt:    shop.CreatedAt,
	}
}

func (c CreateShopDTO) ToModel() *models.Shop {
	return &models.Shop{
		OwnerUserID:  c.OwnerUserID,
		Name:         c.Name,
		Description:  c.Description,
		Address:      c.Address,
		Phone:        c.Phone,
		LogoURL:      c.LogoURL,
		BannerURL:    c.BannerURL,
		OpeningHours: c.OpeningHours,
	}
}
