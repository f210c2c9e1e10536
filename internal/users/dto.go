package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	UserType    enums.UserType `json:"user_type"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	UserType     enums.UserType
	IsActive     *bool
}

// SellerProfileDTO is the seller-side profile payload.
type SellerProfileDTO struct {
	Name                    string     `json:"name"`
	MobileNumber            string     `json:"mobile_number"`
	DOB                     *time.Time `json:"dob,omitempty"`
	NationalInsuranceNumber *string    `json:"national_insurance_number,omitempty"`
	Nationality             *string    `json:"nationality,omitempty"`
	HouseNumber             *string    `json:"house_number,omitempty"`
	Street                  *string    `json:"street,omitempty"`
	City                    *string    `json:"city,omitempty"`
	Postcode                *string    `json:"postcode,omitempty"`
}

// CustomerProfileDTO is the customer-side profile payload.
type CustomerProfileDTO struct {
	Name         string  `json:"name"`
	MobileNumber *string `json:"mobile_number,omitempty"`
	Address      *string `json:"address,omitempty"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		UserType:    u.UserType,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		UserType:     c.UserType,
		IsActive:     isActive,
	}
}

func sellerProfileFromModel(p *models.SellerProfile) *SellerProfileDTO {
	if p == nil {
		return nil
	}
	return &SellerProfileDTO{
		Name:                    p.Name,
		MobileNumber:            p.MobileNumber,
		DOB:                     p.DOB,
		NationalInsuranceNumber: p.NationalInsuranceNumber,
		Nationality:             p.Nationality,
		HouseNumber:             p.HouseNumber,
		Street:                  p.Street,
		City:                    p.City,
		Postcode:                p.Postcode,
	}
}

func customerProfileFromModel(p *models.CustomerProfile) *CustomerProfileDTO {
	if p == nil {
		return nil
	}
	return &CustomerProfileDTO{
		Name:         p.Name,
		MobileNumber: p.MobileNumber,
		Address:      p.Address,
		AvatarURL:    p.AvatarURL,
	}
}
