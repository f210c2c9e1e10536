package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerProfile holds the verification-grade identity data a seller submits.
type SellerProfile struct {
	ID                      uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                  uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Name                    string     `gorm:"column:name;not null"`
	MobileNumber            string     `gorm:"column:mobile_number;not null;uniqueIndex"`
	DOB                     *time.Time `gorm:"column:dob"`
	NationalInsuranceNumber *string    `gorm:"column:national_insurance_number"`
	Nationality             *string    `gorm:"column:nationality"`
	HouseNumber             *string    `gorm:"column:house_number"`
	Street                  *string    `gorm:"column:street"`
	City                    *string    `gorm:"column:city"`
	Postcode                *string    `gorm:"column:postcode"`
	CreatedAt               time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerProfile holds the buyer-facing profile fields.
type CustomerProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Name         string    `gorm:"column:name;not null"`
	MobileNumber *string   `gorm:"column:mobile_number"`
	Address      *string   `gorm:"column:address"`
	AvatarURL    *string   `gorm:"column:avatar_url"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
