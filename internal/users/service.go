package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

// ProfileDTO combines the account with its type-specific profile. Exactly one
// of Customer or Seller is set, matching the account type.
type ProfileDTO struct {
	User     *UserDTO            `json:"user"`
	Customer *CustomerProfileDTO `json:"customer_profile,omitempty"`
	Seller   *SellerProfileDTO   `json:"seller_profile,omitempty"`
}

// UpdateProfileRequest carries the editable profile fields. Seller-only
// fields are ignored for customer accounts and vice versa.
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty"`
	MobileNumber *string `json:"mobile_number,omitempty"`
	Address      *string `json:"address,omitempty"`
	AvatarURL    *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	HouseNumber  *string `json:"house_number,omitempty"`
	Street       *string `json:"street,omitempty"`
	City         *string `json:"city,omitempty"`
	Postcode     *string `json:"postcode,omitempty"`
}

// Service exposes profile reads and updates for the authenticated user.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error)
}

type profileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindSellerProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
	FindCustomerProfile(ctx context.Context, userID uuid.UUID) (*models.CustomerProfile, error)
	UpdateCustomerProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) error
	UpdateSellerProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) error
}

type service struct {
	repo profileRepository
	now  func() time.Time
}

// NewService constructs the profile service.
func NewService(repo profileRepository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	account, err := s.account(ctx, userID)
	if err != nil {
		return nil, err
	}
	return account.profileDTO(ctx, s.repo)
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error) {
	account, err := s.account(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := account.profileUpdates(req)
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no profile fields to update")
	}
	updates["updated_at"] = s.now()

	if err := account.saveProfile(ctx, s.repo, updates); err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}

	return account.profileDTO(ctx, s.repo)
}

func (s *service) account(ctx context.Context, userID uuid.UUID) (Account, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return ResolveAccount(user), nil
}

func commonUpdates(req UpdateProfileRequest) map[string]any {
	updates := map[string]any{}
	setTrimmed(updates, "name", req.Name)
	setTrimmed(updates, "mobile_number", req.MobileNumber)
	return updates
}

func setTrimmed(updates map[string]any, column string, value *string) {
	if value == nil {
		return
	}
	updates[column] = strings.TrimSpace(*value)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
