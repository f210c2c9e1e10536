package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/shops"
	"github.com/cravecart/cravecart-backend/internal/users"
	"github.com/cravecart/cravecart-backend/pkg/config"
	"github.com/cravecart/cravecart-backend/pkg/db"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/security"
)

// RegisterCustomerRequest contains the payload for buyer signup.
type RegisterCustomerRequest struct {
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8"`
	MobileNumber *string `json:"mobile_number,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// RegisterSellerRequest contains the payload for seller onboarding. Seller
// signup creates the user, identity profile, and storefront in one step.
type RegisterSellerRequest struct {
	Name                    string     `json:"name" validate:"required"`
	Email                   string     `json:"email" validate:"required,email"`
	Password                string     `json:"password" validate:"required,min=8"`
	MobileNumber            string     `json:"mobile_number" validate:"required"`
	DOB                     *time.Time `json:"dob,omitempty"`
	NationalInsuranceNumber *string    `json:"national_insurance_number,omitempty"`
	Nationality             *string    `json:"nationality,omitempty"`
	HouseNumber             *string    `json:"house_number,omitempty"`
	Street                  *string    `json:"street,omitempty"`
	City                    *string    `json:"city,omitempty"`
	Postcode                *string    `json:"postcode,omitempty"`

	ShopName        string  `json:"shop_name" validate:"required"`
	ShopDescription *string `json:"shop_description,omitempty"`
	ShopAddress     *string `json:"shop_address,omitempty"`
	ShopPhone       *string `json:"shop_phone,omitempty"`
}

// RegisterResponse returns the created user identifier.
type RegisterResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

// RegisterService handles the onboarding transactions.
type RegisterService interface {
	RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*RegisterResponse, error)
	RegisterSeller(ctx context.Context, req RegisterSellerRequest) (*RegisterResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flows.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*RegisterResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var resp *RegisterResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if err := ensureEmailFree(ctx, userRepo, email); err != nil {
			return err
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			UserType:     enums.UserTypeCustomer,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		profile := &models.CustomerProfile{
			UserID:       user.ID,
			Name:         strings.TrimSpace(req.Name),
			MobileNumber: req.MobileNumber,
			Address:      req.Address,
		}
		if err := userRepo.CreateCustomerProfile(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer profile")
		}

		resp = &RegisterResponse{UserID: user.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *registerService) RegisterSeller(ctx context.Context, req RegisterSellerRequest) (*RegisterResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ShopName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop_name is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var resp *RegisterResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		shopRepo := shops.NewRepository(tx)

		if err := ensureEmailFree(ctx, userRepo, email); err != nil {
			return err
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			UserType:     enums.UserTypeSeller,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		profile := &models.SellerProfile{
			UserID:                  user.ID,
			Name:                    strings.TrimSpace(req.Name),
			MobileNumber:            strings.TrimSpace(req.MobileNumber),
			DOB:                     req.DOB,
			NationalInsuranceNumber: req.NationalInsuranceNumber,
			Nationality:             req.Nationality,
			HouseNumber:             req.HouseNumber,
			Street:                  req.Street,
			City:                    req.City,
			Postcode:                req.Postcode,
		}
		if err := userRepo.CreateSellerProfile(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create seller profile")
		}

		if _, err := shopRepo.Create(ctx, shops.CreateShopDTO{
			OwnerUserID: user.ID,
			Name:        strings.TrimSpace(req.ShopName),
			Description: req.ShopDescription,
			Address:     req.ShopAddress,
			Phone:       req.ShopPhone,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create shop")
		}

		resp = &RegisterResponse{UserID: user.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	return email, nil
}

func ensureEmailFree(ctx context.Context, repo *users.Repository, email string) error {
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}
	return nil
}
