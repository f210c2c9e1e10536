package users

import (
	"context"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

// Account is the typed view of a user row. Each user resolves to exactly
// one variant, and profile reads and writes go through that variant rather
// than through user_type dispatch at the call sites.
type Account interface {
	User() *models.User
	profileUpdates(req UpdateProfileRequest) map[string]any
	saveProfile(ctx context.Context, repo profileRepository, updates map[string]any) error
	profileDTO(ctx context.Context, repo profileRepository) (*ProfileDTO, error)
}

// ResolveAccount wraps a user row in its account variant. Legacy rows with
// an unknown user_type behave as customers, matching signup defaults.
func ResolveAccount(user *models.User) Account {
	if user.UserType == enums.UserTypeSeller {
		return SellerAccount{user: user}
	}
	return CustomerAccount{user: user}
}

// SellerAccount is the seller variant. Its profile carries the structured
// business address fields.
type SellerAccount struct {
	user *models.User
}

func (a SellerAccount) User() *models.User { return a.user }

func (a SellerAccount) profileUpdates(req UpdateProfileRequest) map[string]any {
	updates := commonUpdates(req)
	setTrimmed(updates, "house_number", req.HouseNumber)
	setTrimmed(updates, "street", req.Street)
	setTrimmed(updates, "city", req.City)
	setTrimmed(updates, "postcode", req.Postcode)
	return updates
}

func (a SellerAccount) saveProfile(ctx context.Context, repo profileRepository, updates map[string]any) error {
	return repo.UpdateSellerProfile(ctx, a.user.ID, updates)
}

func (a SellerAccount) profileDTO(ctx context.Context, repo profileRepository) (*ProfileDTO, error) {
	profile, err := repo.FindSellerProfile(ctx, a.user.ID)
	if err != nil && !isNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	return &ProfileDTO{User: FromModel(a.user), Seller: sellerProfileFromModel(profile)}, nil
}

// CustomerAccount is the buyer variant with the free-form delivery address
// and avatar.
type CustomerAccount struct {
	user *models.User
}

func (a CustomerAccount) User() *models.User { return a.user }

func (a CustomerAccount) profileUpdates(req UpdateProfileRequest) map[string]any {
	updates := commonUpdates(req)
	setTrimmed(updates, "address", req.Address)
	setTrimmed(updates, "avatar_url", req.AvatarURL)
	return updates
}

func (a CustomerAccount) saveProfile(ctx context.Context, repo profileRepository, updates map[string]any) error {
	return repo.UpdateCustomerProfile(ctx, a.user.ID, updates)
}

func (a CustomerAccount) profileDTO(ctx context.Context, repo profileRepository) (*ProfileDTO, error) {
	profile, err := repo.FindCustomerProfile(ctx, a.user.ID)
	if err != nil && !isNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer profile")
	}
	return &ProfileDTO{User: FromModel(a.user), Customer: customerProfileFromModel(profile)}, nil
}
