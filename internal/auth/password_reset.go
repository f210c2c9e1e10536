package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/config"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/logger"
	"github.com/cravecart/cravecart-backend/pkg/security"
)

// PasswordResetService drives the OTP-based reset flow. Codes live in Redis
// with a TTL; nothing is written to the user row until the final reset.
type PasswordResetService interface {
	RequestReset(ctx context.Context, req ForgotPasswordRequest) error
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type otpStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	OTPKey(email string) string
}

// OTPDeliverer sends the generated code to the user out of band.
type OTPDeliverer interface {
	DeliverOTP(ctx context.Context, email, code string) error
}

type passwordResetService struct {
	users       userRepository
	store       otpStore
	deliver     OTPDeliverer
	logg        *logger.Logger
	rateCfg     config.AuthRateLimitConfig
	passwordCfg config.PasswordConfig
}

// PasswordResetParams bundles the reset flow dependencies.
type PasswordResetParams struct {
	UserRepo       userRepository
	Store          otpStore
	Deliverer      OTPDeliverer
	Logger         *logger.Logger
	RateLimit      config.AuthRateLimitConfig
	PasswordConfig config.PasswordConfig
}

// NewPasswordResetService builds the OTP reset service.
func NewPasswordResetService(params PasswordResetParams) (PasswordResetService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("otp store is required")
	}
	return &passwordResetService{
		users:       params.UserRepo,
		store:       params.Store,
		deliver:     params.Deliverer,
		logg:        params.Logger,
		rateCfg:     params.RateLimit,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *passwordResetService) RequestReset(ctx context.Context, req ForgotPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	// Lookup failures are hidden from the caller so the endpoint cannot be
	// used to enumerate accounts.
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.IsActive {
		return nil
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}

	if err := s.store.Set(ctx, s.store.OTPKey(email), code, s.rateCfg.OTPExpiry()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store otp")
	}

	if s.deliver != nil {
		if err := s.deliver.DeliverOTP(ctx, email, code); err != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("otp delivery failed: %v", err))
		}
	}
	return nil
}

func (s *passwordResetService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	key := s.store.OTPKey(email)

	attempts, err := s.store.IncrWithTTL(ctx, key+":attempts", s.rateCfg.OTPExpiry())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "track otp attempts")
	}
	if s.rateCfg.OTPAttemptMax > 0 && attempts > int64(s.rateCfg.OTPAttemptMax) {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many otp attempts")
	}

	stored, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load otp")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(req.Code))) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
	}

	resetToken, err := security.GenerateOTP()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	resetToken = fmt.Sprintf("%s-%s", resetToken, email)

	ttl := s.rateCfg.OTPResetTTL()
	if err := s.store.Set(ctx, key+":reset", resetToken, ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}
	if err := s.store.Del(ctx, key, key+":attempts"); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("clearing verified otp failed: %v", err))
	}

	return &VerifyOTPResponse{
		ResetToken: resetToken,
		ExpiresAt:  time.Now().UTC().Add(ttl),
	}, nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	key := s.store.OTPKey(email) + ":reset"

	stored, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired reset token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reset token")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(req.ResetToken))) != 1 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired reset token")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired reset token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	if err := s.store.Del(ctx, key); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("clearing reset token failed: %v", err))
	}
	return nil
}
