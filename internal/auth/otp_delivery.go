package auth

import (
	"context"
	"fmt"

	"github.com/cravecart/cravecart-backend/pkg/logger"
)

// logOTPDeliverer writes the code to the application log instead of sending
// it out of band. Used until a mail or SMS provider is wired in.
type logOTPDeliverer struct {
	logg *logger.Logger
}

// NewLogOTPDeliverer returns a deliverer that logs OTP codes.
func NewLogOTPDeliverer(logg *logger.Logger) (OTPDeliverer, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &logOTPDeliverer{logg: logg}, nil
}

func (d *logOTPDeliverer) DeliverOTP(ctx context.Context, email, code string) error {
	ctx = d.logg.WithFields(ctx, map[string]any{
		"email": email,
		"code":  code,
	})
	d.logg.Info(ctx, "password reset otp issued")
	return nil
}
