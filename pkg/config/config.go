package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const EnvPrefix = "CRAVECART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	Password      PasswordConfig
	Pricing       PricingConfig
	Stripe        StripeConfig
	FCM           FCMConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRAVECART_APP_ENV" required:"true"`
	Port         string `envconfig:"CRAVECART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CRAVECART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRAVECART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CRAVECART_DB_DSN"`
	Driver string `envconfig:"CRAVECART_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CRAVECART_DB_HOST"`
	Port     int    `envconfig:"CRAVECART_DB_PORT" default:"5432"`
	User     string `envconfig:"CRAVECART_DB_USER"`
	Password string `envconfig:"CRAVECART_DB_PASSWORD"`
	Name     string `envconfig:"CRAVECART_DB_NAME"`
	SSLMode  string `envconfig:"CRAVECART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRAVECART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRAVECART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRAVECART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRAVECART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CRAVECART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CRAVECART_REDIS_ADDR"`
	Password     string        `envconfig:"CRAVECART_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRAVECART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRAVECART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRAVECART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRAVECART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRAVECART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRAVECART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CRAVECART_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CRAVECART_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CRAVECART_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"CRAVECART_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CRAVECART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CRAVECART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CRAVECART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow       time.Duration `envconfig:"CRAVECART_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit   int           `envconfig:"CRAVECART_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit      int           `envconfig:"CRAVECART_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
	OTPRequestWindow   time.Duration `envconfig:"CRAVECART_AUTH_RATE_LIMIT_OTP_WINDOW" default:"10m"`
	OTPRequestLimit    int           `envconfig:"CRAVECART_AUTH_RATE_LIMIT_OTP_LIMIT" default:"3"`
	OTPAttemptMax      int           `envconfig:"CRAVECART_AUTH_OTP_ATTEMPT_MAX" default:"5"`
	OTPExpiryMinutes   int           `envconfig:"CRAVECART_AUTH_OTP_EXPIRY_MINUTES" default:"10"`
	OTPResetTTLMinutes int           `envconfig:"CRAVECART_AUTH_OTP_RESET_TTL_MINUTES" default:"15"`
}

// OTPExpiry returns how long a password-reset OTP stays valid.
func (a AuthRateLimitConfig) OTPExpiry() time.Duration {
	return time.Duration(a.OTPExpiryMinutes) * time.Minute
}

// OTPResetTTL returns how long a verified OTP can still be exchanged for a reset.
func (a AuthRateLimitConfig) OTPResetTTL() time.Duration {
	return time.Duration(a.OTPResetTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"CRAVECART_PASSWORD_BCRYPT_COST" default:"12"`
}

type PricingConfig struct {
	TaxRate     string `envconfig:"CRAVECART_PRICING_TAX_RATE" default:"0.10"`
	DeliveryFee string `envconfig:"CRAVECART_PRICING_DELIVERY_FEE" default:"50.00"`
	Currency    string `envconfig:"CRAVECART_PRICING_CURRENCY" default:"usd"`
}

func (p PricingConfig) validate() error {
	if _, err := decimal.NewFromString(p.TaxRate); err != nil {
		return fmt.Errorf("invalid tax rate %q: %w", p.TaxRate, err)
	}
	if _, err := decimal.NewFromString(p.DeliveryFee); err != nil {
		return fmt.Errorf("invalid delivery fee %q: %w", p.DeliveryFee, err)
	}
	return nil
}

// TaxRateDecimal parses the configured tax rate. validate() guarantees it parses.
func (p PricingConfig) TaxRateDecimal() decimal.Decimal {
	d, _ := decimal.NewFromString(p.TaxRate)
	return d
}

// DeliveryFeeDecimal parses the configured delivery fee.
func (p PricingConfig) DeliveryFeeDecimal() decimal.Decimal {
	d, _ := decimal.NewFromString(p.DeliveryFee)
	return d
}

type StripeConfig struct {
	APIKey        string `envconfig:"CRAVECART_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"CRAVECART_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"CRAVECART_STRIPE_ENV" default:"test"`
	SuccessURL    string `envconfig:"CRAVECART_STRIPE_SUCCESS_URL" default:"https://cravecart.app/checkout/success"`
	CancelURL     string `envconfig:"CRAVECART_STRIPE_CANCEL_URL" default:"https://cravecart.app/checkout/cancel"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type FCMConfig struct {
	Endpoint  string `envconfig:"CRAVECART_FCM_ENDPOINT" default:"https://fcm.googleapis.com/fcm/send"`
	ServerKey string `envconfig:"CRAVECART_FCM_SERVER_KEY"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CRAVECART_AUTO_MIGRATE" default:"false"`
	UseSQLite   bool `envconfig:"CRAVECART_USE_SQLITE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		"CRAVECART_DB_HOST": db.Host,
		"CRAVECART_DB_USER": db.User,
		"CRAVECART_DB_NAME": db.Name,
	}
	for _, key := range []string{"CRAVECART_DB_HOST", "CRAVECART_DB_USER", "CRAVECART_DB_NAME"} {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CRAVECART_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
