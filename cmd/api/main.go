package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/cravecart/cravecart-backend/api/routes"
	"github.com/cravecart/cravecart-backend/internal/auth"
	"github.com/cravecart/cravecart-backend/internal/cart"
	"github.com/cravecart/cravecart-backend/internal/chat"
	"github.com/cravecart/cravecart-backend/internal/checkout"
	"github.com/cravecart/cravecart-backend/internal/crave"
	"github.com/cravecart/cravecart-backend/internal/dashboard"
	"github.com/cravecart/cravecart-backend/internal/notifications"
	"github.com/cravecart/cravecart-backend/internal/orders"
	"github.com/cravecart/cravecart-backend/internal/pricing"
	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/internal/shops"
	"github.com/cravecart/cravecart-backend/internal/users"
	stripewebhook "github.com/cravecart/cravecart-backend/internal/webhooks/stripe"
	"github.com/cravecart/cravecart-backend/pkg/auth/session"
	"github.com/cravecart/cravecart-backend/pkg/config"
	"github.com/cravecart/cravecart-backend/pkg/db"
	"github.com/cravecart/cravecart-backend/pkg/fcm"
	"github.com/cravecart/cravecart-backend/pkg/logger"
	"github.com/cravecart/cravecart-backend/pkg/metrics"
	"github.com/cravecart/cravecart-backend/pkg/migrate"
	"github.com/cravecart/cravecart-backend/pkg/redis"
	pkgstripe "github.com/cravecart/cravecart-backend/pkg/stripe"
)

const (
	shutdownTimeout = 15 * time.Second
	webhookDedupTTL = 48 * time.Hour
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(logg, "failed to load config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		fatal(logg, "failed to bootstrap database", err)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		fatal(logg, "failed to run dev migrations", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		fatal(logg, "failed to bootstrap redis", err)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		fatal(logg, "failed to create session manager", err)
	}

	var stripeClient *pkgstripe.Client
	if cfg.Stripe.APIKey != "" {
		stripeClient, err = pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			fatal(logg, "failed to initialize stripe", err)
		}
	} else {
		logg.Warn(context.Background(), "stripe not configured, hosted payments disabled")
	}

	var pusher fcm.Sender
	if cfg.FCM.ServerKey != "" {
		fcmClient, err := fcm.NewClient(cfg.FCM)
		if err != nil {
			fatal(logg, "failed to initialize fcm", err)
		}
		pusher = fcmClient
	} else {
		logg.Warn(context.Background(), "fcm not configured, push delivery disabled")
	}

	usersRepo := users.NewRepository(dbClient.DB())
	shopsRepo := shops.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	chatRepo := chat.NewRepository(dbClient.DB())
	craveRepo := crave.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	catalog := products.NewCatalogReader(productsRepo)
	rates := pricing.Rates{
		TaxRate:     cfg.Pricing.TaxRateDecimal(),
		DeliveryFee: cfg.Pricing.DeliveryFeeDecimal(),
	}

	notificationService, err := notifications.NewService(notificationsRepo, pusher, logg)
	if err != nil {
		fatal(logg, "failed to create notification service", err)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		fatal(logg, "failed to create auth service", err)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		fatal(logg, "failed to create register service", err)
	}

	otpDeliverer, err := auth.NewLogOTPDeliverer(logg)
	if err != nil {
		fatal(logg, "failed to create otp deliverer", err)
	}

	resetService, err := auth.NewPasswordResetService(auth.PasswordResetParams{
		UserRepo:       usersRepo,
		Store:          redisClient,
		Deliverer:      otpDeliverer,
		Logger:         logg,
		RateLimit:      cfg.AuthRateLimit,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		fatal(logg, "failed to create password reset service", err)
	}

	profileService, err := users.NewService(usersRepo, nil)
	if err != nil {
		fatal(logg, "failed to create profile service", err)
	}

	shopService, err := shops.NewService(shopsRepo)
	if err != nil {
		fatal(logg, "failed to create shop service", err)
	}

	productService, err := products.NewService(productsRepo, shopsRepo)
	if err != nil {
		fatal(logg, "failed to create product service", err)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:    cartRepo,
		Catalog: catalog,
		Rates:   rates,
	})
	if err != nil {
		fatal(logg, "failed to create cart service", err)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Shops:    shopsRepo,
		Notifier: notificationService,
	})
	if err != nil {
		fatal(logg, "failed to create order service", err)
	}

	persister, err := checkout.NewPersister(dbClient)
	if err != nil {
		fatal(logg, "failed to create order persister", err)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Cart:         cartRepo,
		Catalog:      catalog,
		Codes:        ordersRepo,
		Persister:    persister,
		Shops:        shopsRepo,
		Stripe:       checkout.NewStripeClient(stripeClient),
		StripeConfig: cfg.Stripe,
		Rates:        rates,
		Currency:     cfg.Pricing.Currency,
		Notifier:     notificationService,
	})
	if err != nil {
		fatal(logg, "failed to create checkout service", err)
	}

	chatService, err := chat.NewService(chatRepo, usersRepo)
	if err != nil {
		fatal(logg, "failed to create chat service", err)
	}

	craveService, err := crave.NewService(craveRepo, shopsRepo, catalog)
	if err != nil {
		fatal(logg, "failed to create crave service", err)
	}

	dashboardService, err := dashboard.NewService(ordersRepo, shopsRepo, nil)
	if err != nil {
		fatal(logg, "failed to create dashboard service", err)
	}

	dedupGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookDedupTTL, "stripe-webhook")
	if err != nil {
		fatal(logg, "failed to create webhook idempotency guard", err)
	}
	paidOrderWriter, err := stripewebhook.NewPaidOrderWriter(dbClient)
	if err != nil {
		fatal(logg, "failed to create paid order writer", err)
	}
	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Guard:    dedupGuard,
		Writer:   paidOrderWriter,
		Catalog:  catalog,
		Codes:    ordersRepo,
		Users:    usersRepo,
		Rates:    rates,
		Notifier: notificationService,
		Logger:   logg,
	})
	if err != nil {
		fatal(logg, "failed to create stripe webhook service", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	params := routes.RouterParams{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		RateStore:       redisClient,
		Session:         sessionManager,
		AuthService:     authService,
		RegisterService: registerService,
		ResetService:    resetService,
		ProfileService:  profileService,
		ShopService:     shopService,
		ProductService:  productService,
		CartService:     cartService,
		CheckoutService: checkoutService,
		OrderService:    orderService,
		ChatService:     chatService,
		CraveService:    craveService,
		Notifications:   notificationService,
		Dashboard:       dashboardService,
		StripeWebhook:   webhookService,
		HTTPMetrics:     httpMetrics,
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	if stripeClient != nil {
		params.StripeClient = stripeClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(params),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(runCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "graceful shutdown failed", err)
		}
	}

	closeErr := multierr.Append(redisClient.Close(), dbClient.Close())
	if closeErr != nil {
		logg.Error(runCtx, "error closing clients", closeErr)
		os.Exit(1)
	}
	logg.Info(runCtx, "api server stopped")
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
