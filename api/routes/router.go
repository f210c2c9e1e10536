package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cravecart/cravecart-backend/api/controllers"
	webhookcontrollers "github.com/cravecart/cravecart-backend/api/controllers/webhooks"
	"github.com/cravecart/cravecart-backend/api/middleware"
	"github.com/cravecart/cravecart-backend/internal/auth"
	"github.com/cravecart/cravecart-backend/internal/cart"
	"github.com/cravecart/cravecart-backend/internal/chat"
	checkoutsvc "github.com/cravecart/cravecart-backend/internal/checkout"
	"github.com/cravecart/cravecart-backend/internal/crave"
	"github.com/cravecart/cravecart-backend/internal/dashboard"
	"github.com/cravecart/cravecart-backend/internal/notifications"
	"github.com/cravecart/cravecart-backend/internal/orders"
	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/internal/shops"
	"github.com/cravecart/cravecart-backend/internal/users"
	"github.com/cravecart/cravecart-backend/pkg/auth/session"
	"github.com/cravecart/cravecart-backend/pkg/config"
	"github.com/cravecart/cravecart-backend/pkg/db"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	"github.com/cravecart/cravecart-backend/pkg/logger"
	"github.com/cravecart/cravecart-backend/pkg/metrics"
	"github.com/cravecart/cravecart-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on. Optional
// fields (Stripe, Metrics) may be nil; the affected routes degrade or
// reject instead of panicking.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     redis.Pinger
	RateStore middleware.RateLimiterStore
	Session   session.AccessSessionChecker

	AuthService     auth.Service
	RegisterService auth.RegisterService
	ResetService    auth.PasswordResetService
	ProfileService  users.Service
	ShopService     shops.Service
	ProductService  products.Service
	CartService     cart.Service
	CheckoutService checkoutsvc.Service
	OrderService    orders.Service
	ChatService     chat.Service
	CraveService    crave.Service
	Notifications   notifications.Service
	Dashboard       dashboard.Service

	StripeWebhook webhookcontrollers.StripeWebhookService
	StripeClient  interface{ SigningSecret() string }

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if p.HTTPMetrics != nil {
		r.Use(p.HTTPMetrics.Middleware)
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.AuthRateLimit.OTPRequestWindow,
		0,
		cfg.AuthRateLimit.OTPRequestLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(signupPolicy, p.RateStore, logg)).
				Post("/signup", controllers.AuthSignupCustomer(p.RegisterService, p.AuthService, logg))
			r.With(middleware.AuthRateLimit(signupPolicy, p.RateStore, logg)).
				Post("/signup/seller", controllers.AuthSignupSeller(p.RegisterService, p.AuthService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, p.RateStore, logg)).
				Post("/login", controllers.AuthLogin(p.AuthService, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))

			r.Route("/password", func(r chi.Router) {
				r.With(middleware.AuthRateLimit(otpPolicy, p.RateStore, logg)).
					Post("/forgot", controllers.AuthForgotPassword(p.ResetService, logg))
				r.Post("/verify-otp", controllers.AuthVerifyOTP(p.ResetService, logg))
				r.Post("/reset", controllers.AuthResetPassword(p.ResetService, logg))
			})
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhook, p.StripeClient, logg))
		})

		// Public catalog and feed.
		r.Get("/shops", controllers.ShopList(p.ShopService, logg))
		r.Get("/shops/{shopId}", controllers.ShopDetail(p.ShopService, logg))
		r.Get("/products", controllers.ProductBrowse(p.ProductService, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(p.ProductService, logg))
		r.Get("/crave", controllers.CraveFeed(p.CraveService, logg))
		r.Get("/crave/{videoId}", controllers.CraveVideoDetail(p.CraveService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Session, logg))

			r.Post("/auth/logout", controllers.AuthLogout(p.AuthService, logg))
			r.Post("/auth/change-password", controllers.AuthChangePassword(p.AuthService, logg))

			r.Get("/profile", controllers.ProfileGet(p.ProfileService, logg))
			r.Put("/profile", controllers.ProfileUpdate(p.ProfileService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.CartService, logg))
				r.Delete("/", controllers.CartClear(p.CartService, logg))
				r.Post("/items", controllers.CartAddItems(p.CartService, logg))
				r.Post("/items/{productId}/increase", controllers.CartIncrease(p.CartService, logg))
				r.Post("/items/{productId}/decrease", controllers.CartDecrease(p.CartService, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveLine(p.CartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(p.CheckoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(p.OrderService, logg))
				r.Get("/{orderId}", controllers.OrderDetail(p.OrderService, logg))
				r.Post("/{orderId}/feedback", controllers.OrderLeaveFeedback(p.OrderService, logg))
			})

			r.Route("/chat/rooms", func(r chi.Router) {
				r.Get("/", controllers.ChatListRooms(p.ChatService, logg))
				r.Post("/", controllers.ChatOpenRoom(p.ChatService, logg))
				r.Get("/{roomId}/messages", controllers.ChatListMessages(p.ChatService, logg))
				r.Post("/{roomId}/messages", controllers.ChatSendMessage(p.ChatService, logg))
			})

			r.Post("/crave/{videoId}/like", controllers.CraveLike(p.CraveService, logg))
			r.Delete("/crave/{videoId}/like", controllers.CraveUnlike(p.CraveService, logg))
			r.Post("/crave/{videoId}/report", controllers.CraveReport(p.CraveService, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(p.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
				r.Post("/devices", controllers.RegisterDevice(p.Notifications, logg))
				r.Delete("/devices", controllers.UnregisterDevice(p.Notifications, logg))
			})

			r.Route("/seller", func(r chi.Router) {
				r.Use(middleware.RequireUserType(enums.UserTypeSeller, logg))

				r.Route("/shop", func(r chi.Router) {
					r.Get("/", controllers.ShopMe(p.ShopService, logg))
					r.Put("/", controllers.ShopUpdate(p.ShopService, logg))
					r.Post("/images", controllers.ShopAddImages(p.ShopService, logg))
					r.Delete("/images/{imageId}", controllers.ShopRemoveImage(p.ShopService, logg))
					r.Put("/documents", controllers.ShopUpsertDocuments(p.ShopService, logg))
				})

				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.SellerProductList(p.ProductService, logg))
					r.Post("/", controllers.SellerProductCreate(p.ProductService, logg))
					r.Patch("/{productId}", controllers.SellerProductUpdate(p.ProductService, logg))
					r.Delete("/{productId}", controllers.SellerProductDelete(p.ProductService, logg))
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.SellerOrderList(p.OrderService, logg))
					r.Post("/{orderId}/decision", controllers.SellerOrderDecision(p.OrderService, logg))
					r.Post("/{orderId}/tracking", controllers.SellerOrderTracking(p.OrderService, logg))
				})

				r.Route("/videos", func(r chi.Router) {
					r.Get("/", controllers.SellerVideoList(p.CraveService, logg))
					r.Post("/", controllers.SellerVideoCreate(p.CraveService, logg))
					r.Patch("/{videoId}", controllers.SellerVideoUpdate(p.CraveService, logg))
					r.Delete("/{videoId}", controllers.SellerVideoDelete(p.CraveService, logg))
				})

				r.Route("/dashboard", func(r chi.Router) {
					r.Get("/summary", controllers.DashboardSummary(p.Dashboard, logg))
					r.Get("/revenue", controllers.DashboardRevenueChart(p.Dashboard, logg))
				})
			})
		})
	})

	return r
}
