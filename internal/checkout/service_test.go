package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/pricing"
	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/pkg/config"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

type stubCart struct {
	lines []models.CartLine
}

func (s *stubCart) ListByUser(_ context.Context, _ uuid.UUID) ([]models.CartLine, error) {
	return s.lines, nil
}

type stubCatalog struct {
	items map[uuid.UUID]products.CatalogItem
}

func (s *stubCatalog) GetItem(_ context.Context, id uuid.UUID) (*products.CatalogItem, error) {
	if item, ok := s.items[id]; ok {
		return &item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalog) GetItems(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]products.CatalogItem, error) {
	out := map[uuid.UUID]products.CatalogItem{}
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

type stubCodes struct{}

func (stubCodes) CodeExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type stubPersister struct {
	order     *models.Order
	buyerID   uuid.UUID
	clearCart bool
}

func (s *stubPersister) Persist(_ context.Context, order *models.Order, buyerID uuid.UUID, clearCart bool) error {
	s.order = order
	s.buyerID = buyerID
	s.clearCart = clearCart
	return nil
}

type stubShopReader struct {
	shop *models.Shop
}

func (s *stubShopReader) FindByID(_ context.Context, _ uuid.UUID) (*models.Shop, error) {
	if s.shop == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.shop, nil
}

type stubStripe struct {
	params *stripe.CheckoutSessionParams
	url    string
}

func (s *stubStripe) CreateSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.params = params
	return &stripe.CheckoutSession{URL: s.url}, nil
}

type noopNotifier struct {
	userIDs []uuid.UUID
}

func (n *noopNotifier) NotifyOrderEvent(_ context.Context, userID, _ uuid.UUID, _, _, _ string) {
	n.userIDs = append(n.userIDs, userID)
}

func price(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testRates() pricing.Rates {
	return pricing.Rates{TaxRate: price("0.10"), DeliveryFee: price("50.00")}
}

type fixture struct {
	userID    uuid.UUID
	shopID    uuid.UUID
	ownerID   uuid.UUID
	cart      *stubCart
	catalog   *stubCatalog
	persister *stubPersister
	notifier  *noopNotifier
	stripe    *stubStripe
}

func newFixture() *fixture {
	f := &fixture{
		userID:    uuid.New(),
		shopID:    uuid.New(),
		ownerID:   uuid.New(),
		persister: &stubPersister{},
		notifier:  &noopNotifier{},
		stripe:    &stubStripe{url: "https://checkout.stripe.com/pay/cs_test_123"},
	}
	productID := uuid.New()
	f.cart = &stubCart{lines: []models.CartLine{
		{UserID: f.userID, ProductID: productID, Quantity: 2},
	}}
	f.catalog = &stubCatalog{items: map[uuid.UUID]products.CatalogItem{
		productID: {
			ID:          productID,
			ShopID:      f.shopID,
			Name:        "Margherita Pizza",
			UnitPrice:   price("15.00"),
			IsActive:    true,
			AlwaysAvail: true,
		},
	}}
	return f
}

func (f *fixture) service(t *testing.T, withStripe bool) Service {
	t.Helper()
	params := ServiceParams{
		Cart:      f.cart,
		Catalog:   f.catalog,
		Codes:     stubCodes{},
		Persister: f.persister,
		Shops:     &stubShopReader{shop: &models.Shop{ID: f.shopID, OwnerUserID: f.ownerID}},
		Rates:     testRates(),
		Notifier:  f.notifier,
		StripeConfig: config.StripeConfig{
			SuccessURL: "https://cravecart.app/checkout/success",
			CancelURL:  "https://cravecart.app/checkout/cancel",
		},
	}
	if withStripe {
		params.Stripe = f.stripe
	}
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestCheckout_CashCreatesOrder(t *testing.T) {
	f := newFixture()
	svc := f.service(t, false)

	result, err := svc.Checkout(context.Background(), f.userID, CheckoutRequest{
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.Order == nil {
		t.Fatal("expected an order in the result")
	}
	if result.RedirectURL != "" {
		t.Fatalf("cash checkout should not redirect, got %q", result.RedirectURL)
	}

	order := f.persister.order
	if order == nil {
		t.Fatal("expected order to be persisted")
	}
	if f.persister.buyerID != f.userID {
		t.Fatalf("expected cart clear for buyer %s, got %s", f.userID, f.persister.buyerID)
	}
	if !strings.HasPrefix(order.OrderCode, "CC-") {
		t.Fatalf("unexpected order code %q", order.OrderCode)
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("unexpected order state %s/%s", order.Status, order.PaymentStatus)
	}
	if got := order.Subtotal.StringFixed(2); got != "30.00" {
		t.Fatalf("expected subtotal 30.00, got %s", got)
	}
	if got := order.GrandTotal.StringFixed(2); got != "83.00" {
		t.Fatalf("expected grand total 83.00, got %s", got)
	}
	if len(order.Items) != 1 || order.Items[0].Name != "Margherita Pizza" {
		t.Fatalf("unexpected item snapshot %+v", order.Items)
	}
	if !f.persister.clearCart {
		t.Fatal("cart checkout should clear the stored cart")
	}
	if len(f.notifier.userIDs) != 2 || f.notifier.userIDs[0] != f.userID || f.notifier.userIDs[1] != f.ownerID {
		t.Fatalf("expected buyer and seller notifications, got %v", f.notifier.userIDs)
	}
}

func TestCheckout_EmptyCartFails(t *testing.T) {
	f := newFixture()
	f.cart.lines = nil
	svc := f.service(t, false)

	_, err := svc.Checkout(context.Background(), f.userID, CheckoutRequest{
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
	})
	if err == nil {
		t.Fatal("expected validation error for empty cart")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCheckout_SkipsUnavailableLines(t *testing.T) {
	f := newFixture()
	goneID := uuid.New()
	f.cart.lines = append(f.cart.lines, models.CartLine{
		UserID: f.userID, ProductID: goneID, Quantity: 1,
	})
	svc := f.service(t, false)

	result, err := svc.Checkout(context.Background(), f.userID, CheckoutRequest{
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.Order == nil {
		t.Fatal("expected an order for the remaining line")
	}
	if len(f.persister.order.Items) != 1 || f.persister.order.Items[0].Name != "Margherita Pizza" {
		t.Fatalf("unexpected item snapshot %+v", f.persister.order.Items)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].ProductID != goneID {
		t.Fatalf("expected the vanished product surfaced as skipped, got %+v", result.Skipped)
	}
}

func TestCheckout_AllLinesUnavailableFails(t *testing.T) {
	f := newFixture()
	for id, item := range f.catalog.items {
		item.IsActive = false
		f.catalog.items[id] = item
	}
	svc := f.service(t, false)

	_, err := svc.Checkout(context.Background(), f.userID, CheckoutRequest{
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
	})
	if err == nil {
		t.Fatal("expected validation error when nothing remains purchasable")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCheckout_AdHocItemsBypassCart(t *testing.T) {
	f := newFixture()
	var productID uuid.UUID
	for id := range f.catalog.items {
		productID = id
	}
	f.cart.lines = nil
	svc := f.service(t, false)

	result, err := svc.Checkout(context.Background(), f.userID, CheckoutRequest{
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
		Items:         []RequestItem{{ProductID: productID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.Order == nil {
		t.Fatal("expected an order from the ad-hoc items")
	}
	if got := f.persister.order.Subtotal.StringFixed(2); got != "45.00" {
		t.Fatalf("expected subtotal 45.00, got %s", got)
	}
	if f.persister.clearCart {
		t.Fatal("ad-hoc checkout must leave the stored cart alone")
	}
}

func TestCheckout_HostedCreatesSession(t *testing.T) {
	f := newFixture()
	svc := f.service(t, true)

	result, err := svc.Checkout(context.Background(), f.userID, CheckoutRequest{
		PaymentMethod: enums.PaymentMethodHostedPayment,
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.RedirectURL != f.stripe.url {
		t.Fatalf("expected redirect %q, got %q", f.stripe.url, result.RedirectURL)
	}
	if result.Order != nil {
		t.Fatal("hosted checkout must not create an order up front")
	}
	if f.persister.order != nil {
		t.Fatal("hosted checkout must not persist anything")
	}

	params := f.stripe.params
	if params == nil {
		t.Fatal("expected session params")
	}
	if got := params.Metadata[MetadataKeyUserID]; got != f.userID.String() {
		t.Fatalf("expected user metadata %s, got %s", f.userID, got)
	}
	if got := params.Metadata[MetadataKeyShopID]; got != f.shopID.String() {
		t.Fatalf("expected shop metadata %s, got %s", f.shopID, got)
	}
	refs, err := DecodeItems(params.Metadata[MetadataKeyItems])
	if err != nil {
		t.Fatalf("decoding items metadata: %v", err)
	}
	if len(refs) != 1 || refs[0].Quantity != 2 {
		t.Fatalf("unexpected item refs %+v", refs)
	}
	// product line + tax line + delivery fee line
	if len(params.LineItems) != 3 {
		t.Fatalf("expected 3 session lines, got %d", len(params.LineItems))
	}
	if got := *params.LineItems[0].PriceData.UnitAmount; got != 1500 {
		t.Fatalf("expected 1500 cents, got %d", got)
	}
}

func TestCheckout_HostedUsesConfiguredCurrency(t *testing.T) {
	f := newFixture()
	svc, err := NewService(ServiceParams{
		Cart:      f.cart,
		Catalog:   f.catalog,
		Codes:     stubCodes{},
		Persister: f.persister,
		Shops:     &stubShopReader{shop: &models.Shop{ID: f.shopID, OwnerUserID: f.ownerID}},
		Rates:     testRates(),
		Notifier:  f.notifier,
		Stripe:    f.stripe,
		Currency:  "EUR",
		StripeConfig: config.StripeConfig{
			SuccessURL: "https://cravecart.app/checkout/success",
			CancelURL:  "https://cravecart.app/checkout/cancel",
		},
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	if _, err := svc.Checkout(context.Background(), f.userID, CheckoutRequest{
		PaymentMethod: enums.PaymentMethodHostedPayment,
	}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	for _, line := range f.stripe.params.LineItems {
		if got := *line.PriceData.Currency; got != "eur" {
			t.Fatalf("expected session lines in eur, got %s", got)
		}
	}
}

func TestCheckout_HostedWithoutStripeFails(t *testing.T) {
	f := newFixture()
	svc := f.service(t, false)

	_, err := svc.Checkout(context.Background(), f.userID, CheckoutRequest{
		PaymentMethod: enums.PaymentMethodHostedPayment,
	})
	if err == nil {
		t.Fatal("expected dependency error without stripe")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}
