package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/checkout"
	"github.com/cravecart/cravecart-backend/internal/pricing"
	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/logger"
)

type fakeStore struct {
	keys map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]bool{}}
}

func (f *fakeStore) Get(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "cc:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

type fakeWriter struct {
	order   *models.Order
	eventID string
	err     error
}

func (f *fakeWriter) PersistPaid(_ context.Context, order *models.Order, eventID string) error {
	if f.err != nil {
		return f.err
	}
	f.order = order
	f.eventID = eventID
	return nil
}

type fakeCatalog struct {
	items map[uuid.UUID]products.CatalogItem
}

func (f *fakeCatalog) GetItem(_ context.Context, id uuid.UUID) (*products.CatalogItem, error) {
	if item, ok := f.items[id]; ok {
		return &item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalog) GetItems(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]products.CatalogItem, error) {
	out := map[uuid.UUID]products.CatalogItem{}
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

type fakeCodes struct{}

func (fakeCodes) CodeExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type fakeUsers struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeNotifier struct {
	userIDs []uuid.UUID
}

func (f *fakeNotifier) NotifyOrderEvent(_ context.Context, userID, _ uuid.UUID, _, _, _ string) {
	f.userIDs = append(f.userIDs, userID)
}

type reconcilerFixture struct {
	userID   uuid.UUID
	shopID   uuid.UUID
	product  uuid.UUID
	store    *fakeStore
	writer   *fakeWriter
	catalog  *fakeCatalog
	users    *fakeUsers
	notifier *fakeNotifier
	service  *Service
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	f := &reconcilerFixture{
		userID:   uuid.New(),
		shopID:   uuid.New(),
		product:  uuid.New(),
		store:    newFakeStore(),
		writer:   &fakeWriter{},
		notifier: &fakeNotifier{},
	}
	f.users = &fakeUsers{users: map[uuid.UUID]*models.User{
		f.userID: {ID: f.userID, Email: "buyer@example.com"},
	}}
	f.catalog = &fakeCatalog{items: map[uuid.UUID]products.CatalogItem{
		f.product: {
			ID:          f.product,
			ShopID:      f.shopID,
			Name:        "Chicken Biryani",
			UnitPrice:   decimal.RequireFromString("12.50"),
			IsActive:    true,
			AlwaysAvail: true,
		},
	}}

	guard, err := NewIdempotencyGuard(f.store, time.Hour, "stripe")
	if err != nil {
		t.Fatalf("building guard: %v", err)
	}
	service, err := NewService(ServiceParams{
		Guard:    guard,
		Writer:   f.writer,
		Catalog:  f.catalog,
		Codes:    fakeCodes{},
		Users:    f.users,
		Rates:    pricing.Rates{TaxRate: decimal.RequireFromString("0.10"), DeliveryFee: decimal.RequireFromString("50.00")},
		Notifier: f.notifier,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: discardWriter{}}),
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	f.service = service
	return f
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (f *reconcilerFixture) event(t *testing.T, eventID string, refs []checkout.ItemRef) *stripe.Event {
	t.Helper()
	encoded, err := checkout.EncodeItems(refs)
	if err != nil {
		t.Fatalf("encoding items: %v", err)
	}
	session := map[string]any{
		"id": "cs_test_123",
		"metadata": map[string]string{
			checkout.MetadataKeyUserID: f.userID.String(),
			checkout.MetadataKeyShopID: f.shopID.String(),
			checkout.MetadataKeyItems:  encoded,
			checkout.MetadataKeyNote:   "extra spicy",
		},
	}
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshaling session: %v", err)
	}
	return &stripe.Event{
		ID:   eventID,
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEvent_CreatesPaidOrder(t *testing.T) {
	f := newReconcilerFixture(t)
	event := f.event(t, "evt_1", []checkout.ItemRef{{ProductID: f.product, Quantity: 2}})

	if err := f.service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	order := f.writer.order
	if order == nil {
		t.Fatal("expected an order to be written")
	}
	if f.writer.eventID != "evt_1" {
		t.Fatalf("expected marker for evt_1, got %s", f.writer.eventID)
	}
	if order.PaymentMethod != enums.PaymentMethodHostedPayment || order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("unexpected payment state %s/%s", order.PaymentMethod, order.PaymentStatus)
	}
	if order.UserID != f.userID || order.ShopID != f.shopID {
		t.Fatal("order owner mismatch")
	}
	if got := order.GrandTotal.StringFixed(2); got != "77.50" {
		t.Fatalf("expected grand total 77.50, got %s", got)
	}
	if order.Note == nil || *order.Note != "extra spicy" {
		t.Fatalf("expected note from metadata, got %v", order.Note)
	}
	if len(f.notifier.userIDs) != 1 || f.notifier.userIDs[0] != f.userID {
		t.Fatalf("expected buyer notification, got %v", f.notifier.userIDs)
	}
}

func TestHandleEvent_DuplicateDeliveryIgnored(t *testing.T) {
	f := newReconcilerFixture(t)
	event := f.event(t, "evt_dup", []checkout.ItemRef{{ProductID: f.product, Quantity: 1}})

	if err := f.service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	f.writer.order = nil

	if err := f.service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if f.writer.order != nil {
		t.Fatal("duplicate delivery must not write a second order")
	}
}

func TestHandleEvent_PersistedMarkerWins(t *testing.T) {
	f := newReconcilerFixture(t)
	f.writer.err = ErrEventAlreadyProcessed
	event := f.event(t, "evt_marker", []checkout.ItemRef{{ProductID: f.product, Quantity: 1}})

	if err := f.service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected marker conflict to be swallowed, got %v", err)
	}
}

func TestHandleEvent_IgnoresOtherEventTypes(t *testing.T) {
	f := newReconcilerFixture(t)
	event := &stripe.Event{
		ID:   "evt_other",
		Type: stripe.EventTypeInvoicePaid,
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}
	if err := f.service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if f.writer.order != nil {
		t.Fatal("non-checkout events must be ignored")
	}
}

func TestHandleEvent_SkipsVanishedProducts(t *testing.T) {
	f := newReconcilerFixture(t)
	gone := uuid.New()
	event := f.event(t, "evt_skip", []checkout.ItemRef{
		{ProductID: f.product, Quantity: 1},
		{ProductID: gone, Quantity: 3},
	})

	if err := f.service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	order := f.writer.order
	if order == nil {
		t.Fatal("expected an order")
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != f.product {
		t.Fatalf("expected only the resolvable item, got %+v", order.Items)
	}
}

func TestHandleEvent_DeletedBuyerFailsAsClientError(t *testing.T) {
	f := newReconcilerFixture(t)
	delete(f.users.users, f.userID)
	event := f.event(t, "evt_gone", []checkout.ItemRef{{ProductID: f.product, Quantity: 1}})

	err := f.service.HandleEvent(context.Background(), event)
	if err == nil {
		t.Fatal("expected an error for a deleted buyer")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if f.writer.order != nil {
		t.Fatal("no order may be written for a deleted buyer")
	}
}

func TestHandleEvent_FailureReleasesGuard(t *testing.T) {
	f := newReconcilerFixture(t)
	event := f.event(t, "evt_retry", nil)

	if err := f.service.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("expected metadata validation error")
	}
	// a retry of the same event must get through the guard again
	if err := f.service.HandleEvent(context.Background(), f.event(t, "evt_retry", []checkout.ItemRef{{ProductID: f.product, Quantity: 1}})); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if f.writer.order == nil {
		t.Fatal("expected the retry to create the order")
	}
}
