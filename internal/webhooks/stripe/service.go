package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/checkout"
	"github.com/cravecart/cravecart-backend/internal/orders"
	"github.com/cravecart/cravecart-backend/internal/pricing"
	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/logger"
)

// BuyerResolver looks up the account a paid session belongs to.
type BuyerResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceParams bundles the webhook reconciler dependencies.
type ServiceParams struct {
	Guard    *IdempotencyGuard
	Writer   PaidOrderWriter
	Catalog  products.CatalogReader
	Codes    checkout.CodeChecker
	Users    BuyerResolver
	Rates    pricing.Rates
	Notifier orders.Notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service turns completed Stripe checkout sessions into paid orders. The
// hosted flow creates no order at checkout time; this reconciler is the
// only writer for card payments.
type Service struct {
	guard    *IdempotencyGuard
	writer   PaidOrderWriter
	catalog  products.CatalogReader
	codes    checkout.CodeChecker
	users    BuyerResolver
	rates    pricing.Rates
	notifier orders.Notifier
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the reconciler.
func NewService(params ServiceParams) (*Service, error) {
	if params.Guard == nil {
		return nil, fmt.Errorf("idempotency guard is required")
	}
	if params.Writer == nil {
		return nil, fmt.Errorf("paid order writer is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader is required")
	}
	if params.Codes == nil {
		return nil, fmt.Errorf("order code checker is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("buyer resolver is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		guard:    params.Guard,
		writer:   params.Writer,
		catalog:  params.Catalog,
		codes:    params.Codes,
		users:    params.Users,
		rates:    params.Rates,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// HandleEvent processes one verified Stripe event. Events other than
// checkout.session.completed are acknowledged without work.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil
	}

	ctx = s.logg.WithField(ctx, "stripe_event_id", event.ID)
	seen, err := s.guard.CheckAndMark(ctx, event.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check event idempotency")
	}
	if seen {
		s.logg.Info(ctx, "skipping already seen stripe event")
		return nil
	}

	if err := s.reconcile(ctx, event); err != nil {
		if errors.Is(err, ErrEventAlreadyProcessed) {
			s.logg.Info(ctx, "stripe event already reconciled")
			return nil
		}
		// Free the redis marker so the provider retry gets another run.
		if releaseErr := s.guard.Release(ctx, event.ID); releaseErr != nil {
			s.logg.Warn(ctx, "could not release idempotency marker")
		}
		return err
	}
	return nil
}

func (s *Service) reconcile(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session")
	}

	meta, err := parseSessionMetadata(session.Metadata)
	if err != nil {
		return err
	}
	// A buyer deleted between session creation and payment must not turn
	// into a foreign key failure that the provider retries forever.
	if _, err := s.users.FindByID(ctx, meta.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "buyer account no longer exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}

	items, lines := s.resolveItems(ctx, meta.Items)
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "paid session has no resolvable products")
	}
	totals, err := pricing.Quote(s.rates, lines)
	if err != nil {
		return err
	}
	code, err := checkout.AllocateOrderCode(ctx, s.codes)
	if err != nil {
		return err
	}

	order := &models.Order{
		ID:             uuid.New(),
		UserID:         meta.UserID,
		ShopID:         meta.ShopID,
		OrderCode:      code,
		PaymentMethod:  enums.PaymentMethodHostedPayment,
		PaymentStatus:  enums.PaymentStatusPaid,
		Status:         enums.OrderStatusPending,
		TrackingStatus: enums.TrackingStatusConfirmed,
		Note:           meta.Note,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		DeliveryFee:    totals.DeliveryFee,
		GrandTotal:     totals.GrandTotal,
		Items:          items,
	}
	if err := s.writer.PersistPaid(ctx, order, event.ID); err != nil {
		return err
	}

	s.logg.Info(s.logg.WithField(ctx, "order_code", order.OrderCode), "reconciled paid checkout session")
	if s.notifier != nil {
		s.notifier.NotifyOrderEvent(ctx, order.UserID, order.ID, "order_placed",
			"Payment received",
			fmt.Sprintf("Order %s has been placed and paid", order.OrderCode))
	}
	return nil
}

// resolveItems maps metadata refs back onto the catalog. Products that
// vanished or went inactive between session creation and payment are
// skipped with a log line; the order keeps the rest.
func (s *Service) resolveItems(ctx context.Context, refs []checkout.ItemRef) ([]models.OrderItem, []pricing.Line) {
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ProductID)
	}
	catalogItems, err := s.catalog.GetItems(ctx, ids)
	if err != nil {
		s.logg.Error(ctx, "loading products for paid session", err)
		return nil, nil
	}

	now := s.now()
	items := make([]models.OrderItem, 0, len(refs))
	lines := make([]pricing.Line, 0, len(refs))
	for _, ref := range refs {
		item, ok := catalogItems[ref.ProductID]
		if !ok || !item.Available(now) || ref.Quantity <= 0 {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", ref.ProductID.String()),
				"skipping unresolvable product on paid session")
			continue
		}
		items = append(items, models.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  ref.Quantity,
		})
		lines = append(lines, pricing.Line{
			ProductID: item.ID,
			UnitPrice: item.UnitPrice,
			Quantity:  ref.Quantity,
		})
	}
	return items, lines
}

type sessionMetadata struct {
	UserID uuid.UUID
	ShopID uuid.UUID
	Note   *string
	Items  []checkout.ItemRef
}

func parseSessionMetadata(meta map[string]string) (*sessionMetadata, error) {
	userID, err := uuid.Parse(meta[checkout.MetadataKeyUserID])
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session metadata missing buyer id")
	}
	shopID, err := uuid.Parse(meta[checkout.MetadataKeyShopID])
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session metadata missing shop id")
	}
	items, err := checkout.DecodeItems(meta[checkout.MetadataKeyItems])
	if err != nil || len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session metadata missing items")
	}

	parsed := &sessionMetadata{UserID: userID, ShopID: shopID, Items: items}
	if note := strings.TrimSpace(meta[checkout.MetadataKeyNote]); note != "" {
		parsed.Note = &note
	}
	return parsed, nil
}
