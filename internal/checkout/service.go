package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/cravecart/cravecart-backend/internal/orders"
	"github.com/cravecart/cravecart-backend/internal/pricing"
	"github.com/cravecart/cravecart-backend/internal/products"
	"github.com/cravecart/cravecart-backend/pkg/config"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

const (
	defaultCurrency   = "usd"
	orderCodeAttempts = 5
)

type cartReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
}

// CodeChecker reports whether an order code is already taken.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

type shopReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
}

// OrderPersister writes the order and, for cart checkouts, clears the
// buyer's cart in the same transaction.
type OrderPersister interface {
	Persist(ctx context.Context, order *models.Order, buyerID uuid.UUID, clearCart bool) error
}

// Service converts the buyer's cart into an order or a hosted payment session.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error)
}

type service struct {
	carts     cartReader
	catalog   products.CatalogReader
	codes     CodeChecker
	persister OrderPersister
	shops     shopReader
	stripe    StripeCheckoutClient
	stripeCfg config.StripeConfig
	rates     pricing.Rates
	currency  string
	notifier  orders.Notifier
	now       func() time.Time
}

// ServiceParams bundles the checkout service dependencies.
type ServiceParams struct {
	Cart         cartReader
	Catalog      products.CatalogReader
	Codes        CodeChecker
	Persister    OrderPersister
	Shops        shopReader
	Stripe       StripeCheckoutClient
	StripeConfig config.StripeConfig
	Rates        pricing.Rates
	Currency     string
	Notifier     orders.Notifier
	Now          func() time.Time
}

// NewService builds the checkout service. Stripe is optional; without it
// hosted payments are rejected at checkout time.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart reader is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader is required")
	}
	if params.Codes == nil {
		return nil, fmt.Errorf("order code checker is required")
	}
	if params.Persister == nil {
		return nil, fmt.Errorf("order persister is required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shop reader is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	currency := strings.TrimSpace(strings.ToLower(params.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	return &service{
		carts:     params.Cart,
		catalog:   params.Catalog,
		codes:     params.Codes,
		persister: params.Persister,
		shops:     params.Shops,
		stripe:    params.Stripe,
		stripeCfg: params.StripeConfig,
		rates:     params.Rates,
		currency:  currency,
		notifier:  params.Notifier,
		now:       now,
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	fromCart := len(req.Items) == 0
	var lines []models.CartLine
	if fromCart {
		var err error
		lines, err = s.carts.ListByUser(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(lines) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
	} else {
		lines = make([]models.CartLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, models.CartLine{
				UserID:    userID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
	}

	orderItems, priceLines, shopID, skipped, err := s.buildOrderLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	totals, err := pricing.Quote(s.rates, priceLines)
	if err != nil {
		return nil, err
	}

	switch req.PaymentMethod {
	case enums.PaymentMethodCashOnDelivery:
		return s.checkoutCash(ctx, userID, shopID, req, orderItems, totals, fromCart, skipped)
	case enums.PaymentMethodHostedPayment:
		return s.checkoutHosted(ctx, userID, shopID, req, orderItems, totals, skipped)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
}

// buildOrderLines resolves requested lines against the catalog and
// snapshots name and price per line. Lines whose product vanished or went
// inactive are skipped and surfaced; the checkout fails only when nothing
// purchasable remains. All remaining lines must belong to a single shop.
func (s *service) buildOrderLines(ctx context.Context, lines []models.CartLine) ([]models.OrderItem, []pricing.Line, uuid.UUID, []SkippedItem, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	items, err := s.catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, nil, uuid.Nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}

	now := s.now()
	var shopID uuid.UUID
	var skipped []SkippedItem
	orderItems := make([]models.OrderItem, 0, len(lines))
	priceLines := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		item, ok := items[line.ProductID]
		if !ok || !item.Available(now) || line.Quantity <= 0 {
			skipped = append(skipped, SkippedItem{
				ProductID: line.ProductID,
				Reason:    "product is no longer available",
			})
			continue
		}
		if shopID == uuid.Nil {
			shopID = item.ShopID
		} else if item.ShopID != shopID {
			return nil, nil, uuid.Nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains items from multiple shops")
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  line.Quantity,
		})
		priceLines = append(priceLines, pricing.Line{
			ProductID: item.ID,
			UnitPrice: item.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	if len(orderItems) == 0 {
		return nil, nil, uuid.Nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "no purchasable items remain")
	}
	return orderItems, priceLines, shopID, skipped, nil
}

func (s *service) checkoutCash(
	ctx context.Context,
	userID, shopID uuid.UUID,
	req CheckoutRequest,
	items []models.OrderItem,
	totals pricing.Totals,
	clearCart bool,
	skipped []SkippedItem,
) (*CheckoutResult, error) {
	code, err := s.newOrderCode(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		ShopID:         shopID,
		OrderCode:      code,
		PaymentMethod:  enums.PaymentMethodCashOnDelivery,
		PaymentStatus:  enums.PaymentStatusUnpaid,
		Status:         enums.OrderStatusPending,
		TrackingStatus: enums.TrackingStatusConfirmed,
		Note:           req.Note,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		DeliveryFee:    totals.DeliveryFee,
		GrandTotal:     totals.GrandTotal,
		Items:          items,
	}
	if err := s.persister.Persist(ctx, order, userID, clearCart); err != nil {
		return nil, err
	}

	s.notifyBuyer(ctx, order)
	s.notifySeller(ctx, order)
	return &CheckoutResult{Order: orders.FromModel(order), Skipped: skipped}, nil
}

func (s *service) checkoutHosted(
	ctx context.Context,
	userID, shopID uuid.UUID,
	req CheckoutRequest,
	items []models.OrderItem,
	totals pricing.Totals,
	skipped []SkippedItem,
) (*CheckoutResult, error) {
	if s.stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "card payments are not configured")
	}

	refs := make([]ItemRef, 0, len(items))
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items)+2)
	for _, item := range items {
		refs = append(refs, ItemRef{ProductID: item.ProductID, Quantity: item.Quantity})
		lineItems = append(lineItems, s.sessionLineItem(item.Name, item.UnitPrice, int64(item.Quantity)))
	}
	// Tax and delivery fee ride along as flat lines so the hosted total
	// matches the quoted grand total exactly.
	if totals.Tax.IsPositive() {
		lineItems = append(lineItems, s.sessionLineItem("Tax", totals.Tax, 1))
	}
	if totals.DeliveryFee.IsPositive() {
		lineItems = append(lineItems, s.sessionLineItem("Delivery fee", totals.DeliveryFee, 1))
	}

	encodedItems, err := EncodeItems(refs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session metadata")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.stripeCfg.SuccessURL),
		CancelURL:  stripe.String(s.stripeCfg.CancelURL),
		LineItems:  lineItems,
	}
	params.AddMetadata(MetadataKeyUserID, userID.String())
	params.AddMetadata(MetadataKeyShopID, shopID.String())
	params.AddMetadata(MetadataKeyItems, encodedItems)
	if req.Note != nil && strings.TrimSpace(*req.Note) != "" {
		params.AddMetadata(MetadataKeyNote, *req.Note)
	}

	session, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	// The cart survives until the webhook confirms payment.
	return &CheckoutResult{RedirectURL: session.URL, Skipped: skipped}, nil
}

func (s *service) newOrderCode(ctx context.Context) (string, error) {
	return AllocateOrderCode(ctx, s.codes)
}

// AllocateOrderCode generates an order code that is not yet taken. The
// random space is large enough that collisions are rare; a bounded retry
// covers them.
func AllocateOrderCode(ctx context.Context, codes CodeChecker) (string, error) {
	for attempt := 0; attempt < orderCodeAttempts; attempt++ {
		code := generateOrderCode()
		exists, err := codes.CodeExists(ctx, code)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order code")
		}
		if !exists {
			return code, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order code")
}

func (s *service) notifyBuyer(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyOrderEvent(ctx, order.UserID, order.ID, "order_placed",
		"Order placed",
		fmt.Sprintf("Order %s has been sent to the restaurant", order.OrderCode))
}

func (s *service) notifySeller(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	shop, err := s.shops.FindByID(ctx, order.ShopID)
	if err != nil {
		return
	}
	s.notifier.NotifyOrderEvent(ctx, shop.OwnerUserID, order.ID, "order_placed",
		"New order received",
		fmt.Sprintf("Order %s is waiting for your approval", order.OrderCode))
}

func generateOrderCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CC-" + strings.ToUpper(raw[:10])
}

func (s *service) sessionLineItem(name string, amount decimal.Decimal, quantity int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(quantity),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(s.currency),
			UnitAmount: stripe.Int64(amountToCents(amount)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
	}
}

func amountToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
