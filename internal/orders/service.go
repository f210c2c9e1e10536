package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

// Service defines the order lifecycle operations exposed to controllers.
type Service interface {
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	LeaveFeedback(ctx context.Context, userID, orderID uuid.UUID, req LeaveFeedbackRequest) (*OrderDTO, error)
	ListShopOrders(ctx context.Context, sellerID uuid.UUID, status *enums.OrderStatus) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, sellerID, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error)
	UpdateTracking(ctx context.Context, sellerID, orderID uuid.UUID, req UpdateTrackingRequest) (*OrderDTO, error)
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, status *enums.OrderStatus) ([]models.Order, error)
	UpdateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateFeedback(ctx context.Context, feedback *models.OrderFeedback) error
}

type shopResolver interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
}

// Notifier delivers order lifecycle notifications to buyers, best effort.
type Notifier interface {
	NotifyOrderEvent(ctx context.Context, userID, orderID uuid.UUID, kind, title, body string)
}

type service struct {
	repo     repository
	shops    shopResolver
	notifier Notifier
}

// ServiceParams bundles the order service dependencies.
type ServiceParams struct {
	Repo     repository
	Shops    shopResolver
	Notifier Notifier
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shop resolver is required")
	}
	return &service{
		repo:     params.Repo,
		shops:    params.Shops,
		notifier: params.Notifier,
	}, nil
}

func (s *service) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.ownedByBuyer(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) LeaveFeedback(ctx context.Context, userID, orderID uuid.UUID, req LeaveFeedbackRequest) (*OrderDTO, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	order, err := s.ownedByBuyer(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Feedback != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "feedback already submitted for this order")
	}

	feedback := &models.OrderFeedback{
		OrderID: order.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := s.repo.CreateFeedback(ctx, feedback); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "feedback already submitted for this order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create feedback")
	}

	order.Feedback = feedback
	return FromModel(order), nil
}

func (s *service) ListShopOrders(ctx context.Context, sellerID uuid.UUID, status *enums.OrderStatus) ([]OrderDTO, error) {
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShop(ctx, shop.ID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shop orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateStatus(ctx context.Context, sellerID, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error) {
	if !req.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.ownedByShop(ctx, sellerID, orderID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(order.Status, req.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status))
	}

	updates := map[string]any{"status": req.Status}
	switch req.Status {
	case enums.OrderStatusRejected:
		reason := ""
		if req.RejectionReason != nil {
			reason = strings.TrimSpace(*req.RejectionReason)
		}
		if reason == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection requires a reason")
		}
		updates["rejection_reason"] = reason
		updates["tracking_status"] = enums.TrackingStatusCancelled
	case enums.OrderStatusCompleted:
		updates["tracking_status"] = enums.TrackingStatusDelivered
	}

	if err := s.repo.UpdateColumns(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}

	updated, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
	}

	s.notifyStatusChange(ctx, updated)
	return FromModel(updated), nil
}

func (s *service) UpdateTracking(ctx context.Context, sellerID, orderID uuid.UUID, req UpdateTrackingRequest) (*OrderDTO, error) {
	if !req.TrackingStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tracking status")
	}

	order, err := s.ownedByShop(ctx, sellerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rejected orders cannot be tracked")
	}

	if err := s.repo.UpdateColumns(ctx, order.ID, map[string]any{
		"tracking_status": req.TrackingStatus,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update tracking status")
	}

	updated, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
	}

	if s.notifier != nil {
		s.notifier.NotifyOrderEvent(ctx, updated.UserID, updated.ID, "order_tracking",
			"Order update",
			fmt.Sprintf("Order %s is now %s", updated.OrderCode, updated.TrackingStatus))
	}
	return FromModel(updated), nil
}

func (s *service) notifyStatusChange(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	var body string
	switch order.Status {
	case enums.OrderStatusApproved:
		body = fmt.Sprintf("Order %s has been accepted by the shop", order.OrderCode)
	case enums.OrderStatusCompleted:
		body = fmt.Sprintf("Order %s has been delivered", order.OrderCode)
	case enums.OrderStatusRejected:
		reason := ""
		if order.RejectionReason != nil {
			reason = *order.RejectionReason
		}
		body = fmt.Sprintf("Order %s was rejected: %s", order.OrderCode, reason)
	default:
		return
	}
	s.notifier.NotifyOrderEvent(ctx, order.UserID, order.ID, "order_status", "Order update", body)
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	switch from {
	case enums.OrderStatusPending:
		return to == enums.OrderStatusApproved || to == enums.OrderStatusRejected
	case enums.OrderStatusApproved:
		return to == enums.OrderStatusCompleted
	default:
		return false
	}
}

func (s *service) ownedByBuyer(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ownedByShop(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error) {
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ShopID != shop.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) ownedShop(ctx context.Context, sellerID uuid.UUID) (*models.Shop, error) {
	shop, err := s.shops.FindByOwner(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found for seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load seller shop")
	}
	return shop, nil
}
