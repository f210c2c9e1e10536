package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

type stubRepo struct {
	orders   map[uuid.UUID]*models.Order
	feedback map[uuid.UUID]*models.OrderFeedback
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		orders:   map[uuid.UUID]*models.Order{},
		feedback: map[uuid.UUID]*models.OrderFeedback{},
	}
}

func (r *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	if fb, ok := r.feedback[id]; ok {
		copied.Feedback = fb
	}
	return &copied, nil
}

func (r *stubRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *stubRepo) ListByShop(_ context.Context, shopID uuid.UUID, status *enums.OrderStatus) ([]models.Order, error) {
	var out []models.Order
	for _, order := range r.orders {
		if order.ShopID != shopID {
			continue
		}
		if status != nil && order.Status != *status {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (r *stubRepo) UpdateColumns(_ context.Context, id uuid.UUID, updates map[string]any) error {
	order, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		order.Status = v.(enums.OrderStatus)
	}
	if v, ok := updates["tracking_status"]; ok {
		order.TrackingStatus = v.(enums.TrackingStatus)
	}
	if v, ok := updates["rejection_reason"]; ok {
		reason := v.(string)
		order.RejectionReason = &reason
	}
	return nil
}

func (r *stubRepo) CreateFeedback(_ context.Context, feedback *models.OrderFeedback) error {
	if _, ok := r.feedback[feedback.OrderID]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.feedback[feedback.OrderID] = feedback
	return nil
}

type stubShops struct {
	shops map[uuid.UUID]*models.Shop
}

func (s *stubShops) FindByOwner(_ context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	if shop, ok := s.shops[ownerID]; ok {
		return shop, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) NotifyOrderEvent(_ context.Context, _, _ uuid.UUID, kind, _, _ string) {
	n.events = append(n.events, kind)
}

func seedOrder(repo *stubRepo, userID, shopID uuid.UUID, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		ShopID:         shopID,
		OrderCode:      "ord-test",
		Status:         status,
		TrackingStatus: enums.TrackingStatusConfirmed,
	}
	repo.orders[order.ID] = order
	return order
}

func newTestService(t *testing.T, repo *stubRepo, shops *stubShops, notifier Notifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Shops: shops, Notifier: notifier})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestLeaveFeedback_OncePerOrder(t *testing.T) {
	repo := newStubRepo()
	userID := uuid.New()
	order := seedOrder(repo, userID, uuid.New(), enums.OrderStatusCompleted)
	svc := newTestService(t, repo, &stubShops{shops: map[uuid.UUID]*models.Shop{}}, nil)

	if _, err := svc.LeaveFeedback(context.Background(), userID, order.ID, LeaveFeedbackRequest{Rating: 5}); err != nil {
		t.Fatalf("first feedback: %v", err)
	}

	_, err := svc.LeaveFeedback(context.Background(), userID, order.ID, LeaveFeedbackRequest{Rating: 3})
	if err == nil {
		t.Fatal("expected conflict on second feedback")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLeaveFeedback_OtherBuyersOrderHidden(t *testing.T) {
	repo := newStubRepo()
	order := seedOrder(repo, uuid.New(), uuid.New(), enums.OrderStatusCompleted)
	svc := newTestService(t, repo, &stubShops{shops: map[uuid.UUID]*models.Shop{}}, nil)

	_, err := svc.LeaveFeedback(context.Background(), uuid.New(), order.ID, LeaveFeedbackRequest{Rating: 4})
	if err == nil {
		t.Fatal("expected not found for foreign order")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdateStatus_RejectionRequiresReason(t *testing.T) {
	repo := newStubRepo()
	sellerID := uuid.New()
	shop := &models.Shop{ID: uuid.New(), OwnerUserID: sellerID}
	shops := &stubShops{shops: map[uuid.UUID]*models.Shop{sellerID: shop}}
	order := seedOrder(repo, uuid.New(), shop.ID, enums.OrderStatusPending)
	svc := newTestService(t, repo, shops, nil)

	_, err := svc.UpdateStatus(context.Background(), sellerID, order.ID, UpdateStatusRequest{
		Status: enums.OrderStatusRejected,
	})
	if err == nil {
		t.Fatal("expected validation error without reason")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	reason := "out of stock"
	updated, err := svc.UpdateStatus(context.Background(), sellerID, order.ID, UpdateStatusRequest{
		Status:          enums.OrderStatusRejected,
		RejectionReason: &reason,
	})
	if err != nil {
		t.Fatalf("rejection with reason: %v", err)
	}
	if updated.Status != enums.OrderStatusRejected {
		t.Fatalf("expected rejected, got %s", updated.Status)
	}
	if updated.RejectionReason == nil || *updated.RejectionReason != reason {
		t.Fatalf("expected reason to be stored, got %v", updated.RejectionReason)
	}
	if updated.TrackingStatus != enums.TrackingStatusCancelled {
		t.Fatalf("expected cancelled tracking, got %s", updated.TrackingStatus)
	}
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	repo := newStubRepo()
	sellerID := uuid.New()
	shop := &models.Shop{ID: uuid.New(), OwnerUserID: sellerID}
	shops := &stubShops{shops: map[uuid.UUID]*models.Shop{sellerID: shop}}
	order := seedOrder(repo, uuid.New(), shop.ID, enums.OrderStatusCompleted)
	svc := newTestService(t, repo, shops, nil)

	_, err := svc.UpdateStatus(context.Background(), sellerID, order.ID, UpdateStatusRequest{
		Status: enums.OrderStatusApproved,
	})
	if err == nil {
		t.Fatal("expected state conflict")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestUpdateStatus_NotifiesBuyer(t *testing.T) {
	repo := newStubRepo()
	sellerID := uuid.New()
	shop := &models.Shop{ID: uuid.New(), OwnerUserID: sellerID}
	shops := &stubShops{shops: map[uuid.UUID]*models.Shop{sellerID: shop}}
	order := seedOrder(repo, uuid.New(), shop.ID, enums.OrderStatusPending)
	notifier := &recordingNotifier{}
	svc := newTestService(t, repo, shops, notifier)

	if _, err := svc.UpdateStatus(context.Background(), sellerID, order.ID, UpdateStatusRequest{
		Status: enums.OrderStatusApproved,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "order_status" {
		t.Fatalf("expected one order_status notification, got %v", notifier.events)
	}
}

func TestUpdateTracking_RejectedOrderBlocked(t *testing.T) {
	repo := newStubRepo()
	sellerID := uuid.New()
	shop := &models.Shop{ID: uuid.New(), OwnerUserID: sellerID}
	shops := &stubShops{shops: map[uuid.UUID]*models.Shop{sellerID: shop}}
	order := seedOrder(repo, uuid.New(), shop.ID, enums.OrderStatusRejected)
	svc := newTestService(t, repo, shops, nil)

	_, err := svc.UpdateTracking(context.Background(), sellerID, order.ID, UpdateTrackingRequest{
		TrackingStatus: enums.TrackingStatusPreparing,
	})
	if err == nil {
		t.Fatal("expected state conflict for rejected order")
	}
}
