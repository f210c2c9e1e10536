package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/orders"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

type stubStats struct {
	counts []orders.StatusCount
	points []orders.RevenuePoint
	since  time.Time
}

func (s *stubStats) CountByStatus(_ context.Context, _ uuid.UUID) ([]orders.StatusCount, error) {
	return s.counts, nil
}

func (s *stubStats) RevenueByDay(_ context.Context, _ uuid.UUID, since time.Time) ([]orders.RevenuePoint, error) {
	s.since = since
	return s.points, nil
}

type stubShops struct {
	shop *models.Shop
}

func (s *stubShops) FindByOwner(_ context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	if s.shop != nil && s.shop.OwnerUserID == ownerID {
		return s.shop, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestSummary_AggregatesCountsAndRevenue(t *testing.T) {
	sellerID := uuid.New()
	stats := &stubStats{
		counts: []orders.StatusCount{
			{Status: enums.OrderStatusPending, Count: 3},
			{Status: enums.OrderStatusCompleted, Count: 7},
			{Status: enums.OrderStatusRejected, Count: 1},
		},
		points: []orders.RevenuePoint{
			{Revenue: decimal.RequireFromString("120.50"), Orders: 4},
			{Revenue: decimal.RequireFromString("79.50"), Orders: 3},
		},
	}
	shops := &stubShops{shop: &models.Shop{ID: uuid.New(), OwnerUserID: sellerID}}
	svc, err := NewService(stats, shops, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	summary, err := svc.Summary(context.Background(), sellerID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalOrders != 11 {
		t.Fatalf("expected 11 total orders, got %d", summary.TotalOrders)
	}
	if summary.PendingOrders != 3 || summary.CompletedOrders != 7 || summary.RejectedOrders != 1 {
		t.Fatalf("unexpected status breakdown %+v", summary)
	}
	if got := summary.TotalRevenue.StringFixed(2); got != "200.00" {
		t.Fatalf("expected revenue 200.00, got %s", got)
	}
}

func TestRevenueChart_ClampsWindow(t *testing.T) {
	sellerID := uuid.New()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	stats := &stubStats{}
	shops := &stubShops{shop: &models.Shop{ID: uuid.New(), OwnerUserID: sellerID}}
	svc, err := NewService(stats, shops, func() time.Time { return now })
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	chart, err := svc.RevenueChart(context.Background(), sellerID, 365)
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if chart.Days != maxChartDays {
		t.Fatalf("expected clamp to %d days, got %d", maxChartDays, chart.Days)
	}
	if want := now.AddDate(0, 0, -maxChartDays); !stats.since.Equal(want) {
		t.Fatalf("expected window since %s, got %s", want, stats.since)
	}

	chart, err = svc.RevenueChart(context.Background(), sellerID, 0)
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if chart.Days != defaultChartDays {
		t.Fatalf("expected default %d days, got %d", defaultChartDays, chart.Days)
	}
}

func TestSummary_RequiresShop(t *testing.T) {
	svc, err := NewService(&stubStats{}, &stubShops{}, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	_, err = svc.Summary(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found without a shop")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
