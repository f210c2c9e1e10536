package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/orders"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

const (
	defaultChartDays = 30
	maxChartDays     = 90
)

// SummaryDTO is the seller's order funnel at a glance.
type SummaryDTO struct {
	PendingOrders   int64           `json:"pending_orders"`
	ApprovedOrders  int64           `json:"approved_orders"`
	CompletedOrders int64           `json:"completed_orders"`
	RejectedOrders  int64           `json:"rejected_orders"`
	TotalOrders     int64           `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

// RevenuePointDTO is one day in the revenue chart.
type RevenuePointDTO struct {
	Day     time.Time       `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

// RevenueChartDTO is the chart payload for the seller dashboard.
type RevenueChartDTO struct {
	Days   int               `json:"days"`
	Points []RevenuePointDTO `json:"points"`
}

type statsRepository interface {
	CountByStatus(ctx context.Context, shopID uuid.UUID) ([]orders.StatusCount, error)
	RevenueByDay(ctx context.Context, shopID uuid.UUID, since time.Time) ([]orders.RevenuePoint, error)
}

type shopResolver interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
}

// Service serves seller dashboard aggregates.
type Service interface {
	Summary(ctx context.Context, sellerID uuid.UUID) (*SummaryDTO, error)
	RevenueChart(ctx context.Context, sellerID uuid.UUID, days int) (*RevenueChartDTO, error)
}

type service struct {
	stats statsRepository
	shops shopResolver
	now   func() time.Time
}

// NewService builds the dashboard service.
func NewService(stats statsRepository, shops shopResolver, now func() time.Time) (Service, error) {
	if stats == nil {
		return nil, fmt.Errorf("stats repository is required")
	}
	if shops == nil {
		return nil, fmt.Errorf("shop resolver is required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{stats: stats, shops: shops, now: now}, nil
}

func (s *service) Summary(ctx context.Context, sellerID uuid.UUID) (*SummaryDTO, error) {
	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	counts, err := s.stats.CountByStatus(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	summary := &SummaryDTO{TotalRevenue: decimal.Zero}
	for _, row := range counts {
		summary.TotalOrders += row.Count
		switch row.Status {
		case enums.OrderStatusPending:
			summary.PendingOrders = row.Count
		case enums.OrderStatusApproved:
			summary.ApprovedOrders = row.Count
		case enums.OrderStatusCompleted:
			summary.CompletedOrders = row.Count
		case enums.OrderStatusRejected:
			summary.RejectedOrders = row.Count
		}
	}

	// Lifetime revenue reuses the daily aggregation from a zero start.
	points, err := s.stats.RevenueByDay(ctx, shop.ID, time.Time{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue")
	}
	for _, point := range points {
		summary.TotalRevenue = summary.TotalRevenue.Add(point.Revenue)
	}
	return summary, nil
}

func (s *service) RevenueChart(ctx context.Context, sellerID uuid.UUID, days int) (*RevenueChartDTO, error) {
	if days <= 0 {
		days = defaultChartDays
	}
	if days > maxChartDays {
		days = maxChartDays
	}

	shop, err := s.ownedShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	since := s.now().AddDate(0, 0, -days)
	rows, err := s.stats.RevenueByDay(ctx, shop.ID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load revenue chart")
	}

	points := make([]RevenuePointDTO, 0, len(rows))
	for _, row := range rows {
		points = append(points, RevenuePointDTO{Day: row.Day, Revenue: row.Revenue, Orders: row.Orders})
	}
	return &RevenueChartDTO{Days: days, Points: points}, nil
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
