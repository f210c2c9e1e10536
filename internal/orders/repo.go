package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
)

// Repository exposes order persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists the order together with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order with its items and feedback.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Feedback").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CodeExists reports whether an order code is already taken.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns the buyer's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Feedback").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByShop returns a shop's orders, optionally filtered by status.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID, status *enums.OrderStatus) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("shop_id = ?", shopID).
		Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateColumns applies the provided column updates to an order.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateFeedback persists the single feedback row for an order. The unique
// order_id index rejects a second attempt.
func (r *Repository) CreateFeedback(ctx context.Context, feedback *models.OrderFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

// CreatePaymentEvent persists a processed webhook event marker. The unique
// event_id index turns a duplicate delivery into a unique violation.
func (r *Repository) CreatePaymentEvent(ctx context.Context, event *models.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindPaymentEvent loads a processed event marker by provider event id.
func (r *Repository) FindPaymentEvent(ctx context.Context, eventID string) (*models.PaymentEvent, error) {
	var event models.PaymentEvent
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// StatusCount is one (status, count) aggregation row.
type StatusCount struct {
	Status enums.OrderStatus `gorm:"column:status"`
	Count  int64             `gorm:"column:count"`
}

// CountByStatus aggregates a shop's orders per status.
func (r *Repository) CountByStatus(ctx context.Context, shopID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("shop_id = ?", shopID).
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RevenuePoint is one day of paid-or-completed revenue.
type RevenuePoint struct {
	Day     time.Time       `gorm:"column:day"`
	Revenue decimal.Decimal `gorm:"column:revenue"`
	Orders  int64           `gorm:"column:orders"`
}

// RevenueByDay sums grand totals per day for the shop over the window.
// Rejected orders are excluded.
func (r *Repository) RevenueByDay(ctx context.Context, shopID uuid.UUID, since time.Time) ([]RevenuePoint, error) {
	var rows []RevenuePoint
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("DATE_TRUNC('day', created_at) AS day, SUM(grand_total) AS revenue, COUNT(*) AS orders").
		Where("shop_id = ? AND created_at >= ? AND status <> ?", shopID, since, enums.OrderStatusRejected).
		Group("day").
		Order("day ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
