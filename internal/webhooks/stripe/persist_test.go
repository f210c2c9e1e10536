package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cravecart/cravecart-backend/pkg/config"
	"github.com/cravecart/cravecart-backend/pkg/db"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
)

// The schema mirrors the migration's constraints that matter to the
// writer: payment_events carries a non-deferrable FK on orders plus the
// unique event id, so insert order inside the transaction is load bearing.
const persistTestSchema = `
CREATE TABLE orders (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	shop_id TEXT NOT NULL,
	order_code TEXT NOT NULL UNIQUE,
	payment_method TEXT NOT NULL,
	payment_status TEXT NOT NULL,
	status TEXT NOT NULL,
	tracking_status TEXT NOT NULL,
	note TEXT,
	subtotal NUMERIC NOT NULL DEFAULT 0,
	tax NUMERIC NOT NULL DEFAULT 0,
	delivery_fee NUMERIC NOT NULL DEFAULT 0,
	grand_total NUMERIC NOT NULL DEFAULT 0,
	rejection_reason TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE order_items (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL REFERENCES orders(id),
	product_id TEXT NOT NULL,
	name TEXT NOT NULL,
	unit_price NUMERIC NOT NULL,
	quantity INTEGER NOT NULL,
	created_at DATETIME
);
CREATE TABLE payment_events (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL UNIQUE,
	order_id TEXT NOT NULL REFERENCES orders(id),
	created_at DATETIME
);
CREATE TABLE cart_lines (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	created_at DATETIME,
	updated_at DATETIME
);`

func newPersistTestClient(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().Exec(persistTestSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return client
}

func paidOrderFixture(code string) *models.Order {
	return &models.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		ShopID:         uuid.New(),
		OrderCode:      code,
		PaymentMethod:  enums.PaymentMethodHostedPayment,
		PaymentStatus:  enums.PaymentStatusPaid,
		Status:         enums.OrderStatusPending,
		TrackingStatus: enums.TrackingStatusConfirmed,
		Subtotal:       decimal.RequireFromString("20.00"),
		Tax:            decimal.RequireFromString("2.00"),
		DeliveryFee:    decimal.RequireFromString("50.00"),
		GrandTotal:     decimal.RequireFromString("72.00"),
		Items: []models.OrderItem{{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Name:      "Pad Thai",
			UnitPrice: decimal.RequireFromString("10.00"),
			Quantity:  2,
		}},
	}
}

func TestPersistPaidCreatesOrderAndMarker(t *testing.T) {
	client := newPersistTestClient(t)
	writer, err := NewPaidOrderWriter(client)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	order := paidOrderFixture("A1B2C3")
	if err := writer.PersistPaid(context.Background(), order, "evt_first"); err != nil {
		t.Fatalf("persist paid: %v", err)
	}

	var orderCount, markerCount int64
	if err := client.DB().Table("orders").Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := client.DB().Table("payment_events").Where("event_id = ?", "evt_first").Count(&markerCount).Error; err != nil {
		t.Fatalf("count markers: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("expected 1 order got %d", orderCount)
	}
	if markerCount != 1 {
		t.Fatalf("expected 1 marker got %d", markerCount)
	}
}

func TestPersistPaidDuplicateEventKeepsSingleOrder(t *testing.T) {
	client := newPersistTestClient(t)
	writer, err := NewPaidOrderWriter(client)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	if err := writer.PersistPaid(context.Background(), paidOrderFixture("FIRST1"), "evt_dup"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	err = writer.PersistPaid(context.Background(), paidOrderFixture("SECOND"), "evt_dup")
	if !errors.Is(err, ErrEventAlreadyProcessed) {
		t.Fatalf("expected ErrEventAlreadyProcessed got %v", err)
	}

	var orderCount int64
	if err := client.DB().Table("orders").Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("duplicate delivery leaked an order, count %d", orderCount)
	}
}
