package stripewebhook

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/cart"
	"github.com/cravecart/cravecart-backend/internal/orders"
	"github.com/cravecart/cravecart-backend/pkg/db"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

// ErrEventAlreadyProcessed signals that a durable marker exists for the
// event and the order was created by an earlier delivery.
var ErrEventAlreadyProcessed = errors.New("payment event already processed")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PaidOrderWriter persists the order, the event marker, and the cart clear
// in one transaction.
type PaidOrderWriter interface {
	PersistPaid(ctx context.Context, order *models.Order, eventID string) error
}

type paidOrderWriter struct {
	db txRunner
}

// NewPaidOrderWriter builds the transactional writer for reconciled payments.
func NewPaidOrderWriter(client *db.Client) (PaidOrderWriter, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &paidOrderWriter{db: client}, nil
}

func (w *paidOrderWriter) PersistPaid(ctx context.Context, order *models.Order, eventID string) error {
	return w.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := orders.NewRepository(tx)
		// The order goes first so the marker's FK on orders holds. A
		// concurrent duplicate still aborts on the unique event id, and
		// the rollback discards its order.
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		marker := &models.PaymentEvent{EventID: eventID, OrderID: order.ID}
		if err := repo.CreatePaymentEvent(ctx, marker); err != nil {
			if db.IsUniqueViolation(err, "payment_events") {
				return ErrEventAlreadyProcessed
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment event")
		}
		if err := cart.NewRepository(tx).ClearByUser(ctx, order.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
}
