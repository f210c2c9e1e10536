package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/internal/cart"
	"github.com/cravecart/cravecart-backend/internal/orders"
	"github.com/cravecart/cravecart-backend/pkg/db"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type persister struct {
	db txRunner
}

// NewPersister builds the transactional order writer used by checkout and
// the payment webhook reconciler.
func NewPersister(client *db.Client) (OrderPersister, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &persister{db: client}, nil
}

func (p *persister) Persist(ctx context.Context, order *models.Order, buyerID uuid.UUID, clearCart bool) error {
	return p.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := orders.NewRepository(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		// Ad-hoc item checkouts leave the stored cart untouched.
		if !clearCart {
			return nil
		}
		if err := cart.NewRepository(tx).ClearByUser(ctx, buyerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
}
