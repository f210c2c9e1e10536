package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

// Rates carries the marketplace-wide charge parameters.
type Rates struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

// Line is one priced cart entry feeding the quote.
type Line struct {
	ProductID uuid.UUID
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals is the computed charge breakdown for an order.
type Totals struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	DeliveryFee decimal.Decimal
	GrandTotal  decimal.Decimal
}

// Quote computes subtotal, tax, delivery fee, and grand total for the
// provided lines. Quantities must be positive and unit prices non-negative.
func Quote(rates Rates, lines []Line) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required to price an order")
	}
	if rates.TaxRate.IsNegative() || rates.DeliveryFee.IsNegative() {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "tax rate and delivery fee must be non-negative")
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be positive for product %s", line.ProductID))
		}
		if line.UnitPrice.IsNegative() {
			return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unit price must be non-negative for product %s", line.ProductID))
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tax := subtotal.Mul(rates.TaxRate).Round(2)
	subtotal = subtotal.Round(2)
	fee := rates.DeliveryFee.Round(2)

	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		GrandTotal:  subtotal.Add(tax).Add(fee),
	}, nil
}
