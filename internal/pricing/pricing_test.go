package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
)

func defaultRates() Rates {
	return Rates{
		TaxRate:     decimal.RequireFromString("0.10"),
		DeliveryFee: decimal.RequireFromString("50.00"),
	}
}

func TestQuote_Breakdown(t *testing.T) {
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("12.50"), Quantity: 2},
		{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
	}

	totals, err := Quote(defaultRates(), lines)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := totals.Subtotal.StringFixed(2); got != "30.00" {
		t.Fatalf("expected subtotal 30.00, got %s", got)
	}
	if got := totals.Tax.StringFixed(2); got != "3.00" {
		t.Fatalf("expected tax 3.00, got %s", got)
	}
	if got := totals.DeliveryFee.StringFixed(2); got != "50.00" {
		t.Fatalf("expected delivery fee 50.00, got %s", got)
	}
	if got := totals.GrandTotal.StringFixed(2); got != "83.00" {
		t.Fatalf("expected grand total 83.00, got %s", got)
	}
}

func TestQuote_GrandTotalIsExactSum(t *testing.T) {
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("0.33"), Quantity: 3},
	}

	totals, err := Quote(defaultRates(), lines)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	sum := totals.Subtotal.Add(totals.Tax).Add(totals.DeliveryFee)
	if !totals.GrandTotal.Equal(sum) {
		t.Fatalf("expected grand total %s to equal component sum %s", totals.GrandTotal, sum)
	}
}

func TestQuote_RejectsEmptyLines(t *testing.T) {
	_, err := Quote(defaultRates(), nil)
	if err == nil {
		t.Fatal("expected error for empty lines")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuote_RejectsNonPositiveQuantity(t *testing.T) {
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("4.00"), Quantity: 0},
	}
	_, err := Quote(defaultRates(), lines)
	if err == nil {
		t.Fatal("expected error for zero quantity")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuote_RejectsNegativeUnitPrice(t *testing.T) {
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("-1.00"), Quantity: 1},
	}
	_, err := Quote(defaultRates(), lines)
	if err == nil {
		t.Fatal("expected error for negative unit price")
	}
}
