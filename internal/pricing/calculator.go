// Package pricing turns workspace line items and adjustment options into a
// financial snapshot. Everything here is pure: it runs on every workspace
// edit and again right before completion, so it must be deterministic and
// free of side effects.
package pricing

import (
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentCash    PaymentType = "Cash"
	PaymentCredit  PaymentType = "Credit"
	PaymentBalance PaymentType = "Balance"
)

// Sales tax is a single fixed rate; no other rate is supported.
var taxRate = decimal.NewFromFloat(0.12)

var (
	hundred     = decimal.NewFromInt(100)
	minDiscount = decimal.NewFromInt(-100)
)

// Line is one order line as seen by the calculator. A line that is out of
// stock stays visible to the operator but contributes zero to every sum.
type Line struct {
	OrderedQty      int
	FulfilledQty    int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	InStock         bool
}

// Options are the operator-adjustable pricing knobs on a workspace.
type Options struct {
	TaxEnabled      bool
	PaymentType     PaymentType
	InterestPercent decimal.Decimal
	TermCount       int
}

// Snapshot is the computed financial state. It is derived, never stored on
// its own; completion copies the relevant fields onto the order.
type Snapshot struct {
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	NetBeforeTax  decimal.Decimal
	SalesTax      decimal.Decimal
	BaseTotal     decimal.Decimal
	GrandTotal    decimal.Decimal
	PerTermAmount decimal.Decimal
}

// ClampDiscount bounds a discount percent to [-100, 100]. Negative values
// are markups; the same field carries both directions.
func ClampDiscount(d decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(hundred) {
		return hundred
	}
	if d.LessThan(minDiscount) {
		return minDiscount
	}
	return d
}

// LineAmount is the discounted amount for one line: fulfilled quantity times
// frozen unit price, minus the (possibly negative) discount. Out-of-stock
// lines are worth zero.
func LineAmount(line Line) decimal.Decimal {
	if !line.InStock {
		return decimal.Zero
	}

	gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.FulfilledQty)))
	discount := gross.Mul(ClampDiscount(line.DiscountPercent)).Div(hundred)
	return gross.Sub(discount)
}

// Compute prices a set of lines under the given options.
//
// Interest and installment division only apply under Credit; every other
// payment type pays the base total in full, whatever the interest input says.
func Compute(lines []Line, opts Options) Snapshot {
	subtotal := decimal.Zero
	totalDiscount := decimal.Zero

	for _, line := range lines {
		if !line.InStock {
			continue
		}

		gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.FulfilledQty)))
		subtotal = subtotal.Add(gross)
		totalDiscount = totalDiscount.Add(
			gross.Mul(ClampDiscount(line.DiscountPercent)).Div(hundred),
		)
	}

	netBeforeTax := subtotal.Sub(totalDiscount)

	salesTax := decimal.Zero
	if opts.TaxEnabled {
		salesTax = netBeforeTax.Mul(taxRate)
	}

	baseTotal := netBeforeTax.Add(salesTax)

	grandTotal := baseTotal
	if opts.PaymentType == PaymentCredit {
		grandTotal = baseTotal.Mul(
			decimal.NewFromInt(1).Add(opts.InterestPercent.Div(hundred)),
		)
	}

	perTerm := grandTotal
	if opts.PaymentType == PaymentCredit && opts.TermCount > 0 {
		perTerm = grandTotal.Div(decimal.NewFromInt(int64(opts.TermCount)))
	}

	return Snapshot{
		Subtotal:      subtotal.Round(2),
		TotalDiscount: totalDiscount.Round(2),
		NetBeforeTax:  netBeforeTax.Round(2),
		SalesTax:      salesTax.Round(2),
		BaseTotal:     baseTotal.Round(2),
		GrandTotal:    grandTotal.Round(2),
		PerTermAmount: perTerm.Round(2),
	}
}
