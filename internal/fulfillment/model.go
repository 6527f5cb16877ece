package fulfillment

import (
	"time"

	"uniasia-be/internal/pricing"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusRequested OrderStatus = "requested"
	StatusAccepted  OrderStatus = "accepted"
	StatusCompleted OrderStatus = "completed"
	StatusRejected  OrderStatus = "rejected"

	// StatusNeedsReconciliation marks an order whose completion transaction
	// failed in a way the store may have partially applied. Nothing in this
	// subsystem transitions out of it; that is a manual back-office job.
	StatusNeedsReconciliation OrderStatus = "needs_reconciliation"
)

// Customer is the snapshot of the buyer carried on the order, produced by the
// upstream intake collaborator.
type Customer struct {
	Name        string
	PaymentType pricing.PaymentType
	Address     string
	Contact     string
}

type Order struct {
	ID        uint
	Status    OrderStatus
	Customer  Customer
	Lines     []OrderLineItem
	Financial *FinancialSnapshot

	CreatedAt   time.Time
	AcceptedBy  *string
	AcceptedAt  *time.Time
	ProcessedBy *string
	ProcessedAt *time.Time
}

// OrderLineItem keeps OrderedQty and UnitPrice as immutable historical facts
// from order creation. FulfilledQty and DiscountPercent stay nil until the
// order completes and are written exactly once.
type OrderLineItem struct {
	ID              uint
	OrderID         uint
	InventoryID     uint
	OrderedQty      int
	FulfilledQty    *int
	UnitPrice       decimal.Decimal
	DiscountPercent *decimal.Decimal
}

// FinancialSnapshot is nil while the order is requested or accepted and is
// populated exactly once, at the transition into completed.
type FinancialSnapshot struct {
	SalesTax               decimal.Decimal
	GrandTotalWithInterest decimal.Decimal
	PerTermAmount          decimal.Decimal
	PaymentTerms           int
	InterestPercent        decimal.Decimal
	Forwarder              string
	Salesman               string
	PONumber               string
}

// CompletionLine is one line of the finalization transaction, fully priced by
// the service before any write happens.
type CompletionLine struct {
	LineID          uint
	InventoryID     uint
	FulfilledQty    int
	DiscountPercent decimal.Decimal
	Amount          decimal.Decimal
	SaleReference   string
	InStock         bool
}
