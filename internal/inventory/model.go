package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one SKU row in the inventory ledger. Quantity is the live available
// amount; UnitPrice is the current catalog price, which may differ from the
// price frozen on an order line at order time.
type Item struct {
	ID        uint
	Name      string
	Unit      string
	Quantity  int
	UnitPrice decimal.Decimal
	UpdatedAt time.Time
}
