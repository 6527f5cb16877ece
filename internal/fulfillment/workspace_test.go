package fulfillment

import (
	"testing"

	"uniasia-be/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkspace() *Workspace {
	ws := &Workspace{
		OrderID:     7,
		Owner:       "clerk@uniasia.io",
		TaxEnabled:  true,
		PaymentType: pricing.PaymentCash,
		Lines: []WorkspaceLine{
			{
				LineID:       1,
				InventoryID:  10,
				OrderedQty:   10,
				FulfilledQty: 10,
				UnitPrice:    decimal.NewFromInt(50),
				Available:    100,
				InStock:      true,
			},
		},
	}
	ws.Recompute()
	return ws
}

func TestWorkspace_Recompute(t *testing.T) {
	ws := testWorkspace()

	assert.True(t, ws.Snapshot.Subtotal.Equal(decimal.NewFromInt(500)))
	assert.True(t, ws.Snapshot.SalesTax.Equal(decimal.NewFromInt(60)))

	ws.Lines[0].DiscountPercent = decimal.NewFromInt(10)
	ws.Recompute()

	assert.True(t, ws.Snapshot.TotalDiscount.Equal(decimal.NewFromInt(50)))
	assert.True(t, ws.Snapshot.GrandTotal.Equal(decimal.NewFromInt(504)))
}

func TestWorkspaceStore(t *testing.T) {
	t.Run("PutGetDelete", func(t *testing.T) {
		store := NewWorkspaceStore()
		store.Put(testWorkspace())

		ws, ok := store.Get(7)
		require.True(t, ok)
		assert.Equal(t, "clerk@uniasia.io", ws.Owner)

		store.Delete(7)
		_, ok = store.Get(7)
		assert.False(t, ok)
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		store := NewWorkspaceStore()
		store.Put(testWorkspace())

		ws, _ := store.Get(7)
		ws.Lines[0].FulfilledQty = 1
		ws.PONumber = "123"

		// The stored workspace must not see edits made on the copy.
		fresh, _ := store.Get(7)
		assert.Equal(t, 10, fresh.Lines[0].FulfilledQty)
		assert.Equal(t, "", fresh.PONumber)
	})

	t.Run("UpdateMutatesStored", func(t *testing.T) {
		store := NewWorkspaceStore()
		store.Put(testWorkspace())

		updated, err := store.Update(7, func(w *Workspace) error {
			w.Lines[0].FulfilledQty = 4
			w.Recompute()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Lines[0].FulfilledQty)

		fresh, _ := store.Get(7)
		assert.Equal(t, 4, fresh.Lines[0].FulfilledQty)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		store := NewWorkspaceStore()
		_, err := store.Update(99, func(w *Workspace) error { return nil })
		assert.Equal(t, ErrWorkspaceNotFound, err)
	})

	t.Run("UpdateErrorLeavesStoredUntouched", func(t *testing.T) {
		store := NewWorkspaceStore()
		store.Put(testWorkspace())

		_, err := store.Update(7, func(w *Workspace) error {
			return ErrWorkspaceOwned
		})
		assert.Equal(t, ErrWorkspaceOwned, err)
	})
}
