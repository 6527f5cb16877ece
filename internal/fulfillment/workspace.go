package fulfillment

import (
	"sync"
	"time"

	"uniasia-be/internal/pricing"

	"github.com/shopspring/decimal"
)

// WorkspaceLine is the editable view of one order line. Available and InStock
// are advisory readings taken when the workspace was seeded or last refreshed;
// the authoritative stock check happens inside the completion transaction.
type WorkspaceLine struct {
	LineID          uint
	InventoryID     uint
	ItemName        string
	Unit            string
	OrderedQty      int
	FulfilledQty    int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Available       int
	InStock         bool
}

// Workspace is the transient working copy of an accepted order. It lives only
// in memory, scoped to the accepting operator; nothing here is visible to
// other readers until Complete serializes it.
type Workspace struct {
	OrderID uint
	Owner   string // operator email

	Lines []WorkspaceLine

	TaxEnabled      bool
	PaymentType     pricing.PaymentType
	InterestPercent decimal.Decimal
	TermCount       int
	PONumber        string
	Salesman        string
	Forwarder       string

	Snapshot pricing.Snapshot
	OpenedAt time.Time
}

// PricingLines converts workspace lines into calculator input.
func (w *Workspace) PricingLines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(w.Lines))
	for _, l := range w.Lines {
		lines = append(lines, pricing.Line{
			OrderedQty:      l.OrderedQty,
			FulfilledQty:    l.FulfilledQty,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			InStock:         l.InStock,
		})
	}
	return lines
}

// Recompute refreshes the pricing snapshot from the current edit state.
func (w *Workspace) Recompute() {
	w.Snapshot = pricing.Compute(w.PricingLines(), pricing.Options{
		TaxEnabled:      w.TaxEnabled,
		PaymentType:     w.PaymentType,
		InterestPercent: w.InterestPercent,
		TermCount:       w.TermCount,
	})
}

func (w *Workspace) clone() *Workspace {
	cp := *w
	cp.Lines = make([]WorkspaceLine, len(w.Lines))
	copy(cp.Lines, w.Lines)
	return &cp
}

// WorkspaceStore keeps open workspaces in memory, one per order. Edits before
// confirmation never reach other readers and vanish on cancel or restart;
// nothing in here is ever persisted.
type WorkspaceStore struct {
	mu      sync.RWMutex
	byOrder map[uint]*Workspace
}

func NewWorkspaceStore() *WorkspaceStore {
	return &WorkspaceStore{byOrder: make(map[uint]*Workspace)}
}

// Put registers a freshly seeded workspace, replacing any previous one.
func (s *WorkspaceStore) Put(ws *Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byOrder[ws.OrderID] = ws
}

// Get returns a copy of the workspace so readers never observe concurrent
// edits halfway through.
func (s *WorkspaceStore) Get(orderID uint) (*Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.byOrder[orderID]
	if !ok {
		return nil, false
	}
	return ws.clone(), true
}

// Update applies fn to the stored workspace under the write lock and returns
// a copy of the result.
func (s *WorkspaceStore) Update(orderID uint, fn func(*Workspace) error) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.byOrder[orderID]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	if err := fn(ws); err != nil {
		return nil, err
	}
	return ws.clone(), nil
}

// Delete discards a workspace. Discarding persists nothing.
func (s *WorkspaceStore) Delete(orderID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byOrder, orderID)
}
