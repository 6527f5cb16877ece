package fulfillment

import (
	"context"
	"errors"
	"time"

	"uniasia-be/internal/audit"
	"uniasia-be/internal/inventory"
	"uniasia-be/internal/logger"
	"uniasia-be/internal/metrics"
	"uniasia-be/internal/pricing"
	"uniasia-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Accept(ctx context.Context, orderID uint, actor utils.Actor) (*Workspace, error)
	Reject(ctx context.Context, orderID uint, actor utils.Actor) error
	GetWorkspace(ctx context.Context, orderID uint, actor utils.Actor) (*Workspace, error)
	UpdateWorkspace(ctx context.Context, orderID uint, actor utils.Actor, patch WorkspacePatch) (*Workspace, error)
	CancelWorkspace(ctx context.Context, orderID uint, actor utils.Actor) error
	Complete(ctx context.Context, orderID uint, actor utils.Actor) (*Order, error)
	Stats() *Stats
}

// LinePatch edits one workspace line. Nil fields are left untouched.
type LinePatch struct {
	LineID          uint
	FulfilledQty    *int
	DiscountPercent *decimal.Decimal
}

// WorkspacePatch carries one round of operator edits. Everything is optional;
// applying a patch only ever mutates the in-memory workspace.
type WorkspacePatch struct {
	Lines           []LinePatch
	TaxEnabled      *bool
	InterestPercent *decimal.Decimal
	TermCount       *int
	PONumber        *string
	Salesman        *string
	Forwarder       *string
}

// Stats counts terminal outcomes of the fulfillment pipeline.
type Stats struct {
	Accepted     metrics.Counter
	Rejected     metrics.Counter
	Completed    metrics.Counter
	StockBlocked metrics.Counter
}

type service struct {
	repo       Repository
	invRepo    inventory.Repository
	workspaces *WorkspaceStore
	recorder   audit.Recorder
	stats      *Stats
}

func NewService(repo Repository, invRepo inventory.Repository, workspaces *WorkspaceStore, recorder audit.Recorder) Service {
	return &service{
		repo:       repo,
		invRepo:    invRepo,
		workspaces: workspaces,
		recorder:   recorder,
		stats:      &Stats{},
	}
}

// Stats exposes the outcome counters, e.g. for a health endpoint.
func (s *service) Stats() *Stats {
	return s.stats
}

func (s *service) Accept(ctx context.Context, orderID uint, actor utils.Actor) (*Workspace, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Accept"),
		zap.Uint("order_id", orderID),
	)

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != StatusRequested {
		log.Warn("accept attempted on non-requested order", zap.String("status", string(order.Status)))
		return nil, ErrInvalidTransition
	}

	// The conditional UPDATE is the real claim; a concurrent accept loses
	// here even though both operators saw status requested a moment ago.
	if err := s.repo.AcceptOrder(ctx, orderID, actor.Email); err != nil {
		return nil, err
	}

	ws, err := s.seedWorkspace(ctx, order, actor)
	if err != nil {
		// The claim stands; the operator reopens the workspace on next read.
		log.Error("failed to seed workspace after accept", zap.Error(err))
		return nil, err
	}

	s.workspaces.Put(ws)
	s.stats.Accepted.Inc()

	s.recorder.Record(ctx, actor, audit.ActionOrderAccepted, map[string]any{
		"order_id":   orderID,
		"customer":   order.Customer.Name,
		"line_count": len(order.Lines),
	})

	log.Info("order accepted", zap.String("operator", actor.Email))

	return ws.clone(), nil
}

// seedWorkspace builds the initial editing surface: fulfilled = ordered,
// discount zero, stock flags from a fresh advisory ledger read.
func (s *service) seedWorkspace(ctx context.Context, order *Order, actor utils.Actor) (*Workspace, error) {
	itemIDs := make([]uint, 0, len(order.Lines))
	for _, li := range order.Lines {
		itemIDs = append(itemIDs, li.InventoryID)
	}

	items, err := s.invRepo.GetItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		OrderID:     order.ID,
		Owner:       actor.Email,
		TaxEnabled:  true,
		PaymentType: order.Customer.PaymentType,
		OpenedAt:    time.Now(),
	}

	for _, li := range order.Lines {
		item := items[li.InventoryID]
		ws.Lines = append(ws.Lines, WorkspaceLine{
			LineID:       li.ID,
			InventoryID:  li.InventoryID,
			ItemName:     item.Name,
			Unit:         item.Unit,
			OrderedQty:   li.OrderedQty,
			FulfilledQty: li.OrderedQty,
			UnitPrice:    li.UnitPrice,
			Available:    item.Quantity,
			InStock:      item.Quantity > 0,
		})
	}

	ws.Recompute()
	return ws, nil
}

func (s *service) Reject(ctx context.Context, orderID uint, actor utils.Actor) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Reject"),
		zap.Uint("order_id", orderID),
	)

	if err := s.repo.RejectOrder(ctx, orderID, actor.Email); err != nil {
		return err
	}

	// Snapshot whatever the operator was looking at when they rejected.
	detail := map[string]any{"order_id": orderID}
	if ws, ok := s.workspaces.Get(orderID); ok {
		detail["lines"] = ws.Lines
		detail["totals"] = ws.Snapshot
	}

	s.workspaces.Delete(orderID)
	s.stats.Rejected.Inc()

	s.recorder.Record(ctx, actor, audit.ActionOrderRejected, detail)

	log.Info("order rejected", zap.String("operator", actor.Email))
	return nil
}

func (s *service) GetWorkspace(ctx context.Context, orderID uint, actor utils.Actor) (*Workspace, error) {
	ws, ok := s.workspaces.Get(orderID)
	if !ok {
		// The workspace lives only in memory, so a seed failure after the
		// claim or a process restart loses it while the order stays accepted
		// and claimed. Reopen it from the persisted order rather than leaving
		// the claim stuck.
		return s.reopenWorkspace(ctx, orderID, actor)
	}
	if ws.Owner != actor.Email {
		return nil, ErrWorkspaceOwned
	}

	// Refresh the advisory stock reading for display warnings. The gate at
	// completion does its own authoritative read.
	itemIDs := make([]uint, 0, len(ws.Lines))
	for _, l := range ws.Lines {
		itemIDs = append(itemIDs, l.InventoryID)
	}

	items, err := s.invRepo.GetItems(ctx, itemIDs)
	if err != nil {
		logger.FromCtx(ctx).Warn("advisory stock refresh failed", zap.Error(err))
		return ws, nil
	}

	return s.workspaces.Update(orderID, func(w *Workspace) error {
		for i := range w.Lines {
			item := items[w.Lines[i].InventoryID]
			w.Lines[i].Available = item.Quantity
			w.Lines[i].InStock = item.Quantity > 0
		}
		w.Recompute()
		return nil
	})
}

// reopenWorkspace rebuilds a lost workspace for an accepted order. Only the
// operator who claimed the order may reopen it, and the rebuild starts from
// the same defaults as Accept: prior in-memory edits are gone.
func (s *service) reopenWorkspace(ctx context.Context, orderID uint, actor utils.Actor) (*Workspace, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusAccepted {
		return nil, ErrWorkspaceNotFound
	}
	if order.AcceptedBy == nil || *order.AcceptedBy != actor.Email {
		return nil, ErrWorkspaceOwned
	}

	ws, err := s.seedWorkspace(ctx, order, actor)
	if err != nil {
		return nil, err
	}
	s.workspaces.Put(ws)

	logger.FromCtx(ctx).Info("workspace reopened",
		zap.Uint("order_id", orderID),
		zap.String("operator", actor.Email),
	)
	return ws.clone(), nil
}

func (s *service) UpdateWorkspace(ctx context.Context, orderID uint, actor utils.Actor, patch WorkspacePatch) (*Workspace, error) {
	return s.workspaces.Update(orderID, func(w *Workspace) error {
		if w.Owner != actor.Email {
			return ErrWorkspaceOwned
		}

		for _, lp := range patch.Lines {
			for i := range w.Lines {
				if w.Lines[i].LineID != lp.LineID {
					continue
				}
				if lp.FulfilledQty != nil {
					qty := *lp.FulfilledQty
					if qty < 0 {
						qty = 0
					}
					if qty > w.Lines[i].OrderedQty {
						qty = w.Lines[i].OrderedQty
					}
					w.Lines[i].FulfilledQty = qty
				}
				if lp.DiscountPercent != nil {
					w.Lines[i].DiscountPercent = pricing.ClampDiscount(*lp.DiscountPercent)
				}
			}
		}

		if patch.TaxEnabled != nil {
			w.TaxEnabled = *patch.TaxEnabled
		}
		if patch.InterestPercent != nil {
			w.InterestPercent = *patch.InterestPercent
		}
		if patch.TermCount != nil {
			w.TermCount = *patch.TermCount
			if w.TermCount < 0 {
				w.TermCount = 0
			}
		}
		if patch.PONumber != nil {
			w.PONumber = *patch.PONumber
		}
		if patch.Salesman != nil {
			w.Salesman = *patch.Salesman
		}
		if patch.Forwarder != nil {
			w.Forwarder = *patch.Forwarder
		}

		w.Recompute()
		return nil
	})
}

func (s *service) CancelWorkspace(ctx context.Context, orderID uint, actor utils.Actor) error {
	ws, ok := s.workspaces.Get(orderID)
	if !ok {
		return ErrWorkspaceNotFound
	}
	if ws.Owner != actor.Email {
		return ErrWorkspaceOwned
	}

	// Nothing was persisted, so discarding the edits is the whole operation.
	// The order stays accepted and claimed by this operator.
	s.workspaces.Delete(orderID)

	logger.FromCtx(ctx).Info("workspace cancelled",
		zap.Uint("order_id", orderID),
		zap.String("operator", actor.Email),
	)
	return nil
}

func (s *service) Complete(ctx context.Context, orderID uint, actor utils.Actor) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Complete"),
		zap.Uint("order_id", orderID),
	)

	ws, ok := s.workspaces.Get(orderID)
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	if ws.Owner != actor.Email {
		return nil, ErrWorkspaceOwned
	}

	if errs := ValidateWorkspace(ws); len(errs) > 0 {
		return nil, errs
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusAccepted {
		return nil, ErrInvalidTransition
	}

	// Re-read the ledger and fail fast on any shortfall before a single
	// write happens. The conditional deduct inside the transaction remains
	// the authoritative gate.
	itemIDs := make([]uint, 0, len(ws.Lines))
	for _, l := range ws.Lines {
		itemIDs = append(itemIDs, l.InventoryID)
	}
	items, err := s.invRepo.GetItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	for i := range ws.Lines {
		item := items[ws.Lines[i].InventoryID]
		ws.Lines[i].Available = item.Quantity
		ws.Lines[i].InStock = item.Quantity > 0

		if ws.Lines[i].InStock && ws.Lines[i].FulfilledQty > item.Quantity {
			log.Warn("stock shortfall blocks completion",
				zap.Uint("inventory_id", ws.Lines[i].InventoryID),
				zap.Int("fulfilled_qty", ws.Lines[i].FulfilledQty),
				zap.Int("available", item.Quantity),
			)
			s.stats.StockBlocked.Inc()
			return nil, ErrInsufficientStock
		}
	}

	ws.Recompute()

	completionLines := make([]CompletionLine, 0, len(ws.Lines))
	for _, l := range ws.Lines {
		participates := l.InStock && l.FulfilledQty > 0

		fulfilled := l.FulfilledQty
		if !participates {
			fulfilled = 0
		}

		cl := CompletionLine{
			LineID:          l.LineID,
			InventoryID:     l.InventoryID,
			FulfilledQty:    fulfilled,
			DiscountPercent: l.DiscountPercent,
			InStock:         participates,
		}
		if participates {
			cl.Amount = pricing.LineAmount(pricing.Line{
				FulfilledQty:    l.FulfilledQty,
				UnitPrice:       l.UnitPrice,
				DiscountPercent: l.DiscountPercent,
				InStock:         true,
			})
			cl.SaleReference = utils.GenerateSaleReference()
		}
		completionLines = append(completionLines, cl)
	}

	fin := &FinancialSnapshot{
		SalesTax:               ws.Snapshot.SalesTax,
		GrandTotalWithInterest: ws.Snapshot.GrandTotal,
		PerTermAmount:          ws.Snapshot.PerTermAmount,
		PaymentTerms:           ws.TermCount,
		InterestPercent:        ws.InterestPercent,
		Forwarder:              ws.Forwarder,
		Salesman:               ws.Salesman,
		PONumber:               ws.PONumber,
	}

	if err := s.repo.CompleteOrder(ctx, orderID, completionLines, fin, actor.Email); err != nil {
		switch {
		case errors.Is(err, inventory.ErrInsufficientStock):
			// Transaction rolled back; the order is untouched and stays
			// accepted so the operator can reduce quantities and retry.
			s.stats.StockBlocked.Inc()
			return nil, ErrInsufficientStock
		case errors.Is(err, ErrInvalidTransition):
			return nil, ErrInvalidTransition
		default:
			// A commit failure can leave the store in an indeterminate
			// state. Flag the order so reconciliation finds it instead of
			// letting the inconsistency hide behind a generic error.
			log.Error("completion failed, flagging order", zap.Error(err))
			if mErr := s.repo.MarkNeedsReconciliation(ctx, orderID); mErr != nil {
				log.Error("failed to flag order for reconciliation", zap.Error(mErr))
			}
			s.recorder.Record(ctx, actor, audit.ActionCompletionStuck, map[string]any{
				"order_id": orderID,
				"error":    err.Error(),
			})
			return nil, ErrPartialWrite
		}
	}

	s.workspaces.Delete(orderID)
	s.stats.Completed.Inc()

	s.recorder.Record(ctx, actor, audit.ActionOrderCompleted, map[string]any{
		"order_id": orderID,
		"customer": order.Customer.Name,
		"lines":    completionLines,
		"totals":   ws.Snapshot,
	})

	log.Info("order completed",
		zap.String("operator", actor.Email),
		zap.String("grand_total", ws.Snapshot.GrandTotal.String()),
	)

	return s.completedOrder(order, completionLines, fin, actor), nil
}

// completedOrder assembles the post-completion view without another read.
func (s *service) completedOrder(order *Order, lines []CompletionLine, fin *FinancialSnapshot, actor utils.Actor) *Order {
	now := time.Now()
	order.Status = StatusCompleted
	order.Financial = fin
	order.ProcessedBy = &actor.Email
	order.ProcessedAt = &now

	byLine := make(map[uint]CompletionLine, len(lines))
	for _, cl := range lines {
		byLine[cl.LineID] = cl
	}
	for i := range order.Lines {
		if cl, ok := byLine[order.Lines[i].ID]; ok {
			qty := cl.FulfilledQty
			disc := cl.DiscountPercent
			order.Lines[i].FulfilledQty = &qty
			order.Lines[i].DiscountPercent = &disc
		}
	}

	return order
}
