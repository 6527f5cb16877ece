package fulfillment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"uniasia-be/internal/inventory"
	"uniasia-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	GetOrder(ctx context.Context, orderID uint) (*Order, error)

	// AcceptOrder and RejectOrder guard the transition in SQL: the UPDATE is
	// conditional on the current status and a zero rows-affected result means
	// another operator won the race or the order is terminal.
	AcceptOrder(ctx context.Context, orderID uint, actorEmail string) error
	RejectOrder(ctx context.Context, orderID uint, actorEmail string) error

	// CompleteOrder runs the whole finalization inside one transaction:
	// inventory deduction, line updates, sale rows, financial snapshot and
	// the status flip either all land or none do.
	CompleteOrder(ctx context.Context, orderID uint, lines []CompletionLine, fin *FinancialSnapshot, actorEmail string) error

	MarkNeedsReconciliation(ctx context.Context, orderID uint) error
}

type repository struct {
	db  *sql.DB
	inv inventory.Repository
}

func NewRepository(db *sql.DB, inv inventory.Repository) Repository {
	return &repository{db: db, inv: inv}
}

func (r *repository) GetOrder(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	var fin FinancialSnapshot
	var salesTax, grandTotal, perTerm, interest decimal.NullDecimal
	var paymentTerms sql.NullInt64
	var forwarder, salesman, poNumber sql.NullString

	// Both reads run in one read-only transaction so a completion landing
	// between them cannot pair a completed header with pre-completion lines.
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		SELECT
			id, status,
			customer_name, payment_type, customer_address, customer_contact,
			sales_tax, grand_total_with_interest, per_term_amount,
			payment_terms, interest_percent, forwarder, salesman, po_number,
			created_at, accepted_by, accepted_at, processed_by, processed_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.Status,
		&o.Customer.Name, &o.Customer.PaymentType, &o.Customer.Address, &o.Customer.Contact,
		&salesTax, &grandTotal, &perTerm,
		&paymentTerms, &interest, &forwarder, &salesman, &poNumber,
		&o.CreatedAt, &o.AcceptedBy, &o.AcceptedAt, &o.ProcessedBy, &o.ProcessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	// The snapshot is populated exactly once, at completion; before that all
	// of its columns are NULL together.
	if grandTotal.Valid {
		fin.SalesTax = salesTax.Decimal
		fin.GrandTotalWithInterest = grandTotal.Decimal
		fin.PerTermAmount = perTerm.Decimal
		fin.PaymentTerms = int(paymentTerms.Int64)
		fin.InterestPercent = interest.Decimal
		fin.Forwarder = forwarder.String
		fin.Salesman = salesman.String
		fin.PONumber = poNumber.String
		o.Financial = &fin
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, order_id, inventory_id, ordered_qty, fulfilled_qty, unit_price, discount_percent
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var li OrderLineItem
		var fulfilled sql.NullInt64
		var discount decimal.NullDecimal

		if err := rows.Scan(&li.ID, &li.OrderID, &li.InventoryID, &li.OrderedQty, &fulfilled, &li.UnitPrice, &discount); err != nil {
			return nil, err
		}
		if fulfilled.Valid {
			n := int(fulfilled.Int64)
			li.FulfilledQty = &n
		}
		if discount.Valid {
			d := discount.Decimal
			li.DiscountPercent = &d
		}
		o.Lines = append(o.Lines, li)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) AcceptOrder(ctx context.Context, orderID uint, actorEmail string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'accepted', accepted_by = $1, accepted_at = NOW()
		WHERE id = $2
		  AND status = 'requested'
	`, actorEmail, orderID)
	if err != nil {
		return err
	}

	return r.checkTransition(ctx, res, orderID)
}

func (r *repository) RejectOrder(ctx context.Context, orderID uint, actorEmail string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'rejected', processed_by = $1, processed_at = NOW()
		WHERE id = $2
		  AND status IN ('requested', 'accepted')
	`, actorEmail, orderID)
	if err != nil {
		return err
	}

	return r.checkTransition(ctx, res, orderID)
}

// checkTransition disambiguates a zero rows-affected conditional update:
// either the order does not exist or its status no longer permits the move.
func (r *repository) checkTransition(ctx context.Context, res sql.Result, orderID uint) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrOrderNotFound
	}
	return ErrInvalidTransition
}

func (r *repository) CompleteOrder(
	ctx context.Context,
	orderID uint,
	lines []CompletionLine,
	fin *FinancialSnapshot,
	actorEmail string,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CompleteOrder"),
		zap.Uint("order_id", orderID),
		zap.Int("line_count", len(lines)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin completion transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback completion transaction", zap.Error(rbErr))
			}
		}
	}()

	for _, line := range lines {
		if line.InStock {
			// Conditional deduct: a shortfall surfaces here and aborts the
			// whole transaction before anything is committed.
			if _, err := r.inv.DeductTx(ctx, tx, line.InventoryID, line.FulfilledQty); err != nil {
				log.Warn("inventory deduction blocked",
					zap.Uint("inventory_id", line.InventoryID),
					zap.Int("fulfilled_qty", line.FulfilledQty),
					zap.Error(err),
				)
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE order_line_items
			SET fulfilled_qty = $1, discount_percent = $2
			WHERE id = $3
		`, line.FulfilledQty, line.DiscountPercent, line.LineID)
		if err != nil {
			log.Error("failed to update order line", zap.Uint("line_id", line.LineID), zap.Error(err))
			return err
		}

		if line.InStock {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO sales (reference, order_id, inventory_id, quantity, amount, created_at)
				VALUES ($1,$2,$3,$4,$5,NOW())
			`, line.SaleReference, orderID, line.InventoryID, line.FulfilledQty, line.Amount)
			if err != nil {
				log.Error("failed to insert sale record", zap.Uint("line_id", line.LineID), zap.Error(err))
				return err
			}
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = 'completed',
			sales_tax = $1,
			grand_total_with_interest = $2,
			per_term_amount = $3,
			payment_terms = $4,
			interest_percent = $5,
			forwarder = $6,
			salesman = $7,
			po_number = $8,
			processed_by = $9,
			processed_at = NOW()
		WHERE id = $10
		  AND status = 'accepted'
	`,
		fin.SalesTax,
		fin.GrandTotalWithInterest,
		fin.PerTermAmount,
		fin.PaymentTerms,
		fin.InterestPercent,
		fin.Forwarder,
		fin.Salesman,
		fin.PONumber,
		actorEmail,
		orderID,
	)
	if err != nil {
		log.Error("failed to finalize order", zap.Error(err))
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		// Status changed underneath us; the rollback undoes every line write.
		return ErrInvalidTransition
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit completion transaction", zap.Error(err))
		return fmt.Errorf("commit completion: %w", err)
	}

	committed = true
	log.Info("order completion committed")

	return nil
}

func (r *repository) MarkNeedsReconciliation(ctx context.Context, orderID uint) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'needs_reconciliation'
		WHERE id = $1
		  AND status = 'accepted'
	`, orderID)
	return err
}
