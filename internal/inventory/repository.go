package inventory

import (
	"context"
	"database/sql"
	"errors"

	"uniasia-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// GetAvailable is the advisory read used while a workspace is being
	// edited. The authoritative gate is the conditional UPDATE in Deduct.
	GetAvailable(ctx context.Context, itemID uint) (int, error)
	GetItems(ctx context.Context, itemIDs []uint) (map[uint]Item, error)
	Deduct(ctx context.Context, itemID uint, amount int) (int, error)

	// DeductTx runs the same conditional deduction on an open transaction so
	// order completion can fold every line into a single commit.
	DeductTx(ctx context.Context, tx *sql.Tx, itemID uint, amount int) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetAvailable(ctx context.Context, itemID uint) (int, error) {
	var available int
	err := r.db.QueryRowContext(ctx, `
		SELECT quantity
		FROM inventory
		WHERE id = $1
	`, itemID).Scan(&available)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrItemNotFound
	}
	if err != nil {
		return 0, err
	}

	return available, nil
}

func (r *repository) GetItems(ctx context.Context, itemIDs []uint) (map[uint]Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetItems"),
		zap.Int("item_count", len(itemIDs)),
	)

	ids := make([]int64, 0, len(itemIDs))
	for _, id := range itemIDs {
		ids = append(ids, int64(id))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, unit, quantity, unit_price, updated_at
		FROM inventory
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		log.Error("failed to query inventory items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := make(map[uint]Item, len(itemIDs))
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Unit, &it.Quantity, &it.UnitPrice, &it.UpdatedAt); err != nil {
			log.Error("failed to scan inventory row", zap.Error(err))
			return nil, err
		}
		items[it.ID] = it
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) Deduct(ctx context.Context, itemID uint, amount int) (int, error) {
	return deduct(ctx, r.db, itemID, amount)
}

func (r *repository) DeductTx(ctx context.Context, tx *sql.Tx, itemID uint, amount int) (int, error) {
	return deduct(ctx, tx, itemID, amount)
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// deduct subtracts amount only when enough stock remains. The WHERE clause is
// the invariant: quantity can never go negative, even under concurrent
// completions, because losing writers match zero rows.
func deduct(ctx context.Context, q execQuerier, itemID uint, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newAvailable int
	err := q.QueryRowContext(ctx, `
		UPDATE inventory
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = $2 AND quantity >= $1
		RETURNING quantity
	`, amount, itemID).Scan(&newAvailable)

	if errors.Is(err, sql.ErrNoRows) {
		// Either the item is gone or there is not enough stock; both block
		// the deduction, and the caller re-reads to tell them apart.
		return 0, ErrInsufficientStock
	}
	if err != nil {
		return 0, err
	}

	return newAvailable, nil
}
