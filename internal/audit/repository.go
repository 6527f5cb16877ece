package audit

import (
	"context"
	"database/sql"
)

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry *Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_logs (
			id, actor_email, actor_role, action, detail, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		entry.ID,
		entry.ActorEmail,
		entry.ActorRole,
		entry.Action,
		entry.Detail,
		entry.CreatedAt,
	)
	return err
}
