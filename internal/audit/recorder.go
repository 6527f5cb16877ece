package audit

import (
	"context"
	"encoding/json"
	"time"

	"uniasia-be/internal/logger"
	"uniasia-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder appends activity-log entries for state transitions and pricing
// decisions. Recording is best effort: a failed append is logged and
// swallowed so it can never block or roll back the operation it describes.
type Recorder interface {
	Record(ctx context.Context, actor utils.Actor, action string, detail any)
}

type recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) Recorder {
	return &recorder{repo: repo}
}

func (r *recorder) Record(ctx context.Context, actor utils.Actor, action string, detail any) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "audit"),
		zap.String("action", action),
	)

	payload, err := json.Marshal(detail)
	if err != nil {
		log.Error("failed to marshal audit detail", zap.Error(err))
		return
	}

	entry := &Entry{
		ID:         uuid.New(),
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		Action:     action,
		Detail:     payload,
		CreatedAt:  time.Now().UTC(),
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		log.Error("failed to append audit entry", zap.Error(err))
		return
	}

	log.Debug("audit entry recorded", zap.String("entry_id", entry.ID.String()))
}
