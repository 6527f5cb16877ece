package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey  ctxKey = "request_id"
	actorEmailKey ctxKey = "actor_email"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// WithActorEmail tags the context so subsequent log lines carry the operator.
func WithActorEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, actorEmailKey, email)
}

func ActorEmailFrom(ctx context.Context) string {
	if v := ctx.Value(actorEmailKey); v != nil {
		return v.(string)
	}
	return ""
}

// FromCtx returns logger with request_id and actor automatically added.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if email := ActorEmailFrom(ctx); email != "" {
		l = l.With(zap.String("actor", email))
	}
	return l
}
