package utils

import "context"

type contextKey string

const (
	ActorEmailKey contextKey = "actor_email"
	ActorNameKey  contextKey = "actor_name"
	ActorRoleKey  contextKey = "actor_role"
)

// Actor identifies the operator performing a fulfillment action. It is an
// explicit parameter on every state-changing operation; the context helpers
// exist only so the HTTP layer can hand it over from middleware.
type Actor struct {
	Email string
	Name  string
	Role  string
}

// SetActorContext sets operator info into context (called by middleware).
func SetActorContext(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, ActorEmailKey, actor.Email)
	ctx = context.WithValue(ctx, ActorNameKey, actor.Name)
	ctx = context.WithValue(ctx, ActorRoleKey, actor.Role)
	return ctx
}

// GetActorFromContext retrieves the operator safely.
func GetActorFromContext(ctx context.Context) (Actor, bool) {
	email, ok := ctx.Value(ActorEmailKey).(string)
	if !ok || email == "" {
		return Actor{}, false
	}
	name, _ := ctx.Value(ActorNameKey).(string)
	role, _ := ctx.Value(ActorRoleKey).(string)
	return Actor{Email: email, Name: name, Role: role}, true
}
