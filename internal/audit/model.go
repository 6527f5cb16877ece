package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable activity-log row. Entries are append-only: nothing
// in this subsystem updates or deletes them.
type Entry struct {
	ID         uuid.UUID
	ActorEmail string
	ActorRole  string
	Action     string
	Detail     json.RawMessage
	CreatedAt  time.Time
}

// Action names recorded by the fulfillment pipeline.
const (
	ActionOrderAccepted   = "order_accepted"
	ActionOrderRejected   = "order_rejected"
	ActionOrderCompleted  = "order_completed"
	ActionCompletionStuck = "order_needs_reconciliation"
)
