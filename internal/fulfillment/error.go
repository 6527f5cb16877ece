package fulfillment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("operation not allowed in current order status")
	ErrWorkspaceNotFound = errors.New("no open workspace for order")
	ErrWorkspaceOwned    = errors.New("workspace is held by another operator")
	ErrInsufficientStock = errors.New("insufficient stock for at least one line")
	ErrPartialWrite      = errors.New("completion failed mid-write, order flagged for reconciliation")
)

// FieldError is a single field-level validation failure on the workspace.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
