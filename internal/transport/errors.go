package transport

import (
	"errors"
	"net/http"

	"uniasia-be/internal/fulfillment"
	"uniasia-be/internal/logger"
	"uniasia-be/internal/utils"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string                   `json:"error"`
	Code      string                   `json:"code"`
	Fields    []fulfillment.FieldError `json:"fields,omitempty"`
	RequestID string                   `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	utils.WriteJSON(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: logger.RequestIDFrom(r.Context()),
	})
}

// writeServiceError maps fulfillment errors onto HTTP statuses. Anything not
// recognized is a 500 with the detail kept out of the response body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs fulfillment.ValidationErrors

	switch {
	case errors.As(err, &verrs):
		utils.WriteJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     "workspace failed validation",
			Code:      "VALIDATION_FAILED",
			Fields:    verrs,
			RequestID: logger.RequestIDFrom(r.Context()),
		})
	case errors.Is(err, fulfillment.ErrOrderNotFound):
		writeError(w, r, "order not found", "ORDER_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, fulfillment.ErrWorkspaceNotFound):
		writeError(w, r, "no open workspace for this order", "WORKSPACE_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, fulfillment.ErrWorkspaceOwned):
		writeError(w, r, "workspace belongs to another operator", "WORKSPACE_OWNED", http.StatusForbidden)
	case errors.Is(err, fulfillment.ErrInvalidTransition):
		writeError(w, r, "order is not in a state that allows this action", "INVALID_TRANSITION", http.StatusConflict)
	case errors.Is(err, fulfillment.ErrInsufficientStock):
		writeError(w, r, "insufficient stock for requested quantities", "INSUFFICIENT_STOCK", http.StatusConflict)
	case errors.Is(err, fulfillment.ErrPartialWrite):
		writeError(w, r, "completion failed, order flagged for reconciliation", "NEEDS_RECONCILIATION", http.StatusInternalServerError)
	default:
		logger.FromCtx(r.Context()).Error("unhandled service error", zap.Error(err))
		writeError(w, r, "internal server error", "INTERNAL", http.StatusInternalServerError)
	}
}
