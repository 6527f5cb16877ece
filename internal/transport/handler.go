package transport

import (
	"encoding/json"
	"net/http"

	"uniasia-be/internal/fulfillment"
	"uniasia-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the fulfillment pipeline over JSON HTTP.
type Handler struct {
	svc fulfillment.Service
}

// NewHandler wires the chi router. Authentication, rate limiting and request
// logging are applied by the caller around the returned handler.
func NewHandler(svc fulfillment.Service) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()

	r.Get("/api/health", h.health)

	r.Route("/api/orders/{id}", func(r chi.Router) {
		r.Post("/accept", h.accept)
		r.Post("/reject", h.reject)
		r.Post("/complete", h.complete)
		r.Get("/workspace", h.getWorkspace)
		r.Patch("/workspace", h.patchWorkspace)
		r.Delete("/workspace", h.cancelWorkspace)
	})

	return r
}

// requireActor rejects requests that carry no authenticated identity. Every
// fulfillment action is attributed to an operator.
func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) (utils.Actor, bool) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		writeError(w, r, "authentication required", "UNAUTHENTICATED", http.StatusUnauthorized)
		return utils.Actor{}, false
	}
	return actor, true
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := utils.ToUint(chi.URLParam(r, "id"))
	if err != nil || id == 0 {
		writeError(w, r, "invalid order id", "BAD_ORDER_ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	ws, err := h.svc.Accept(r.Context(), id, actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toWorkspaceResponse(ws))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Reject(r.Context(), id, actor); err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"order_id": id,
		"status":   string(fulfillment.StatusRejected),
	})
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.Complete(r.Context(), id, actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) getWorkspace(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	ws, err := h.svc.GetWorkspace(r.Context(), id, actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toWorkspaceResponse(ws))
}

func (h *Handler) patchWorkspace(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req workspaceEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "malformed request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	ws, err := h.svc.UpdateWorkspace(r.Context(), id, actor, req.toPatch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toWorkspaceResponse(ws))
}

func (h *Handler) cancelWorkspace(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	if err := h.svc.CancelWorkspace(r.Context(), id, actor); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	stats := h.svc.Stats()
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"orders": map[string]uint64{
			"accepted":      stats.Accepted.Load(),
			"rejected":      stats.Rejected.Load(),
			"completed":     stats.Completed.Load(),
			"stock_blocked": stats.StockBlocked.Load(),
		},
	})
}
