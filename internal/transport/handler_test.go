package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"uniasia-be/internal/fulfillment"
	"uniasia-be/internal/pricing"
	"uniasia-be/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Accept(ctx context.Context, orderID uint, actor utils.Actor) (*fulfillment.Workspace, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Workspace), args.Error(1)
}

func (m *MockService) Reject(ctx context.Context, orderID uint, actor utils.Actor) error {
	args := m.Called(ctx, orderID, actor)
	return args.Error(0)
}

func (m *MockService) GetWorkspace(ctx context.Context, orderID uint, actor utils.Actor) (*fulfillment.Workspace, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Workspace), args.Error(1)
}

func (m *MockService) UpdateWorkspace(ctx context.Context, orderID uint, actor utils.Actor, patch fulfillment.WorkspacePatch) (*fulfillment.Workspace, error) {
	args := m.Called(ctx, orderID, actor, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Workspace), args.Error(1)
}

func (m *MockService) CancelWorkspace(ctx context.Context, orderID uint, actor utils.Actor) error {
	args := m.Called(ctx, orderID, actor)
	return args.Error(0)
}

func (m *MockService) Complete(ctx context.Context, orderID uint, actor utils.Actor) (*fulfillment.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockService) Stats() *fulfillment.Stats {
	args := m.Called()
	return args.Get(0).(*fulfillment.Stats)
}

var operator = utils.Actor{Email: "clerk@uniasia.io", Name: "Maria Santos", Role: "operator"}

func sampleWorkspace() *fulfillment.Workspace {
	ws := &fulfillment.Workspace{
		OrderID:     7,
		Owner:       operator.Email,
		TaxEnabled:  true,
		PaymentType: pricing.PaymentCash,
		Lines: []fulfillment.WorkspaceLine{
			{
				LineID:       1,
				InventoryID:  10,
				ItemName:     "Cooking Oil",
				Unit:         "case",
				OrderedQty:   4,
				FulfilledQty: 4,
				UnitPrice:    decimal.NewFromInt(120),
				Available:    50,
				InStock:      true,
			},
		},
		PONumber: "4401",
		Salesman: "Juan Dela Cruz",
	}
	ws.Recompute()
	return ws
}

func doRequest(svc fulfillment.Service, method, path, body string, actor *utils.Actor) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if actor != nil {
		req = req.WithContext(utils.SetActorContext(req.Context(), *actor))
	}
	rr := httptest.NewRecorder()
	NewHandler(svc).ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHandler_Accept(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Accept", mock.Anything, uint(7), operator).Return(sampleWorkspace(), nil)

		rr := doRequest(svc, http.MethodPost, "/api/orders/7/accept", "", &operator)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, float64(7), body["order_id"])
		assert.Equal(t, operator.Email, body["owner"])
		totals := body["totals"].(map[string]any)
		// 4 * 120 = 480, plus 12% tax = 537.6
		assert.Equal(t, "537.6", totals["grand_total"])
		svc.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		svc := new(MockService)

		rr := doRequest(svc, http.MethodPost, "/api/orders/7/accept", "", nil)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "UNAUTHENTICATED", decodeBody(t, rr)["code"])
		svc.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BadOrderID", func(t *testing.T) {
		svc := new(MockService)

		rr := doRequest(svc, http.MethodPost, "/api/orders/abc/accept", "", &operator)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "BAD_ORDER_ID", decodeBody(t, rr)["code"])
	})

	t.Run("AlreadyClaimed", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Accept", mock.Anything, uint(7), operator).Return(nil, fulfillment.ErrInvalidTransition)

		rr := doRequest(svc, http.MethodPost, "/api/orders/7/accept", "", &operator)

		require.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "INVALID_TRANSITION", decodeBody(t, rr)["code"])
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Accept", mock.Anything, uint(99), operator).Return(nil, fulfillment.ErrOrderNotFound)

		rr := doRequest(svc, http.MethodPost, "/api/orders/99/accept", "", &operator)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandler_Reject(t *testing.T) {
	svc := new(MockService)
	svc.On("Reject", mock.Anything, uint(7), operator).Return(nil)

	rr := doRequest(svc, http.MethodPost, "/api/orders/7/reject", "", &operator)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "rejected", decodeBody(t, rr)["status"])
}

func TestHandler_Workspace(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		svc := new(MockService)
		svc.On("GetWorkspace", mock.Anything, uint(7), operator).Return(sampleWorkspace(), nil)

		rr := doRequest(svc, http.MethodGet, "/api/orders/7/workspace", "", &operator)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		lines := body["lines"].([]any)
		require.Len(t, lines, 1)
		assert.Equal(t, "Cooking Oil", lines[0].(map[string]any)["item_name"])
	})

	t.Run("OwnedByAnother", func(t *testing.T) {
		svc := new(MockService)
		svc.On("GetWorkspace", mock.Anything, uint(7), operator).Return(nil, fulfillment.ErrWorkspaceOwned)

		rr := doRequest(svc, http.MethodGet, "/api/orders/7/workspace", "", &operator)

		require.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "WORKSPACE_OWNED", decodeBody(t, rr)["code"])
	})

	t.Run("PatchTranslatesBody", func(t *testing.T) {
		svc := new(MockService)

		var gotPatch fulfillment.WorkspacePatch
		svc.On("UpdateWorkspace", mock.Anything, uint(7), operator, mock.Anything).
			Run(func(args mock.Arguments) {
				gotPatch = args.Get(3).(fulfillment.WorkspacePatch)
			}).
			Return(sampleWorkspace(), nil)

		payload := `{"lines":[{"line_id":1,"fulfilled_qty":2,"discount_percent":"5"}],"tax_enabled":false,"po_number":"9900"}`
		rr := doRequest(svc, http.MethodPatch, "/api/orders/7/workspace", payload, &operator)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, gotPatch.Lines, 1)
		assert.Equal(t, uint(1), gotPatch.Lines[0].LineID)
		require.NotNil(t, gotPatch.Lines[0].FulfilledQty)
		assert.Equal(t, 2, *gotPatch.Lines[0].FulfilledQty)
		require.NotNil(t, gotPatch.Lines[0].DiscountPercent)
		assert.True(t, gotPatch.Lines[0].DiscountPercent.Equal(decimal.NewFromInt(5)))
		require.NotNil(t, gotPatch.TaxEnabled)
		assert.False(t, *gotPatch.TaxEnabled)
		require.NotNil(t, gotPatch.PONumber)
		assert.Equal(t, "9900", *gotPatch.PONumber)
		assert.Nil(t, gotPatch.Salesman, "absent fields stay nil")
	})

	t.Run("PatchMalformedBody", func(t *testing.T) {
		svc := new(MockService)

		rr := doRequest(svc, http.MethodPatch, "/api/orders/7/workspace", "{not json", &operator)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "UpdateWorkspace", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cancel", func(t *testing.T) {
		svc := new(MockService)
		svc.On("CancelWorkspace", mock.Anything, uint(7), operator).Return(nil)

		rr := doRequest(svc, http.MethodDelete, "/api/orders/7/workspace", "", &operator)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestHandler_Complete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)

		processedBy := operator.Email
		order := &fulfillment.Order{
			ID:     7,
			Status: fulfillment.StatusCompleted,
			Customer: fulfillment.Customer{
				Name:        "Aling Nena Store",
				PaymentType: pricing.PaymentCash,
			},
			Financial: &fulfillment.FinancialSnapshot{
				SalesTax:               decimal.RequireFromString("57.60"),
				GrandTotalWithInterest: decimal.RequireFromString("537.60"),
				Salesman:               "Juan Dela Cruz",
				PONumber:               "4401",
			},
			ProcessedBy: &processedBy,
		}
		svc.On("Complete", mock.Anything, uint(7), operator).Return(order, nil)

		rr := doRequest(svc, http.MethodPost, "/api/orders/7/complete", "", &operator)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "completed", body["status"])
		fin := body["financial"].(map[string]any)
		assert.Equal(t, "4401", fin["po_number"])
	})

	t.Run("ValidationFailed", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Complete", mock.Anything, uint(7), operator).Return(nil, fulfillment.ValidationErrors{
			{Field: "po_number", Message: "required"},
		})

		rr := doRequest(svc, http.MethodPost, "/api/orders/7/complete", "", &operator)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "VALIDATION_FAILED", body["code"])
		fields := body["fields"].([]any)
		require.Len(t, fields, 1)
		assert.Equal(t, "po_number", fields[0].(map[string]any)["field"])
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Complete", mock.Anything, uint(7), operator).Return(nil, fulfillment.ErrInsufficientStock)

		rr := doRequest(svc, http.MethodPost, "/api/orders/7/complete", "", &operator)

		require.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "INSUFFICIENT_STOCK", decodeBody(t, rr)["code"])
	})

	t.Run("PartialWrite", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Complete", mock.Anything, uint(7), operator).Return(nil, fulfillment.ErrPartialWrite)

		rr := doRequest(svc, http.MethodPost, "/api/orders/7/complete", "", &operator)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "NEEDS_RECONCILIATION", decodeBody(t, rr)["code"])
	})
}

func TestHandler_Health(t *testing.T) {
	svc := new(MockService)
	stats := &fulfillment.Stats{}
	stats.Accepted.Inc()
	stats.Completed.Inc()
	svc.On("Stats").Return(stats)

	rr := doRequest(svc, http.MethodGet, "/api/health", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "ok", body["status"])
	orders := body["orders"].(map[string]any)
	assert.Equal(t, float64(1), orders["accepted"])
	assert.Equal(t, float64(0), orders["rejected"])
}
