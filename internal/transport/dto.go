package transport

import (
	"time"

	"uniasia-be/internal/fulfillment"
	"uniasia-be/internal/pricing"

	"github.com/shopspring/decimal"
)

// Request bodies. Pointer fields distinguish "absent" from zero so a PATCH
// only touches what the client sent.

type lineEditRequest struct {
	LineID          uint             `json:"line_id"`
	FulfilledQty    *int             `json:"fulfilled_qty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

type workspaceEditRequest struct {
	Lines           []lineEditRequest `json:"lines"`
	TaxEnabled      *bool             `json:"tax_enabled"`
	InterestPercent *decimal.Decimal  `json:"interest_percent"`
	TermCount       *int              `json:"term_count"`
	PONumber        *string           `json:"po_number"`
	Salesman        *string           `json:"salesman"`
	Forwarder       *string           `json:"forwarder"`
}

func (req workspaceEditRequest) toPatch() fulfillment.WorkspacePatch {
	patch := fulfillment.WorkspacePatch{
		TaxEnabled:      req.TaxEnabled,
		InterestPercent: req.InterestPercent,
		TermCount:       req.TermCount,
		PONumber:        req.PONumber,
		Salesman:        req.Salesman,
		Forwarder:       req.Forwarder,
	}
	for _, l := range req.Lines {
		patch.Lines = append(patch.Lines, fulfillment.LinePatch{
			LineID:          l.LineID,
			FulfilledQty:    l.FulfilledQty,
			DiscountPercent: l.DiscountPercent,
		})
	}
	return patch
}

// Response shapes.

type totalsResponse struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	NetBeforeTax  decimal.Decimal `json:"net_before_tax"`
	SalesTax      decimal.Decimal `json:"sales_tax"`
	BaseTotal     decimal.Decimal `json:"base_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	PerTermAmount decimal.Decimal `json:"per_term_amount"`
}

func toTotalsResponse(s pricing.Snapshot) totalsResponse {
	return totalsResponse{
		Subtotal:      s.Subtotal,
		TotalDiscount: s.TotalDiscount,
		NetBeforeTax:  s.NetBeforeTax,
		SalesTax:      s.SalesTax,
		BaseTotal:     s.BaseTotal,
		GrandTotal:    s.GrandTotal,
		PerTermAmount: s.PerTermAmount,
	}
}

type workspaceLineResponse struct {
	LineID          uint            `json:"line_id"`
	InventoryID     uint            `json:"inventory_id"`
	ItemName        string          `json:"item_name"`
	Unit            string          `json:"unit"`
	OrderedQty      int             `json:"ordered_qty"`
	FulfilledQty    int             `json:"fulfilled_qty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Available       int             `json:"available"`
	InStock         bool            `json:"in_stock"`
}

type workspaceResponse struct {
	OrderID         uint                    `json:"order_id"`
	Owner           string                  `json:"owner"`
	Lines           []workspaceLineResponse `json:"lines"`
	TaxEnabled      bool                    `json:"tax_enabled"`
	PaymentType     string                  `json:"payment_type"`
	InterestPercent decimal.Decimal         `json:"interest_percent"`
	TermCount       int                     `json:"term_count"`
	PONumber        string                  `json:"po_number"`
	Salesman        string                  `json:"salesman"`
	Forwarder       string                  `json:"forwarder"`
	Totals          totalsResponse          `json:"totals"`
	OpenedAt        time.Time               `json:"opened_at"`
}

func toWorkspaceResponse(ws *fulfillment.Workspace) workspaceResponse {
	resp := workspaceResponse{
		OrderID:         ws.OrderID,
		Owner:           ws.Owner,
		TaxEnabled:      ws.TaxEnabled,
		PaymentType:     string(ws.PaymentType),
		InterestPercent: ws.InterestPercent,
		TermCount:       ws.TermCount,
		PONumber:        ws.PONumber,
		Salesman:        ws.Salesman,
		Forwarder:       ws.Forwarder,
		Totals:          toTotalsResponse(ws.Snapshot),
		OpenedAt:        ws.OpenedAt,
	}
	for _, l := range ws.Lines {
		resp.Lines = append(resp.Lines, workspaceLineResponse{
			LineID:          l.LineID,
			InventoryID:     l.InventoryID,
			ItemName:        l.ItemName,
			Unit:            l.Unit,
			OrderedQty:      l.OrderedQty,
			FulfilledQty:    l.FulfilledQty,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			Available:       l.Available,
			InStock:         l.InStock,
		})
	}
	return resp
}

type orderLineResponse struct {
	ID              uint             `json:"id"`
	InventoryID     uint             `json:"inventory_id"`
	OrderedQty      int              `json:"ordered_qty"`
	FulfilledQty    *int             `json:"fulfilled_qty,omitempty"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

type financialResponse struct {
	SalesTax               decimal.Decimal `json:"sales_tax"`
	GrandTotalWithInterest decimal.Decimal `json:"grand_total_with_interest"`
	PerTermAmount          decimal.Decimal `json:"per_term_amount"`
	PaymentTerms           int             `json:"payment_terms"`
	InterestPercent        decimal.Decimal `json:"interest_percent"`
	Forwarder              string          `json:"forwarder,omitempty"`
	Salesman               string          `json:"salesman"`
	PONumber               string          `json:"po_number"`
}

type orderResponse struct {
	ID          uint                `json:"id"`
	Status      string              `json:"status"`
	Customer    string              `json:"customer"`
	PaymentType string              `json:"payment_type"`
	Lines       []orderLineResponse `json:"lines"`
	Financial   *financialResponse  `json:"financial,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	AcceptedBy  *string             `json:"accepted_by,omitempty"`
	AcceptedAt  *time.Time          `json:"accepted_at,omitempty"`
	ProcessedBy *string             `json:"processed_by,omitempty"`
	ProcessedAt *time.Time          `json:"processed_at,omitempty"`
}

func toOrderResponse(o *fulfillment.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		Status:      string(o.Status),
		Customer:    o.Customer.Name,
		PaymentType: string(o.Customer.PaymentType),
		CreatedAt:   o.CreatedAt,
		AcceptedBy:  o.AcceptedBy,
		AcceptedAt:  o.AcceptedAt,
		ProcessedBy: o.ProcessedBy,
		ProcessedAt: o.ProcessedAt,
	}
	if o.Financial != nil {
		resp.Financial = &financialResponse{
			SalesTax:               o.Financial.SalesTax,
			GrandTotalWithInterest: o.Financial.GrandTotalWithInterest,
			PerTermAmount:          o.Financial.PerTermAmount,
			PaymentTerms:           o.Financial.PaymentTerms,
			InterestPercent:        o.Financial.InterestPercent,
			Forwarder:              o.Financial.Forwarder,
			Salesman:               o.Financial.Salesman,
			PONumber:               o.Financial.PONumber,
		}
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ID:              l.ID,
			InventoryID:     l.InventoryID,
			OrderedQty:      l.OrderedQty,
			FulfilledQty:    l.FulfilledQty,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
		})
	}
	return resp
}
