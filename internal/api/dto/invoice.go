package dto

import (
	"time"

	"github.com/milkround/milkround/internal/domain/invoice"
	"github.com/milkround/milkround/internal/types"
	"github.com/shopspring/decimal"
)

// AggregateRequest asks the billing aggregator to fold a recipient's
// unbilled entries into their open invoice
type AggregateRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
}

// AggregateForPeriodRequest asks for a fresh invoice covering a closed
// date window
type AggregateForPeriodRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

// InvoiceLineItemResponse represents an invoice line item in API
// responses
type InvoiceLineItemResponse struct {
	ID              string            `json:"id"`
	InvoiceID       string            `json:"invoice_id"`
	DeliveryEntryID string            `json:"delivery_entry_id"`
	Date            string            `json:"date"`
	Variety         types.MilkVariety `json:"variety"`
	Description     string            `json:"description"`
	Quantity        decimal.Decimal   `json:"quantity"`
	Rate            decimal.Decimal   `json:"rate"`
	Amount          decimal.Decimal   `json:"amount"`
	IsExtra         bool              `json:"is_extra"`
	IsLeave         bool              `json:"is_leave"`
	IsUnsuccessful  bool              `json:"is_unsuccessful"`
}

func NewInvoiceLineItemResponse(li *invoice.LineItem) *InvoiceLineItemResponse {
	return &InvoiceLineItemResponse{
		ID:              li.ID,
		InvoiceID:       li.InvoiceID,
		DeliveryEntryID: li.DeliveryEntryID,
		Date:            types.FormatDate(li.Date),
		Variety:         li.Variety,
		Description:     li.Description,
		Quantity:        li.Quantity,
		Rate:            li.Rate,
		Amount:          li.Amount,
		IsExtra:         li.IsExtra,
		IsLeave:         li.IsLeave,
		IsUnsuccessful:  li.IsUnsuccessful,
	}
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             string                     `json:"id"`
	InvoiceNumber  string                     `json:"invoice_number"`
	RecipientID    string                     `json:"recipient_id"`
	ProviderID     string                     `json:"provider_id"`
	InvoiceStatus  types.InvoiceStatus        `json:"invoice_status"`
	PeriodStart    string                     `json:"period_start"`
	PeriodEnd      string                     `json:"period_end"`
	PeriodScoped   bool                       `json:"period_scoped"`
	TotalAmount    decimal.Decimal            `json:"total_amount"`
	GatewayOrderID *string                    `json:"gateway_order_id,omitempty"`
	PaidAt         *time.Time                 `json:"paid_at,omitempty"`
	LineItems      []*InvoiceLineItemResponse `json:"line_items,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// NewInvoiceResponse creates a response from an invoice; line items are
// included when loaded
func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		RecipientID:    inv.RecipientID,
		ProviderID:     inv.ProviderID,
		InvoiceStatus:  inv.InvoiceStatus,
		PeriodStart:    types.FormatDate(inv.PeriodStart),
		PeriodEnd:      types.FormatDate(inv.PeriodEnd),
		PeriodScoped:   inv.PeriodScoped,
		TotalAmount:    inv.TotalAmount,
		GatewayOrderID: inv.GatewayOrderID,
		PaidAt:         inv.PaidAt,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	for _, li := range inv.LineItems {
		resp.LineItems = append(resp.LineItems, NewInvoiceLineItemResponse(li))
	}
	return resp
}

// ListInvoicesResponse is the list envelope for invoices
type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}

func NewListInvoicesResponse(invoices []*invoice.Invoice) *ListInvoicesResponse {
	items := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = NewInvoiceResponse(inv)
	}
	return &ListInvoicesResponse{Items: items, Total: len(items)}
}
