package dto

import (
	"time"

	"github.com/milkround/milkround/internal/domain/payment"
	"github.com/milkround/milkround/internal/types"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest opens a payment order for a recipient's dues.
// When invoice_id is empty the reconciler aggregates first and pays the
// resulting open invoice.
type CreateOrderRequest struct {
	RecipientID string  `json:"recipient_id" binding:"required"`
	InvoiceID   *string `json:"invoice_id,omitempty"`
	Currency    string  `json:"currency,omitempty"`
}

// VerifyPaymentRequest carries the gateway's callback payload after the
// payer completes checkout
type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               string                       `json:"id"`
	PayerID          string                       `json:"payer_id"`
	GatewayOrderID   string                       `json:"gateway_order_id"`
	GatewayPaymentID *string                      `json:"gateway_payment_id,omitempty"`
	DestinationType  types.PaymentDestinationType `json:"destination_type"`
	InvoiceID        *string                      `json:"invoice_id,omitempty"`
	Amount           decimal.Decimal              `json:"amount"`
	Currency         string                       `json:"currency"`
	PaymentStatus    types.PaymentStatus          `json:"payment_status"`
	ErrorMessage     *string                      `json:"error_message,omitempty"`
	CapturedAt       *time.Time                   `json:"captured_at,omitempty"`
	FailedAt         *time.Time                   `json:"failed_at,omitempty"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

// NewPaymentResponse creates a response from a payment
func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:               p.ID,
		PayerID:          p.PayerID,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		DestinationType:  p.DestinationType,
		InvoiceID:        p.InvoiceID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		PaymentStatus:    p.PaymentStatus,
		ErrorMessage:     p.ErrorMessage,
		CapturedAt:       p.CapturedAt,
		FailedAt:         p.FailedAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ListPaymentsResponse is the list envelope for payments
type ListPaymentsResponse struct {
	Items []*PaymentResponse `json:"items"`
	Total int                `json:"total"`
}

func NewListPaymentsResponse(payments []*payment.Payment) *ListPaymentsResponse {
	items := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = NewPaymentResponse(p)
	}
	return &ListPaymentsResponse{Items: items, Total: len(items)}
}
