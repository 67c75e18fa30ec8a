package payment

import (
	"time"

	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
	"github.com/shopspring/decimal"
)

// Payment represents one payment attempt against the external gateway.
// It transitions exactly once from CREATED to CAPTURED or FAILED.
type Payment struct {
	// Unique identifier for this payment
	ID string `db:"id" json:"id"`
	// The payer_id identifies the recipient paying the invoice
	PayerID string `db:"payer_id" json:"payer_id"`
	// The gateway_order_id is the order identifier from the external gateway
	GatewayOrderID string `db:"gateway_order_id" json:"gateway_order_id"`
	// The gateway_payment_id is the gateway's payment identifier, set at verification (optional)
	GatewayPaymentID *string `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`
	// The signature received from the gateway at verification (optional)
	Signature *string `db:"signature" json:"signature,omitempty"`
	// The destination_type indicates what entity this payment settles
	DestinationType types.PaymentDestinationType `db:"destination_type" json:"destination_type"`
	// The invoice_id is the settled invoice (optional until linked)
	InvoiceID *string `db:"invoice_id" json:"invoice_id,omitempty"`
	// The amount field specifies the payment value, fixed-point decimal
	Amount decimal.Decimal `db:"amount" json:"amount"`
	// The currency field uses a three-letter ISO code
	Currency string `db:"currency" json:"currency"`
	// The payment_status shows the current state of this payment
	PaymentStatus types.PaymentStatus `db:"payment_status" json:"payment_status"`
	// The error_message field provides details about why the payment failed (optional)
	ErrorMessage *string `db:"error_message" json:"error_message,omitempty"`
	// The captured_at timestamp shows when this payment was captured (optional)
	CapturedAt *time.Time `db:"captured_at" json:"captured_at,omitempty"`
	// The failed_at timestamp indicates when this payment failed (optional)
	FailedAt *time.Time `db:"failed_at" json:"failed_at,omitempty"`

	types.BaseModel
}

// Validate validates the payment
func (p *Payment) Validate() error {
	if p.Amount.IsZero() || p.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if p.PayerID == "" {
		return ierr.NewError("payer_id is required").
			WithHint("Payer is required").
			Mark(ierr.ErrValidation)
	}
	if p.GatewayOrderID == "" {
		return ierr.NewError("gateway_order_id is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.DestinationType.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Please provide a valid destination type").
			Mark(ierr.ErrValidation)
	}
	if err := p.PaymentStatus.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Please provide a valid payment status").
			Mark(ierr.ErrValidation)
	}
	return nil
}
