package invoice

import (
	"time"

	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents an aggregated, billable statement for one
// (recipient, provider) pair over a date span. At most one invoice is
// PENDING per pair at a time; the aggregator enforces this under a
// per-pair advisory lock plus a partial unique index.
type Invoice struct {
	// Unique identifier for this invoice
	ID string `db:"id" json:"id"`
	// Human-readable invoice number, e.g. INV-XY12A8Q
	InvoiceNumber string `db:"invoice_number" json:"invoice_number"`
	// The recipient_id identifies who is billed
	RecipientID string `db:"recipient_id" json:"recipient_id"`
	// The provider_id identifies who owns the invoice relationship
	ProviderID string `db:"provider_id" json:"provider_id"`
	// The invoice_status tracks the lifecycle (PENDING, PAID, OVERDUE)
	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	// The period_start and period_end span the min/max dates of the
	// invoice's line items, except on period-scoped invoices where they
	// hold the requested window
	PeriodStart time.Time `db:"period_start" json:"period_start"`
	PeriodEnd   time.Time `db:"period_end" json:"period_end"`
	// The period_scoped flag marks invoices created for an explicit date
	// window. Their span never moves and they never serve as the rolling
	// open invoice.
	PeriodScoped bool `db:"period_scoped" json:"period_scoped"`
	// The total_amount equals the sum of the line items' amounts while
	// the invoice is PENDING; recomputed from the line item set inside
	// every aggregation transaction
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	// The gateway_order_id links the invoice to the external payment order (optional)
	GatewayOrderID *string `db:"gateway_order_id" json:"gateway_order_id,omitempty"`
	// The paid_at timestamp records when the payment was captured (optional)
	PaidAt *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	// LineItems are loaded on detail reads; not populated by List
	LineItems []*LineItem `db:"-" json:"line_items,omitempty"`

	types.BaseModel
}

// Validate validates the invoice
func (i *Invoice) Validate() error {
	if i.RecipientID == "" {
		return ierr.NewError("recipient_id is required").
			WithHint("Recipient is required").
			Mark(ierr.ErrValidation)
	}
	if i.ProviderID == "" {
		return ierr.NewError("provider_id is required").
			WithHint("Provider is required").
			Mark(ierr.ErrValidation)
	}
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}
	if i.TotalAmount.IsNegative() {
		return ierr.NewError("total_amount must be non negative").
			Mark(ierr.ErrIntegrity)
	}
	return nil
}

// RecomputeDerived recomputes the running total and date span from the
// full line item set. Called inside the aggregation transaction so the
// total never drifts from the items, even after a rollback deleted some.
func (i *Invoice) RecomputeDerived(items []*LineItem) {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	i.TotalAmount = total

	if len(items) == 0 {
		return
	}
	start, end := items[0].Date, items[0].Date
	for _, item := range items[1:] {
		if item.Date.Before(start) {
			start = item.Date
		}
		if item.Date.After(end) {
			end = item.Date
		}
	}
	i.PeriodStart = start
	i.PeriodEnd = end
}
