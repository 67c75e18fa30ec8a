package types

import (
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusPending is the single open invoice the aggregator keeps
	// folding new delivery entries into
	InvoiceStatusPending InvoiceStatus = "PENDING"
	// InvoiceStatusPaid is set only by the payment reconciler after a
	// verified capture
	InvoiceStatusPaid InvoiceStatus = "PAID"
	// InvoiceStatusOverdue marks a pending invoice past its due date
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
