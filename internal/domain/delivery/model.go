package delivery

import (
	"time"

	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
)

// Entry represents one fulfillment outcome for one recipient on one
// calendar date. At most one entry exists per (recipient, date, kind).
type Entry struct {
	// Unique identifier for this delivery entry
	ID string `db:"id" json:"id"`
	// The recipient_id identifies who received (or should have received) the delivery
	RecipientID string `db:"recipient_id" json:"recipient_id"`
	// The provider_id identifies who owns the billing relationship for this delivery
	ProviderID string `db:"provider_id" json:"provider_id"`
	// The fulfiller_id identifies who physically completed the delivery (optional)
	FulfillerID *string `db:"fulfiller_id" json:"fulfiller_id,omitempty"`
	// The date is the UTC calendar day the delivery was due
	Date time.Time `db:"date" json:"date"`
	// The kind distinguishes the standing daily delivery from an extra one
	Kind types.DeliveryKind `db:"kind" json:"kind"`
	// The delivery_status records the fulfillment outcome
	DeliveryStatus types.DeliveryStatus `db:"delivery_status" json:"delivery_status"`
	// The extra_quantities field holds the per-variety quantities recorded
	// on an extra entry; empty for regular entries
	ExtraQuantities types.QuantityMap `db:"extra_quantities" json:"extra_quantities,omitempty"`
	// The remarks field carries the fulfiller's note, e.g. a non-delivery reason (optional)
	Remarks *string `db:"remarks" json:"remarks,omitempty"`
	// The invoice_id links the entry to the invoice that billed it (optional)
	InvoiceID *string `db:"invoice_id" json:"invoice_id,omitempty"`
	// The paid flag is set once the linked invoice's payment is captured
	Paid bool `db:"paid" json:"paid"`

	types.BaseModel
}

// Validate validates the delivery entry
func (e *Entry) Validate() error {
	if e.RecipientID == "" {
		return ierr.NewError("recipient_id is required").
			WithHint("Recipient is required").
			Mark(ierr.ErrValidation)
	}
	if e.ProviderID == "" {
		return ierr.NewError("provider_id is required").
			WithHint("Provider is required").
			Mark(ierr.ErrValidation)
	}
	if e.Date.IsZero() {
		return ierr.NewError("date is required").
			WithHint("Delivery date is required").
			Mark(ierr.ErrValidation)
	}
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if err := e.DeliveryStatus.Validate(); err != nil {
		return err
	}
	if err := e.ExtraQuantities.Validate(); err != nil {
		return err
	}
	return nil
}

// IsBillable reports whether the aggregator may pick this entry up:
// delivered, unpaid and not yet linked to any invoice
func (e *Entry) IsBillable() bool {
	return e.DeliveryStatus.IsBillable() && !e.Paid && e.InvoiceID == nil
}
