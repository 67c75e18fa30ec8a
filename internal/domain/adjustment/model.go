package adjustment

import (
	"time"

	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
)

// Request is a recipient's proposed change for one date: skip the
// delivery, add extra quantity, or override the standing quantity.
// At most one active (pending/approved) request exists per
// (recipient, date, type).
type Request struct {
	// Unique identifier for this adjustment request
	ID string `db:"id" json:"id"`
	// The recipient_id identifies who submitted the request
	RecipientID string `db:"recipient_id" json:"recipient_id"`
	// The provider_id identifies who must act on the request
	ProviderID string `db:"provider_id" json:"provider_id"`
	// The date is the UTC calendar day the change applies to
	Date time.Time `db:"date" json:"date"`
	// The request_type is leave, extra_milk or quantity_adjustment
	RequestType types.AdjustmentType `db:"request_type" json:"request_type"`
	// The quantities field holds the requested per-variety quantities;
	// empty for leave requests
	Quantities types.QuantityMap `db:"quantities" json:"quantities,omitempty"`
	// The reason field carries the recipient's note (optional)
	Reason *string `db:"reason" json:"reason,omitempty"`
	// The request_status tracks the approval lifecycle
	RequestStatus types.AdjustmentStatus `db:"request_status" json:"request_status"`
	// The rejection_reason explains a rejected request (optional)
	RejectionReason *string `db:"rejection_reason" json:"rejection_reason,omitempty"`
	// The finalized_at timestamp records approval or rejection (optional)
	FinalizedAt *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`

	types.BaseModel
}

// Validate validates the adjustment request
func (r *Request) Validate() error {
	if r.RecipientID == "" {
		return ierr.NewError("recipient_id is required").
			WithHint("Recipient is required").
			Mark(ierr.ErrValidation)
	}
	if r.Date.IsZero() {
		return ierr.NewError("date is required").
			WithHint("Date is required").
			Mark(ierr.ErrValidation)
	}
	if err := r.RequestType.Validate(); err != nil {
		return err
	}
	if err := r.RequestStatus.Validate(); err != nil {
		return err
	}
	if r.RequestType.RequiresQuantities() && r.Quantities.IsZero() {
		return ierr.NewError("all requested quantities are zero").
			WithHint("At least one non-zero quantity is required").
			Mark(ierr.ErrValidation)
	}
	return r.Quantities.Validate()
}

// IsFinalized reports whether the request has left the pending state
func (r *Request) IsFinalized() bool {
	return r.RequestStatus != types.AdjustmentStatusPending
}
