package types

import (
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/samber/lo"
)

// AdjustmentType is the kind of change a recipient proposes for one date
type AdjustmentType string

const (
	// AdjustmentTypeLeave skips the delivery for the date; auto-approved at submission
	AdjustmentTypeLeave AdjustmentType = "leave"
	// AdjustmentTypeExtraMilk requests additional quantity on top of the standing delivery
	AdjustmentTypeExtraMilk AdjustmentType = "extra_milk"
	// AdjustmentTypeQuantityAdjustment requests an arbitrary quantity override for the date
	AdjustmentTypeQuantityAdjustment AdjustmentType = "quantity_adjustment"
)

func (t AdjustmentType) String() string {
	return string(t)
}

func (t AdjustmentType) Validate() error {
	allowed := []AdjustmentType{
		AdjustmentTypeLeave,
		AdjustmentTypeExtraMilk,
		AdjustmentTypeQuantityAdjustment,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid adjustment type").
			WithHint("Please provide a valid adjustment type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RequiresQuantities reports whether a submission of this type must carry
// at least one non-zero quantity
func (t AdjustmentType) RequiresQuantities() bool {
	return t == AdjustmentTypeExtraMilk || t == AdjustmentTypeQuantityAdjustment
}

// AdjustmentStatus is the lifecycle state of an adjustment request
type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "pending"
	AdjustmentStatusApproved AdjustmentStatus = "approved"
	AdjustmentStatusRejected AdjustmentStatus = "rejected"
)

func (s AdjustmentStatus) String() string {
	return string(s)
}

func (s AdjustmentStatus) Validate() error {
	allowed := []AdjustmentStatus{
		AdjustmentStatusPending,
		AdjustmentStatusApproved,
		AdjustmentStatusRejected,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid adjustment status").
			WithHint("Please provide a valid adjustment status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsActive reports whether a request in this status blocks a new
// submission for the same (recipient, date, type)
func (s AdjustmentStatus) IsActive() bool {
	return s == AdjustmentStatusPending || s == AdjustmentStatusApproved
}
