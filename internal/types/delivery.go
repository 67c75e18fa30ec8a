package types

import (
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/samber/lo"
)

// DeliveryKind distinguishes the standing daily delivery from an ad hoc
// extra delivery recorded for the same date
type DeliveryKind string

const (
	DeliveryKindRegular DeliveryKind = "regular"
	DeliveryKindExtra   DeliveryKind = "extra"
)

func (k DeliveryKind) String() string {
	return string(k)
}

func (k DeliveryKind) Validate() error {
	allowed := []DeliveryKind{
		DeliveryKindRegular,
		DeliveryKindExtra,
	}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("invalid delivery kind").
			WithHint("Please provide a valid delivery kind").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DeliveryStatus is the fulfillment outcome recorded for one date
type DeliveryStatus string

const (
	// DeliveryStatusDelivered marks a completed delivery, the only status
	// the billing aggregator ever picks up
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	// DeliveryStatusNotDelivered marks a delivery the fulfiller could not complete
	DeliveryStatusNotDelivered DeliveryStatus = "not_delivered"
	// DeliveryStatusCancelled marks a delivery cancelled by the provider
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
	// DeliveryStatusMissed marks a delivery nobody recorded on the day
	DeliveryStatusMissed DeliveryStatus = "missed"
	// DeliveryStatusLeave marks a recipient-requested skip; excluded from billing
	DeliveryStatusLeave DeliveryStatus = "leave"
)

func (s DeliveryStatus) String() string {
	return string(s)
}

func (s DeliveryStatus) Validate() error {
	allowed := []DeliveryStatus{
		DeliveryStatusDelivered,
		DeliveryStatusNotDelivered,
		DeliveryStatusCancelled,
		DeliveryStatusMissed,
		DeliveryStatusLeave,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid delivery status").
			WithHint("Please provide a valid delivery status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsBillable reports whether entries with this status are picked up by
// the billing aggregator
func (s DeliveryStatus) IsBillable() bool {
	return s == DeliveryStatusDelivered
}
