package types

import (
	"fmt"

	"github.com/samber/lo"
)

// PaymentStatus represents the status of a payment against the external gateway
type PaymentStatus string

const (
	PaymentStatusCreated    PaymentStatus = "CREATED"
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	PaymentStatusCaptured   PaymentStatus = "CAPTURED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusCreated,
		PaymentStatusPending,
		PaymentStatusAuthorized,
		PaymentStatusCaptured,
		PaymentStatusFailed,
		PaymentStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid payment status: %s", s)
	}
	return nil
}

// IsFinal reports whether the payment has been reconciled exactly once;
// Verify must reject a second transition out of this state
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentStatusCaptured || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

// PaymentDestinationType represents the type of payment destination
type PaymentDestinationType string

const (
	PaymentDestinationTypeInvoice PaymentDestinationType = "INVOICE"
)

func (s PaymentDestinationType) String() string {
	return string(s)
}

func (s PaymentDestinationType) Validate() error {
	allowed := []PaymentDestinationType{
		PaymentDestinationTypeInvoice,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid payment destination type: %s", s)
	}
	return nil
}
