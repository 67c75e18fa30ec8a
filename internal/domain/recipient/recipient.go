// Package recipient exposes the profile fields the billing aggregator
// consumes. Profile CRUD is owned elsewhere; the core only reads.
package recipient

import (
	"context"

	"github.com/milkround/milkround/internal/types"
)

// Profile is the read-only view of a recipient's billing-relevant data
type Profile interface {
	// GetStandingQuantities returns the recipient's standing per-variety
	// daily quantities
	GetStandingQuantities(ctx context.Context, recipientID string) (types.QuantityMap, error)

	// GetNotificationToken returns the recipient's push token, empty when
	// the recipient has none registered
	GetNotificationToken(ctx context.Context, recipientID string) (string, error)
}
