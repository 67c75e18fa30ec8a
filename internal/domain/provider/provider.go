// Package provider exposes the rate/assignment directory the billing
// aggregator consumes. Rate setting and the recipient-provider
// request/approval workflow are owned elsewhere; the core only reads.
package provider

import (
	"context"

	"github.com/milkround/milkround/internal/types"
)

// Directory is the read-only view of the provider side of the system
type Directory interface {
	// GetRates returns the provider's per-variety rate card
	GetRates(ctx context.Context, providerID string) (types.QuantityMap, error)

	// GetAssignedProvider returns the recipient's current provider, or a
	// not-found error when the recipient has none
	GetAssignedProvider(ctx context.Context, recipientID string) (string, error)
}
