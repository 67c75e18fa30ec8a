package payment

import (
	"context"

	"github.com/milkround/milkround/internal/types"
)

// Repository defines the interface for payment persistence
type Repository interface {
	// Create creates a new payment
	Create(ctx context.Context, payment *Payment) error

	// Get retrieves a payment by ID
	Get(ctx context.Context, id string) (*Payment, error)

	// Update updates an existing payment
	Update(ctx context.Context, payment *Payment) error

	// GetByGatewayOrderID retrieves the payment opened for an external order
	GetByGatewayOrderID(ctx context.Context, orderID string) (*Payment, error)

	// List retrieves payments based on filter criteria
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
}
