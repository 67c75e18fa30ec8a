package adjustment

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/types"
)

// Repository defines the interface for adjustment request persistence
type Repository interface {
	// Create creates a new adjustment request
	Create(ctx context.Context, request *Request) error

	// Get retrieves a request by ID
	Get(ctx context.Context, id string) (*Request, error)

	// Update updates an existing request
	Update(ctx context.Context, request *Request) error

	// GetActive retrieves the pending or approved request for
	// (recipient, date, type) if one exists
	GetActive(ctx context.Context, recipientID string, date time.Time, requestType types.AdjustmentType) (*Request, error)

	// List retrieves requests based on filter criteria
	List(ctx context.Context, filter *types.AdjustmentRequestFilter) ([]*Request, error)
}
