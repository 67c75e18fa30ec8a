package invoice

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID, without line items
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetWithLineItems retrieves an invoice with its line items loaded
	GetWithLineItems(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, invoice *Invoice) error

	// Delete removes the invoice row; the rollback path only, and only
	// after its line items are gone
	Delete(ctx context.Context, id string) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// GetOpenInvoice retrieves the most recent PENDING invoice for
	// (recipient, provider) if one exists
	GetOpenInvoice(ctx context.Context, recipientID, providerID string) (*Invoice, error)

	// GetByPeriod retrieves an invoice covering exactly the given span
	// for (recipient, provider) if one exists
	GetByPeriod(ctx context.Context, recipientID, providerID string, periodStart, periodEnd time.Time) (*Invoice, error)

	// GetByGatewayOrderID retrieves the invoice linked to an external
	// payment order
	GetByGatewayOrderID(ctx context.Context, orderID string) (*Invoice, error)
}

// LineItemRepository defines the interface for line item persistence
type LineItemRepository interface {
	// CreateBulk inserts the given line items
	CreateBulk(ctx context.Context, items []*LineItem) error

	// ListByInvoice returns every line item of the invoice
	ListByInvoice(ctx context.Context, invoiceID string) ([]*LineItem, error)

	// DeleteByInvoice removes every line item of the invoice; the
	// rollback path only
	DeleteByInvoice(ctx context.Context, invoiceID string) error
}
