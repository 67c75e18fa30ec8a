package delivery

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/types"
)

// Repository defines the interface for delivery ledger persistence
type Repository interface {
	// Upsert writes the unique (recipient, date, kind) entry, updating it
	// in place when it already exists. Idempotent.
	Upsert(ctx context.Context, entry *Entry) (*Entry, error)

	// Get retrieves an entry by ID
	Get(ctx context.Context, id string) (*Entry, error)

	// GetByKey retrieves the unique entry for (recipient, date, kind)
	GetByKey(ctx context.Context, recipientID string, date time.Time, kind types.DeliveryKind) (*Entry, error)

	// List retrieves entries based on filter criteria
	List(ctx context.Context, filter *types.DeliveryEntryFilter) ([]*Entry, error)

	// ListUnbilled selects delivered entries for (recipient, provider)
	// with no invoice link; when unpaidOnly is set, paid entries are
	// excluded as well
	ListUnbilled(ctx context.Context, recipientID, providerID string, unpaidOnly bool) ([]*Entry, error)

	// ListByInvoice returns every entry linked to the invoice, honoring
	// both link paths: the entry's direct invoice reference and the
	// line items' entry back-references
	ListByInvoice(ctx context.Context, invoiceID string, entryIDs []string) ([]*Entry, error)

	// LinkToInvoice sets the invoice reference on the given entries
	LinkToInvoice(ctx context.Context, entryIDs []string, invoiceID string) error

	// UnlinkFromInvoice clears the invoice reference on every entry
	// linked to the invoice; used by the payment rollback path
	UnlinkFromInvoice(ctx context.Context, invoiceID string) error

	// MarkPaid sets the paid flag on the given entries
	MarkPaid(ctx context.Context, entryIDs []string) error
}
