package testutil

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/domain/invoice"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository. Line items live in
// a separate store wired in by the suite so GetWithLineItems can load
// them the way the sql repository joins.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	lineItems *InMemoryLineItemStore
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store backed
// by the given line item store
func NewInMemoryInvoiceStore(lineItems *InMemoryLineItemStore) *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		lineItems:     lineItems,
	}
}

func (m *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}

	// Partial unique index backstop: one rolling pending invoice per
	// pair; period-scoped invoices are outside the rolling pool
	if inv.InvoiceStatus == types.InvoiceStatusPending && !inv.PeriodScoped {
		existing, err := m.GetOpenInvoice(ctx, inv.RecipientID, inv.ProviderID)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if existing != nil {
			return ierr.NewError("pending invoice already exists").
				WithReportableDetails(map[string]any{
					"invoice_id": existing.ID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	return m.InMemoryStore.Create(ctx, inv.ID, inv)
}

func (m *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return m.InMemoryStore.Get(ctx, id)
}

func (m *InMemoryInvoiceStore) GetWithLineItems(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := m.lineItems.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	return inv, nil
}

func (m *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	inv.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, inv.ID, inv)
}

func (m *InMemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	return m.InMemoryStore.Delete(ctx, id)
}

func (m *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	return m.InMemoryStore.List(ctx, filter, func(ctx context.Context, inv *invoice.Invoice, f interface{}) bool {
		filter, ok := f.(*types.InvoiceFilter)
		if !ok || filter == nil {
			return true
		}
		if filter.RecipientID != "" && inv.RecipientID != filter.RecipientID {
			return false
		}
		if filter.ProviderID != "" && inv.ProviderID != filter.ProviderID {
			return false
		}
		if len(filter.InvoiceStatus) > 0 && !lo.Contains(filter.InvoiceStatus, inv.InvoiceStatus) {
			return false
		}
		if filter.PeriodStart != nil && inv.PeriodEnd.Before(*filter.PeriodStart) {
			return false
		}
		if filter.PeriodEnd != nil && inv.PeriodStart.After(*filter.PeriodEnd) {
			return false
		}
		return true
	}, func(i, j *invoice.Invoice) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
}

func (m *InMemoryInvoiceStore) GetOpenInvoice(ctx context.Context, recipientID, providerID string) (*invoice.Invoice, error) {
	invoices, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.RecipientID == recipientID &&
			inv.ProviderID == providerID &&
			inv.InvoiceStatus == types.InvoiceStatusPending &&
			!inv.PeriodScoped
	}, func(i, j *invoice.Invoice) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ierr.NewError("no open invoice").
			Mark(ierr.ErrNotFound)
	}
	return invoices[0], nil
}

func (m *InMemoryInvoiceStore) GetByPeriod(ctx context.Context, recipientID, providerID string, periodStart, periodEnd time.Time) (*invoice.Invoice, error) {
	invoices, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.RecipientID == recipientID &&
			inv.ProviderID == providerID &&
			inv.PeriodScoped &&
			types.SameDate(inv.PeriodStart, periodStart) &&
			types.SameDate(inv.PeriodEnd, periodEnd)
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ierr.NewError("no invoice for period").
			Mark(ierr.ErrNotFound)
	}
	return invoices[0], nil
}

func (m *InMemoryInvoiceStore) GetByGatewayOrderID(ctx context.Context, orderID string) (*invoice.Invoice, error) {
	invoices, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.GatewayOrderID != nil && *inv.GatewayOrderID == orderID
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ierr.NewError("no invoice for gateway order").
			Mark(ierr.ErrNotFound)
	}
	return invoices[0], nil
}

// InMemoryLineItemStore implements invoice.LineItemRepository
type InMemoryLineItemStore struct {
	*InMemoryStore[*invoice.LineItem]
}

// NewInMemoryLineItemStore creates a new in-memory line item store
func NewInMemoryLineItemStore() *InMemoryLineItemStore {
	return &InMemoryLineItemStore{
		InMemoryStore: NewInMemoryStore[*invoice.LineItem](),
	}
}

func (m *InMemoryLineItemStore) CreateBulk(ctx context.Context, items []*invoice.LineItem) error {
	// Exactly-once backstop: one item per (entry, variety)
	for _, item := range items {
		existing, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, li *invoice.LineItem, _ interface{}) bool {
			return li.DeliveryEntryID == item.DeliveryEntryID && li.Variety == item.Variety
		}, nil)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ierr.NewError("line item already exists for entry and variety").
				WithReportableDetails(map[string]any{
					"delivery_entry_id": item.DeliveryEntryID,
					"variety":           item.Variety,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		if err := m.InMemoryStore.Create(ctx, item.ID, item); err != nil {
			return err
		}
	}
	return nil
}

func (m *InMemoryLineItemStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.LineItem, error) {
	return m.InMemoryStore.List(ctx, nil, func(ctx context.Context, li *invoice.LineItem, _ interface{}) bool {
		return li.InvoiceID == invoiceID
	}, func(i, j *invoice.LineItem) bool {
		return i.Date.Before(j.Date)
	})
}

func (m *InMemoryLineItemStore) DeleteByInvoice(ctx context.Context, invoiceID string) error {
	items, err := m.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := m.InMemoryStore.Delete(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}
