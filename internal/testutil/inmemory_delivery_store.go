package testutil

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/domain/delivery"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
	"github.com/samber/lo"
)

// InMemoryDeliveryStore implements delivery.Repository
type InMemoryDeliveryStore struct {
	*InMemoryStore[*delivery.Entry]
}

// NewInMemoryDeliveryStore creates a new in-memory delivery ledger
func NewInMemoryDeliveryStore() *InMemoryDeliveryStore {
	return &InMemoryDeliveryStore{
		InMemoryStore: NewInMemoryStore[*delivery.Entry](),
	}
}

// Upsert writes the unique (recipient, date, kind) entry. An existing
// entry keeps its identity and billing linkage; only the recorded
// outcome changes, mirroring the ON CONFLICT update.
func (m *InMemoryDeliveryStore) Upsert(ctx context.Context, entry *delivery.Entry) (*delivery.Entry, error) {
	if entry == nil {
		return nil, ierr.NewError("entry cannot be nil").
			Mark(ierr.ErrValidation)
	}

	existing, err := m.GetByKey(ctx, entry.RecipientID, entry.Date, entry.Kind)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		existing.FulfillerID = entry.FulfillerID
		existing.DeliveryStatus = entry.DeliveryStatus
		existing.ExtraQuantities = entry.ExtraQuantities
		existing.Remarks = entry.Remarks
		existing.UpdatedAt = time.Now().UTC()
		existing.UpdatedBy = entry.UpdatedBy
		if err := m.InMemoryStore.Update(ctx, existing.ID, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	if err := m.InMemoryStore.Create(ctx, entry.ID, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (m *InMemoryDeliveryStore) Get(ctx context.Context, id string) (*delivery.Entry, error) {
	return m.InMemoryStore.Get(ctx, id)
}

func (m *InMemoryDeliveryStore) GetByKey(ctx context.Context, recipientID string, date time.Time, kind types.DeliveryKind) (*delivery.Entry, error) {
	entries, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, e *delivery.Entry, _ interface{}) bool {
		return e.RecipientID == recipientID && types.SameDate(e.Date, date) && e.Kind == kind
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ierr.NewError("delivery entry not found").
			Mark(ierr.ErrNotFound)
	}
	return entries[0], nil
}

func (m *InMemoryDeliveryStore) List(ctx context.Context, filter *types.DeliveryEntryFilter) ([]*delivery.Entry, error) {
	return m.InMemoryStore.List(ctx, filter, func(ctx context.Context, e *delivery.Entry, f interface{}) bool {
		filter, ok := f.(*types.DeliveryEntryFilter)
		if !ok || filter == nil {
			return true
		}
		if filter.RecipientID != "" && e.RecipientID != filter.RecipientID {
			return false
		}
		if filter.ProviderID != "" && e.ProviderID != filter.ProviderID {
			return false
		}
		if filter.Kind != "" && e.Kind != filter.Kind {
			return false
		}
		if filter.DeliveryStatus != "" && e.DeliveryStatus != filter.DeliveryStatus {
			return false
		}
		if filter.Paid != nil && e.Paid != *filter.Paid {
			return false
		}
		if filter.Unlinked && e.InvoiceID != nil {
			return false
		}
		if filter.StartDate != nil && e.Date.Before(*filter.StartDate) {
			return false
		}
		if filter.EndDate != nil && e.Date.After(*filter.EndDate) {
			return false
		}
		return true
	}, func(i, j *delivery.Entry) bool {
		return i.Date.Before(j.Date)
	})
}

func (m *InMemoryDeliveryStore) ListUnbilled(ctx context.Context, recipientID, providerID string, unpaidOnly bool) ([]*delivery.Entry, error) {
	return m.InMemoryStore.List(ctx, nil, func(ctx context.Context, e *delivery.Entry, _ interface{}) bool {
		if e.RecipientID != recipientID || e.ProviderID != providerID {
			return false
		}
		if !e.DeliveryStatus.IsBillable() || e.InvoiceID != nil {
			return false
		}
		if unpaidOnly && e.Paid {
			return false
		}
		return true
	}, func(i, j *delivery.Entry) bool {
		return i.Date.Before(j.Date)
	})
}

func (m *InMemoryDeliveryStore) ListByInvoice(ctx context.Context, invoiceID string, entryIDs []string) ([]*delivery.Entry, error) {
	return m.InMemoryStore.List(ctx, nil, func(ctx context.Context, e *delivery.Entry, _ interface{}) bool {
		if e.InvoiceID != nil && *e.InvoiceID == invoiceID {
			return true
		}
		return lo.Contains(entryIDs, e.ID)
	}, func(i, j *delivery.Entry) bool {
		return i.Date.Before(j.Date)
	})
}

func (m *InMemoryDeliveryStore) LinkToInvoice(ctx context.Context, entryIDs []string, invoiceID string) error {
	for _, id := range entryIDs {
		e, err := m.InMemoryStore.Get(ctx, id)
		if err != nil {
			return err
		}
		e.InvoiceID = &invoiceID
		e.Paid = false
		e.UpdatedAt = time.Now().UTC()
		if err := m.InMemoryStore.Update(ctx, id, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *InMemoryDeliveryStore) UnlinkFromInvoice(ctx context.Context, invoiceID string) error {
	entries, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, e *delivery.Entry, _ interface{}) bool {
		return e.InvoiceID != nil && *e.InvoiceID == invoiceID
	}, nil)
	if err != nil {
		return err
	}
	for _, e := range entries {
		e.InvoiceID = nil
		e.UpdatedAt = time.Now().UTC()
		if err := m.InMemoryStore.Update(ctx, e.ID, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *InMemoryDeliveryStore) MarkPaid(ctx context.Context, entryIDs []string) error {
	for _, id := range entryIDs {
		e, err := m.InMemoryStore.Get(ctx, id)
		if err != nil {
			return err
		}
		e.Paid = true
		e.UpdatedAt = time.Now().UTC()
		if err := m.InMemoryStore.Update(ctx, id, e); err != nil {
			return err
		}
	}
	return nil
}
