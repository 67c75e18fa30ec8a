package testutil

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/domain/payment"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

// NewInMemoryPaymentStore creates a new in-memory payment store
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func (m *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return m.InMemoryStore.Create(ctx, p.ID, p)
}

func (m *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	return m.InMemoryStore.Get(ctx, id)
}

func (m *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	p.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, p.ID, p)
}

func (m *InMemoryPaymentStore) GetByGatewayOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	payments, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, p *payment.Payment, _ interface{}) bool {
		return p.GatewayOrderID == orderID
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, ierr.NewError("payment not found").
			Mark(ierr.ErrNotFound)
	}
	return payments[0], nil
}

func (m *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	return m.InMemoryStore.List(ctx, filter, func(ctx context.Context, p *payment.Payment, f interface{}) bool {
		filter, ok := f.(*types.PaymentFilter)
		if !ok || filter == nil {
			return true
		}
		if filter.PayerID != "" && p.PayerID != filter.PayerID {
			return false
		}
		if filter.InvoiceID != "" && (p.InvoiceID == nil || *p.InvoiceID != filter.InvoiceID) {
			return false
		}
		if filter.PaymentStatus != "" && p.PaymentStatus != filter.PaymentStatus {
			return false
		}
		return true
	}, func(i, j *payment.Payment) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
}
