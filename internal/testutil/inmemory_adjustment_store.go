package testutil

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/domain/adjustment"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
)

// InMemoryAdjustmentStore implements adjustment.Repository
type InMemoryAdjustmentStore struct {
	*InMemoryStore[*adjustment.Request]
}

// NewInMemoryAdjustmentStore creates a new in-memory adjustment store
func NewInMemoryAdjustmentStore() *InMemoryAdjustmentStore {
	return &InMemoryAdjustmentStore{
		InMemoryStore: NewInMemoryStore[*adjustment.Request](),
	}
}

func (m *InMemoryAdjustmentStore) Create(ctx context.Context, request *adjustment.Request) error {
	if request == nil {
		return ierr.NewError("request cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return m.InMemoryStore.Create(ctx, request.ID, request)
}

func (m *InMemoryAdjustmentStore) Get(ctx context.Context, id string) (*adjustment.Request, error) {
	return m.InMemoryStore.Get(ctx, id)
}

func (m *InMemoryAdjustmentStore) Update(ctx context.Context, request *adjustment.Request) error {
	if request == nil {
		return ierr.NewError("request cannot be nil").
			Mark(ierr.ErrValidation)
	}
	request.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, request.ID, request)
}

func (m *InMemoryAdjustmentStore) GetActive(ctx context.Context, recipientID string, date time.Time, requestType types.AdjustmentType) (*adjustment.Request, error) {
	requests, err := m.InMemoryStore.List(ctx, nil, func(ctx context.Context, r *adjustment.Request, _ interface{}) bool {
		return r.RecipientID == recipientID &&
			types.SameDate(r.Date, date) &&
			r.RequestType == requestType &&
			r.RequestStatus.IsActive()
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ierr.NewError("adjustment request not found").
			Mark(ierr.ErrNotFound)
	}
	return requests[0], nil
}

func (m *InMemoryAdjustmentStore) List(ctx context.Context, filter *types.AdjustmentRequestFilter) ([]*adjustment.Request, error) {
	return m.InMemoryStore.List(ctx, filter, func(ctx context.Context, r *adjustment.Request, f interface{}) bool {
		filter, ok := f.(*types.AdjustmentRequestFilter)
		if !ok || filter == nil {
			return true
		}
		if filter.RecipientID != "" && r.RecipientID != filter.RecipientID {
			return false
		}
		if filter.ProviderID != "" && r.ProviderID != filter.ProviderID {
			return false
		}
		if filter.RequestType != "" && r.RequestType != filter.RequestType {
			return false
		}
		if filter.RequestStatus != "" && r.RequestStatus != filter.RequestStatus {
			return false
		}
		if filter.OnlyActive && !r.RequestStatus.IsActive() {
			return false
		}
		if filter.Date != nil && !types.SameDate(r.Date, *filter.Date) {
			return false
		}
		if filter.StartDate != nil && r.Date.Before(*filter.StartDate) {
			return false
		}
		if filter.EndDate != nil && r.Date.After(*filter.EndDate) {
			return false
		}
		return true
	}, func(i, j *adjustment.Request) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
}
