package service

import (
	"context"

	"github.com/milkround/milkround/internal/api/dto"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
)

// LedgerService owns the append-only record of delivery outcomes. One
// entry per (recipient, date, kind); recording the same key twice
// overwrites the outcome in place.
type LedgerService interface {
	// RecordOutcome upserts the delivery entry for the request's
	// (recipient, date, kind) key
	RecordOutcome(ctx context.Context, req *dto.RecordDeliveryRequest) (*dto.DeliveryEntryResponse, error)

	// GetEntry retrieves a delivery entry by ID
	GetEntry(ctx context.Context, id string) (*dto.DeliveryEntryResponse, error)

	// ListEntries retrieves entries matching the filter
	ListEntries(ctx context.Context, filter *types.DeliveryEntryFilter) (*dto.ListDeliveryEntriesResponse, error)
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{ServiceParams: params}
}

func (s *ledgerService) RecordOutcome(ctx context.Context, req *dto.RecordDeliveryRequest) (*dto.DeliveryEntryResponse, error) {
	entry, err := req.ToEntry(ctx)
	if err != nil {
		return nil, err
	}

	// A paid or invoiced entry is settled history; its outcome can no
	// longer change.
	existing, err := s.DeliveryRepo.GetByKey(ctx, entry.RecipientID, entry.Date, entry.Kind)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		if existing.Paid || existing.InvoiceID != nil {
			return nil, ierr.NewError("delivery entry is already billed").
				WithHint("A billed delivery outcome cannot be changed").
				WithReportableDetails(map[string]any{
					"entry_id": existing.ID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
	}

	saved, err := s.DeliveryRepo.Upsert(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded delivery outcome",
		"entry_id", saved.ID,
		"recipient_id", saved.RecipientID,
		"date", types.FormatDate(saved.Date),
		"kind", saved.Kind,
		"delivery_status", saved.DeliveryStatus,
	)
	return dto.NewDeliveryEntryResponse(saved), nil
}

func (s *ledgerService) GetEntry(ctx context.Context, id string) (*dto.DeliveryEntryResponse, error) {
	entry, err := s.DeliveryRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewDeliveryEntryResponse(entry), nil
}

func (s *ledgerService) ListEntries(ctx context.Context, filter *types.DeliveryEntryFilter) (*dto.ListDeliveryEntriesResponse, error) {
	if filter == nil {
		filter = &types.DeliveryEntryFilter{}
	}
	entries, err := s.DeliveryRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListDeliveryEntriesResponse(entries), nil
}

var _ LedgerService = (*ledgerService)(nil)
