package service

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/api/dto"
	"github.com/milkround/milkround/internal/domain/delivery"
	"github.com/milkround/milkround/internal/domain/invoice"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
)

// BillingService folds delivered, unbilled ledger entries into invoices.
// Both entry points run inside one transaction under a per
// (recipient, provider) advisory lock, so concurrent calls can neither
// create two open invoices nor bill the same entry twice. The partial
// unique index on pending invoices backstops the lock.
type BillingService interface {
	// GetOrCreateOpenInvoice folds the recipient's unbilled entries into
	// their single open invoice, creating it if needed. Safe to call
	// repeatedly; already-linked entries are never picked up again.
	GetOrCreateOpenInvoice(ctx context.Context, recipientID string) (*dto.InvoiceResponse, error)

	// AggregateForPeriod creates a fresh invoice covering exactly the
	// given closed date span. A period already invoiced is skipped and
	// the existing invoice returned.
	AggregateForPeriod(ctx context.Context, recipientID string, periodStart, periodEnd time.Time) (*dto.InvoiceResponse, error)

	// GetInvoice retrieves an invoice with its line items
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)

	// ListInvoices retrieves invoices matching the filter
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

// billingLockKey scopes the advisory lock to one billing relationship
func billingLockKey(recipientID, providerID string) string {
	return "billing:" + recipientID + ":" + providerID
}

func (s *billingService) GetOrCreateOpenInvoice(ctx context.Context, recipientID string) (*dto.InvoiceResponse, error) {
	providerID, err := s.ProviderDirectory.GetAssignedProvider(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	var result *invoice.Invoice
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.AcquireLock(ctx, billingLockKey(recipientID, providerID)); err != nil {
			return err
		}
		inv, err := s.aggregateOpen(ctx, recipientID, providerID)
		if err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(result), nil
}

// aggregateOpen runs inside the caller's transaction and lock
func (s *billingService) aggregateOpen(ctx context.Context, recipientID, providerID string) (*invoice.Invoice, error) {
	rates, err := s.ProviderDirectory.GetRates(ctx, providerID)
	if err != nil {
		return nil, err
	}

	open, err := s.InvoiceRepo.GetOpenInvoice(ctx, recipientID, providerID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	entries, err := s.DeliveryRepo.ListUnbilled(ctx, recipientID, providerID, true)
	if err != nil {
		return nil, err
	}

	if open == nil && len(entries) == 0 {
		return nil, ierr.NewError("nothing to bill").
			WithHint("No open invoice and no unbilled deliveries exist").
			Mark(ierr.ErrNotFound)
	}

	if open == nil {
		open = s.newInvoice(ctx, recipientID, providerID, spanOf(entries), false)
		if err := s.InvoiceRepo.Create(ctx, open); err != nil {
			return nil, err
		}
	}

	if len(entries) > 0 {
		if err := s.billEntries(ctx, open, entries, rates); err != nil {
			return nil, err
		}
	}

	return s.recompute(ctx, open)
}

func (s *billingService) AggregateForPeriod(ctx context.Context, recipientID string, periodStart, periodEnd time.Time) (*dto.InvoiceResponse, error) {
	if periodEnd.Before(periodStart) {
		return nil, ierr.NewError("invalid period").
			WithHint("Period end must not precede period start").
			Mark(ierr.ErrValidation)
	}

	providerID, err := s.ProviderDirectory.GetAssignedProvider(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	var result *invoice.Invoice
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.AcquireLock(ctx, billingLockKey(recipientID, providerID)); err != nil {
			return err
		}

		existing, err := s.InvoiceRepo.GetByPeriod(ctx, recipientID, providerID, periodStart, periodEnd)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if existing != nil {
			s.Logger.Infow("period already invoiced, skipping",
				"recipient_id", recipientID,
				"invoice_id", existing.ID,
			)
			loaded, err := s.InvoiceRepo.GetWithLineItems(ctx, existing.ID)
			if err != nil {
				return err
			}
			result = loaded
			return nil
		}

		rates, err := s.ProviderDirectory.GetRates(ctx, providerID)
		if err != nil {
			return err
		}

		entries, err := s.DeliveryRepo.List(ctx, &types.DeliveryEntryFilter{
			RecipientID:    recipientID,
			ProviderID:     providerID,
			DeliveryStatus: types.DeliveryStatusDelivered,
			Unlinked:       true,
			StartDate:      &periodStart,
			EndDate:        &periodEnd,
		})
		if err != nil {
			return err
		}
		entries = dedupePerDate(entries)

		if len(entries) == 0 {
			return ierr.NewError("nothing to bill").
				WithHint("No unbilled deliveries exist in the period").
				Mark(ierr.ErrNotFound)
		}

		inv := s.newInvoice(ctx, recipientID, providerID, [2]time.Time{periodStart, periodEnd}, true)
		if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		if err := s.billEntries(ctx, inv, entries, rates); err != nil {
			return err
		}

		inv, err = s.recompute(ctx, inv)
		if err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(result), nil
}

// newInvoice builds a pending invoice seeded with the given date span
func (s *billingService) newInvoice(ctx context.Context, recipientID, providerID string, span [2]time.Time, periodScoped bool) *invoice.Invoice {
	return &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		RecipientID:   recipientID,
		ProviderID:    providerID,
		InvoiceStatus: types.InvoiceStatusPending,
		PeriodStart:   span[0],
		PeriodEnd:     span[1],
		PeriodScoped:  periodScoped,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// billEntries prices the entries, writes their line items and links the
// entries to the invoice
func (s *billingService) billEntries(ctx context.Context, inv *invoice.Invoice, entries []*delivery.Entry, rates types.QuantityMap) error {
	standing, err := s.RecipientProfile.GetStandingQuantities(ctx, inv.RecipientID)
	if err != nil {
		return err
	}

	var items []*invoice.LineItem
	entryIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		entryIDs = append(entryIDs, e.ID)

		quantities := standing
		if e.Kind == types.DeliveryKindExtra {
			quantities = e.ExtraQuantities
		}

		for _, v := range types.MilkVarieties() {
			qty := quantities.Get(v)
			if qty.IsZero() {
				continue
			}
			rate := rates.Get(v)
			item := &invoice.LineItem{
				ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
				InvoiceID:       inv.ID,
				DeliveryEntryID: e.ID,
				Date:            e.Date,
				Variety:         v,
				Description:     describeLineItem(e.Kind, v),
				Quantity:        qty,
				Rate:            rate,
				Amount:          qty.Mul(rate),
				IsExtra:         e.Kind == types.DeliveryKindExtra,
				BaseModel:       types.GetDefaultBaseModel(ctx),
			}
			if err := item.Validate(); err != nil {
				return err
			}
			items = append(items, item)
		}
	}

	if len(items) > 0 {
		if err := s.LineItemRepo.CreateBulk(ctx, items); err != nil {
			return err
		}
	}
	if err := s.DeliveryRepo.LinkToInvoice(ctx, entryIDs, inv.ID); err != nil {
		return err
	}

	s.Logger.Infow("billed delivery entries",
		"invoice_id", inv.ID,
		"entries", len(entryIDs),
		"line_items", len(items),
	)
	return nil
}

// recompute rebuilds the invoice total and span from the full line item
// set, persists it and returns the invoice with items loaded. A
// period-scoped invoice keeps its requested span so an identical later
// run finds it and skips.
func (s *billingService) recompute(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	items, err := s.LineItemRepo.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}

	periodStart, periodEnd := inv.PeriodStart, inv.PeriodEnd
	inv.RecomputeDerived(items)
	if inv.PeriodScoped {
		inv.PeriodStart, inv.PeriodEnd = periodStart, periodEnd
	}
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	inv.LineItems = items
	return inv, nil
}

func (s *billingService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *billingService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = &types.InvoiceFilter{}
	}
	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListInvoicesResponse(invoices), nil
}

// spanOf seeds a new invoice's span from the min/max entry dates
func spanOf(entries []*delivery.Entry) [2]time.Time {
	if len(entries) == 0 {
		today := types.TruncateToDate(time.Now().UTC())
		return [2]time.Time{today, today}
	}
	start, end := entries[0].Date, entries[0].Date
	for _, e := range entries[1:] {
		if e.Date.Before(start) {
			start = e.Date
		}
		if e.Date.After(end) {
			end = e.Date
		}
	}
	return [2]time.Time{start, end}
}

// dedupePerDate keeps at most one regular and one extra entry per date
func dedupePerDate(entries []*delivery.Entry) []*delivery.Entry {
	type key struct {
		date string
		kind types.DeliveryKind
	}
	seen := make(map[key]bool, len(entries))
	out := make([]*delivery.Entry, 0, len(entries))
	for _, e := range entries {
		k := key{date: types.FormatDate(e.Date), kind: e.Kind}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

func describeLineItem(kind types.DeliveryKind, v types.MilkVariety) string {
	if kind == types.DeliveryKindExtra {
		return "Extra delivery - " + v.DisplayName()
	}
	return "Regular delivery - " + v.DisplayName()
}

var _ BillingService = (*billingService)(nil)
