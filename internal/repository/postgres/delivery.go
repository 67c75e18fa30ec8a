package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/milkround/milkround/internal/domain/delivery"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/postgres"
	"github.com/milkround/milkround/internal/types"
)

type deliveryRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDeliveryRepository(db *postgres.DB, logger *logger.Logger) delivery.Repository {
	return &deliveryRepository{db: db, logger: logger}
}

const deliveryColumns = `
	id, recipient_id, provider_id, fulfiller_id, date, kind, delivery_status,
	extra_quantities, remarks, invoice_id, paid,
	status, created_at, updated_at, created_by, updated_by
`

func (r *deliveryRepository) Upsert(ctx context.Context, entry *delivery.Entry) (*delivery.Entry, error) {
	query := `
	INSERT INTO delivery_entries (` + deliveryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (recipient_id, date, kind) DO UPDATE SET
		fulfiller_id = EXCLUDED.fulfiller_id,
		delivery_status = EXCLUDED.delivery_status,
		extra_quantities = EXCLUDED.extra_quantities,
		remarks = EXCLUDED.remarks,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by
	RETURNING ` + deliveryColumns

	q := r.db.GetQuerier(ctx)
	var out delivery.Entry
	err := q.GetContext(ctx, &out, query,
		entry.ID,
		entry.RecipientID,
		entry.ProviderID,
		entry.FulfillerID,
		entry.Date,
		entry.Kind,
		entry.DeliveryStatus,
		entry.ExtraQuantities,
		entry.Remarks,
		entry.InvoiceID,
		entry.Paid,
		entry.Status,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.CreatedBy,
		entry.UpdatedBy,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to record delivery outcome").
			Mark(ierr.ErrDatabase)
	}
	return &out, nil
}

func (r *deliveryRepository) Get(ctx context.Context, id string) (*delivery.Entry, error) {
	query := `SELECT ` + deliveryColumns + ` FROM delivery_entries WHERE id = $1`

	var entry delivery.Entry
	err := r.db.GetQuerier(ctx).GetContext(ctx, &entry, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("delivery entry not found").
			WithHintf("Delivery entry %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get delivery entry").
			Mark(ierr.ErrDatabase)
	}
	return &entry, nil
}

func (r *deliveryRepository) GetByKey(ctx context.Context, recipientID string, date time.Time, kind types.DeliveryKind) (*delivery.Entry, error) {
	query := `
	SELECT ` + deliveryColumns + `
	FROM delivery_entries
	WHERE recipient_id = $1 AND date = $2 AND kind = $3`

	var entry delivery.Entry
	err := r.db.GetQuerier(ctx).GetContext(ctx, &entry, query, recipientID, types.TruncateToDate(date), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("delivery entry not found").
			WithHintf("No %s entry for recipient %s on %s", kind, recipientID, types.FormatDate(date)).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get delivery entry").
			Mark(ierr.ErrDatabase)
	}
	return &entry, nil
}

func (r *deliveryRepository) List(ctx context.Context, filter *types.DeliveryEntryFilter) ([]*delivery.Entry, error) {
	query := `SELECT ` + deliveryColumns + ` FROM delivery_entries WHERE 1=1`
	args := []interface{}{}

	if filter != nil {
		if filter.RecipientID != "" {
			args = append(args, filter.RecipientID)
			query += ` AND recipient_id = $` + itoa(len(args))
		}
		if filter.ProviderID != "" {
			args = append(args, filter.ProviderID)
			query += ` AND provider_id = $` + itoa(len(args))
		}
		if filter.Kind != "" {
			args = append(args, filter.Kind)
			query += ` AND kind = $` + itoa(len(args))
		}
		if filter.DeliveryStatus != "" {
			args = append(args, filter.DeliveryStatus)
			query += ` AND delivery_status = $` + itoa(len(args))
		}
		if filter.Paid != nil {
			args = append(args, *filter.Paid)
			query += ` AND paid = $` + itoa(len(args))
		}
		if filter.Unlinked {
			query += ` AND invoice_id IS NULL`
		}
		if filter.StartDate != nil {
			args = append(args, types.TruncateToDate(*filter.StartDate))
			query += ` AND date >= $` + itoa(len(args))
		}
		if filter.EndDate != nil {
			args = append(args, types.TruncateToDate(*filter.EndDate))
			query += ` AND date <= $` + itoa(len(args))
		}
	}
	query += ` ORDER BY date ASC, kind ASC`

	var entries []*delivery.Entry
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list delivery entries").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *deliveryRepository) ListUnbilled(ctx context.Context, recipientID, providerID string, unpaidOnly bool) ([]*delivery.Entry, error) {
	query := `
	SELECT ` + deliveryColumns + `
	FROM delivery_entries
	WHERE recipient_id = $1
	  AND provider_id = $2
	  AND delivery_status = $3
	  AND invoice_id IS NULL`
	args := []interface{}{recipientID, providerID, types.DeliveryStatusDelivered}

	if unpaidOnly {
		query += ` AND paid = FALSE`
	}
	query += ` ORDER BY date ASC, kind ASC`

	var entries []*delivery.Entry
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list unbilled delivery entries").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

// ListByInvoice unions the two link paths: entries carrying the direct
// invoice reference and entries referenced by the invoice's line items
// (passed in as entryIDs). Either relationship may exist depending on
// which code path created the link.
func (r *deliveryRepository) ListByInvoice(ctx context.Context, invoiceID string, entryIDs []string) ([]*delivery.Entry, error) {
	query := `
	SELECT ` + deliveryColumns + `
	FROM delivery_entries
	WHERE invoice_id = $1 OR id = ANY($2)
	ORDER BY date ASC, kind ASC`

	var entries []*delivery.Entry
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query, invoiceID, pq.Array(entryIDs))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list delivery entries for invoice").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *deliveryRepository) LinkToInvoice(ctx context.Context, entryIDs []string, invoiceID string) error {
	if len(entryIDs) == 0 {
		return nil
	}

	query := `
	UPDATE delivery_entries
	SET invoice_id = $1, updated_at = NOW(), updated_by = $2
	WHERE id = ANY($3)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, invoiceID, types.GetUserID(ctx), pq.Array(entryIDs))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to link delivery entries to invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *deliveryRepository) UnlinkFromInvoice(ctx context.Context, invoiceID string) error {
	query := `
	UPDATE delivery_entries
	SET invoice_id = NULL, updated_at = NOW(), updated_by = $1
	WHERE invoice_id = $2`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, types.GetUserID(ctx), invoiceID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to unlink delivery entries from invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *deliveryRepository) MarkPaid(ctx context.Context, entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}

	query := `
	UPDATE delivery_entries
	SET paid = TRUE, updated_at = NOW(), updated_by = $1
	WHERE id = ANY($2)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, types.GetUserID(ctx), pq.Array(entryIDs))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to mark delivery entries paid").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
