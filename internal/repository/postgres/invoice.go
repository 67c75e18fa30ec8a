package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/milkround/milkround/internal/domain/invoice"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/postgres"
	"github.com/milkround/milkround/internal/types"
	"github.com/samber/lo"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `
	id, invoice_number, recipient_id, provider_id, invoice_status,
	period_start, period_end, period_scoped, total_amount,
	gateway_order_id, paid_at,
	status, created_at, updated_at, created_by, updated_by
`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	INSERT INTO invoices (` + invoiceColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.InvoiceNumber,
		inv.RecipientID,
		inv.ProviderID,
		inv.InvoiceStatus,
		inv.PeriodStart,
		inv.PeriodEnd,
		inv.PeriodScoped,
		inv.TotalAmount,
		inv.GatewayOrderID,
		inv.PaidAt,
		inv.Status,
		inv.CreatedAt,
		inv.UpdatedAt,
		inv.CreatedBy,
		inv.UpdatedBy,
	)
	if isUniqueViolation(err) {
		// Partial unique index on (recipient, provider) pending invoices:
		// a concurrent aggregation won the race
		return ierr.WithError(err).
			WithHint("An open invoice already exists for this recipient and provider").
			WithReportableDetails(map[string]any{
				"recipient_id": inv.RecipientID,
				"provider_id":  inv.ProviderID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) GetWithLineItems(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := NewLineItemRepository(r.db, r.logger).ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	return inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	UPDATE invoices
	SET invoice_status = $1, period_start = $2, period_end = $3,
	    total_amount = $4, gateway_order_id = $5, paid_at = $6,
	    updated_at = $7, updated_by = $8
	WHERE id = $9`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		inv.InvoiceStatus,
		inv.PeriodStart,
		inv.PeriodEnd,
		inv.TotalAmount,
		inv.GatewayOrderID,
		inv.PaidAt,
		inv.UpdatedAt,
		inv.UpdatedBy,
		inv.ID,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice %s does not exist", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM invoices WHERE id = $1`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
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
		if len(filter.InvoiceStatus) > 0 {
			statuses := lo.Map(filter.InvoiceStatus, func(s types.InvoiceStatus, _ int) string {
				return s.String()
			})
			args = append(args, pqStringArray(statuses))
			query += ` AND invoice_status = ANY($` + itoa(len(args)) + `)`
		}
	}
	query += ` ORDER BY created_at DESC`

	var invoices []*invoice.Invoice
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) GetOpenInvoice(ctx context.Context, recipientID, providerID string) (*invoice.Invoice, error) {
	query := `
	SELECT ` + invoiceColumns + `
	FROM invoices
	WHERE recipient_id = $1 AND provider_id = $2 AND invoice_status = $3
	  AND period_scoped = FALSE
	ORDER BY created_at DESC
	LIMIT 1`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, recipientID, providerID, types.InvoiceStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("no open invoice").
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get open invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByPeriod(ctx context.Context, recipientID, providerID string, periodStart, periodEnd time.Time) (*invoice.Invoice, error) {
	query := `
	SELECT ` + invoiceColumns + `
	FROM invoices
	WHERE recipient_id = $1 AND provider_id = $2 AND period_scoped = TRUE
	  AND period_start = $3 AND period_end = $4
	LIMIT 1`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query,
		recipientID, providerID,
		types.TruncateToDate(periodStart), types.TruncateToDate(periodEnd),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("no invoice for period").
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice for period").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByGatewayOrderID(ctx context.Context, orderID string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE gateway_order_id = $1`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("no invoice for gateway order").
			WithHintf("No invoice linked to order %s", orderID).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice by gateway order").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

type lineItemRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewLineItemRepository(db *postgres.DB, logger *logger.Logger) invoice.LineItemRepository {
	return &lineItemRepository{db: db, logger: logger}
}

const lineItemColumns = `
	id, invoice_id, delivery_entry_id, date, variety, description,
	quantity, rate, amount, is_extra, is_leave, is_unsuccessful,
	status, created_at, updated_at, created_by, updated_by
`

func (r *lineItemRepository) CreateBulk(ctx context.Context, items []*invoice.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
	INSERT INTO invoice_line_items (` + lineItemColumns + `)
	VALUES (:id, :invoice_id, :delivery_entry_id, :date, :variety, :description,
	        :quantity, :rate, :amount, :is_extra, :is_leave, :is_unsuccessful,
	        :status, :created_at, :updated_at, :created_by, :updated_by)`

	for _, item := range items {
		if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, item); err != nil {
			if isUniqueViolation(err) {
				// (entry, variety) already billed; exactly-once backstop
				return ierr.WithError(err).
					WithHint("Delivery entry is already billed").
					WithReportableDetails(map[string]any{
						"delivery_entry_id": item.DeliveryEntryID,
						"variety":           item.Variety,
					}).
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("Failed to create invoice line items").
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func (r *lineItemRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.LineItem, error) {
	query := `
	SELECT ` + lineItemColumns + `
	FROM invoice_line_items
	WHERE invoice_id = $1
	ORDER BY date ASC, variety ASC`

	var items []*invoice.LineItem
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &items, query, invoiceID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoice line items").
			Mark(ierr.ErrDatabase)
	}
	return items, nil
}

func (r *lineItemRepository) DeleteByInvoice(ctx context.Context, invoiceID string) error {
	query := `DELETE FROM invoice_line_items WHERE invoice_id = $1`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, invoiceID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete invoice line items").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
