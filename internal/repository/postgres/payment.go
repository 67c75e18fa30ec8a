package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/milkround/milkround/internal/domain/payment"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/postgres"
	"github.com/milkround/milkround/internal/types"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

const paymentColumns = `
	id, payer_id, gateway_order_id, gateway_payment_id, signature,
	destination_type, invoice_id, amount, currency, payment_status,
	error_message, captured_at, failed_at,
	status, created_at, updated_at, created_by, updated_by
`

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
	INSERT INTO payments (` + paymentColumns + `)
	VALUES (:id, :payer_id, :gateway_order_id, :gateway_payment_id, :signature,
	        :destination_type, :invoice_id, :amount, :currency, :payment_status,
	        :error_message, :captured_at, :failed_at,
	        :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p)
	if isUniqueViolation(err) {
		return ierr.WithError(err).
			WithHint("A payment already exists for this gateway order").
			Mark(ierr.ErrAlreadyExists)
	}
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var p payment.Payment
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("payment not found").
			WithHintf("Payment %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := `
	UPDATE payments
	SET gateway_payment_id = $1, signature = $2, invoice_id = $3,
	    payment_status = $4, error_message = $5, captured_at = $6,
	    failed_at = $7, updated_at = $8, updated_by = $9
	WHERE id = $10`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		p.GatewayPaymentID,
		p.Signature,
		p.InvoiceID,
		p.PaymentStatus,
		p.ErrorMessage,
		p.CapturedAt,
		p.FailedAt,
		p.UpdatedAt,
		p.UpdatedBy,
		p.ID,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ierr.NewError("payment not found").
			WithHintf("Payment %s does not exist", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *paymentRepository) GetByGatewayOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_order_id = $1`

	var p payment.Payment
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("payment not found").
			WithHintf("No payment for gateway order %s", orderID).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment by gateway order").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	args := []interface{}{}

	if filter != nil {
		if filter.PayerID != "" {
			args = append(args, filter.PayerID)
			query += ` AND payer_id = $` + itoa(len(args))
		}
		if filter.InvoiceID != "" {
			args = append(args, filter.InvoiceID)
			query += ` AND invoice_id = $` + itoa(len(args))
		}
		if filter.PaymentStatus != "" {
			args = append(args, filter.PaymentStatus)
			query += ` AND payment_status = $` + itoa(len(args))
		}
	}
	query += ` ORDER BY created_at DESC`

	var payments []*payment.Payment
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}
