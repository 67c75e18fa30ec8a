package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/milkround/milkround/internal/domain/adjustment"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/postgres"
	"github.com/milkround/milkround/internal/types"
)

type adjustmentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAdjustmentRepository(db *postgres.DB, logger *logger.Logger) adjustment.Repository {
	return &adjustmentRepository{db: db, logger: logger}
}

const adjustmentColumns = `
	id, recipient_id, provider_id, date, request_type, quantities, reason,
	request_status, rejection_reason, finalized_at,
	status, created_at, updated_at, created_by, updated_by
`

func (r *adjustmentRepository) Create(ctx context.Context, request *adjustment.Request) error {
	query := `
	INSERT INTO adjustment_requests (` + adjustmentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		request.ID,
		request.RecipientID,
		request.ProviderID,
		request.Date,
		request.RequestType,
		request.Quantities,
		request.Reason,
		request.RequestStatus,
		request.RejectionReason,
		request.FinalizedAt,
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
		request.CreatedBy,
		request.UpdatedBy,
	)
	if isUniqueViolation(err) {
		return ierr.WithError(err).
			WithHint("An active request of this type already exists for the date").
			WithReportableDetails(map[string]any{
				"recipient_id": request.RecipientID,
				"date":         types.FormatDate(request.Date),
				"request_type": request.RequestType,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create adjustment request").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *adjustmentRepository) Get(ctx context.Context, id string) (*adjustment.Request, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM adjustment_requests WHERE id = $1`

	var request adjustment.Request
	err := r.db.GetQuerier(ctx).GetContext(ctx, &request, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("adjustment request not found").
			WithHintf("Adjustment request %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get adjustment request").
			Mark(ierr.ErrDatabase)
	}
	return &request, nil
}

func (r *adjustmentRepository) Update(ctx context.Context, request *adjustment.Request) error {
	query := `
	UPDATE adjustment_requests
	SET request_status = $1, rejection_reason = $2, finalized_at = $3,
	    updated_at = $4, updated_by = $5
	WHERE id = $6`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		request.RequestStatus,
		request.RejectionReason,
		request.FinalizedAt,
		request.UpdatedAt,
		request.UpdatedBy,
		request.ID,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update adjustment request").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ierr.NewError("adjustment request not found").
			WithHintf("Adjustment request %s does not exist", request.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *adjustmentRepository) GetActive(ctx context.Context, recipientID string, date time.Time, requestType types.AdjustmentType) (*adjustment.Request, error) {
	query := `
	SELECT ` + adjustmentColumns + `
	FROM adjustment_requests
	WHERE recipient_id = $1 AND date = $2 AND request_type = $3
	  AND request_status IN ($4, $5)`

	var request adjustment.Request
	err := r.db.GetQuerier(ctx).GetContext(ctx, &request, query,
		recipientID,
		types.TruncateToDate(date),
		requestType,
		types.AdjustmentStatusPending,
		types.AdjustmentStatusApproved,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("no active adjustment request").
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get active adjustment request").
			Mark(ierr.ErrDatabase)
	}
	return &request, nil
}

func (r *adjustmentRepository) List(ctx context.Context, filter *types.AdjustmentRequestFilter) ([]*adjustment.Request, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM adjustment_requests WHERE 1=1`
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
		if filter.RequestType != "" {
			args = append(args, filter.RequestType)
			query += ` AND request_type = $` + itoa(len(args))
		}
		if filter.RequestStatus != "" {
			args = append(args, filter.RequestStatus)
			query += ` AND request_status = $` + itoa(len(args))
		}
		if filter.Date != nil {
			args = append(args, types.TruncateToDate(*filter.Date))
			query += ` AND date = $` + itoa(len(args))
		}
		if filter.OnlyActive {
			query += ` AND request_status IN ('pending', 'approved')`
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
	query += ` ORDER BY date DESC, created_at DESC`

	var requests []*adjustment.Request
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list adjustment requests").
			Mark(ierr.ErrDatabase)
	}
	return requests, nil
}
