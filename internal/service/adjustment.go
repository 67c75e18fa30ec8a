package service

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/api/dto"
	"github.com/milkround/milkround/internal/domain/adjustment"
	"github.com/milkround/milkround/internal/domain/delivery"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
)

// AdjustmentService runs the request/approval workflow for per-date
// changes. Leave requests are auto-approved at submission and write
// straight through to the delivery ledger; extra_milk and
// quantity_adjustment wait for the provider and never touch the ledger
// themselves.
type AdjustmentService interface {
	// Submit files a new request; at most one active request may exist
	// per (recipient, date, type)
	Submit(ctx context.Context, req *dto.SubmitAdjustmentRequest) (*dto.AdjustmentRequestResponse, error)

	// Approve finalizes a pending request as approved
	Approve(ctx context.Context, id string) (*dto.AdjustmentRequestResponse, error)

	// Reject finalizes a pending request as rejected
	Reject(ctx context.Context, id string, req *dto.RejectAdjustmentRequest) (*dto.AdjustmentRequestResponse, error)

	// GetRequest retrieves a request by ID
	GetRequest(ctx context.Context, id string) (*dto.AdjustmentRequestResponse, error)

	// ListRequests retrieves requests matching the filter
	ListRequests(ctx context.Context, filter *types.AdjustmentRequestFilter) (*dto.ListAdjustmentRequestsResponse, error)
}

type adjustmentService struct {
	ServiceParams
}

func NewAdjustmentService(params ServiceParams) AdjustmentService {
	return &adjustmentService{ServiceParams: params}
}

func (s *adjustmentService) Submit(ctx context.Context, req *dto.SubmitAdjustmentRequest) (*dto.AdjustmentRequestResponse, error) {
	request, err := req.ToRequest(ctx)
	if err != nil {
		return nil, err
	}

	providerID, err := s.ProviderDirectory.GetAssignedProvider(ctx, request.RecipientID)
	if err != nil {
		return nil, err
	}
	request.ProviderID = providerID

	active, err := s.AdjustmentRepo.GetActive(ctx, request.RecipientID, request.Date, request.RequestType)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if active != nil {
		return nil, ierr.NewError("duplicate adjustment request").
			WithHint("An active request already exists for this date and type").
			WithReportableDetails(map[string]any{
				"request_id":     active.ID,
				"request_status": active.RequestStatus,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	if request.RequestType == types.AdjustmentTypeLeave {
		return s.submitLeave(ctx, request)
	}

	if err := s.AdjustmentRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.Logger.Infow("submitted adjustment request",
		"request_id", request.ID,
		"recipient_id", request.RecipientID,
		"request_type", request.RequestType,
		"date", types.FormatDate(request.Date),
	)
	return dto.NewAdjustmentRequestResponse(request), nil
}

// submitLeave approves the request immediately and records the skipped
// day on the ledger inside one transaction. A billed entry for the date
// blocks the leave; the outcome is already settled.
func (s *adjustmentService) submitLeave(ctx context.Context, request *adjustment.Request) (*dto.AdjustmentRequestResponse, error) {
	now := time.Now().UTC()
	request.RequestStatus = types.AdjustmentStatusApproved
	request.FinalizedAt = &now

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.DeliveryRepo.GetByKey(ctx, request.RecipientID, request.Date, types.DeliveryKindRegular)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if existing != nil && (existing.Paid || existing.InvoiceID != nil) {
			return ierr.NewError("delivery entry is already billed").
				WithHint("The delivery for this date has already been billed").
				Mark(ierr.ErrInvalidOperation)
		}

		if err := s.AdjustmentRepo.Create(ctx, request); err != nil {
			return err
		}

		entry := &delivery.Entry{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_ENTRY),
			RecipientID:    request.RecipientID,
			ProviderID:     request.ProviderID,
			Date:           request.Date,
			Kind:           types.DeliveryKindRegular,
			DeliveryStatus: types.DeliveryStatusLeave,
			Remarks:        request.Reason,
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
		_, err = s.DeliveryRepo.Upsert(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("auto-approved leave request",
		"request_id", request.ID,
		"recipient_id", request.RecipientID,
		"date", types.FormatDate(request.Date),
	)
	return dto.NewAdjustmentRequestResponse(request), nil
}

func (s *adjustmentService) Approve(ctx context.Context, id string) (*dto.AdjustmentRequestResponse, error) {
	request, err := s.AdjustmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.IsFinalized() {
		return nil, ierr.NewError("adjustment request is already finalized").
			WithHint("Only pending requests can be approved").
			WithReportableDetails(map[string]any{
				"request_status": request.RequestStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	request.RequestStatus = types.AdjustmentStatusApproved
	request.FinalizedAt = &now
	if err := s.AdjustmentRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.Logger.Infow("approved adjustment request",
		"request_id", request.ID,
		"request_type", request.RequestType,
	)
	s.notifyRecipient(ctx, request.RecipientID, "Request approved",
		"Your "+request.RequestType.String()+" request for "+types.FormatDate(request.Date)+" was approved")
	return dto.NewAdjustmentRequestResponse(request), nil
}

func (s *adjustmentService) Reject(ctx context.Context, id string, req *dto.RejectAdjustmentRequest) (*dto.AdjustmentRequestResponse, error) {
	request, err := s.AdjustmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.IsFinalized() {
		return nil, ierr.NewError("adjustment request is already finalized").
			WithHint("Only pending requests can be rejected").
			WithReportableDetails(map[string]any{
				"request_status": request.RequestStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	request.RequestStatus = types.AdjustmentStatusRejected
	request.FinalizedAt = &now
	if req != nil {
		request.RejectionReason = req.RejectionReason
	}
	if err := s.AdjustmentRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.Logger.Infow("rejected adjustment request",
		"request_id", request.ID,
		"request_type", request.RequestType,
	)
	s.notifyRecipient(ctx, request.RecipientID, "Request rejected",
		"Your "+request.RequestType.String()+" request for "+types.FormatDate(request.Date)+" was rejected")
	return dto.NewAdjustmentRequestResponse(request), nil
}

func (s *adjustmentService) GetRequest(ctx context.Context, id string) (*dto.AdjustmentRequestResponse, error) {
	request, err := s.AdjustmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewAdjustmentRequestResponse(request), nil
}

func (s *adjustmentService) ListRequests(ctx context.Context, filter *types.AdjustmentRequestFilter) (*dto.ListAdjustmentRequestsResponse, error) {
	if filter == nil {
		filter = &types.AdjustmentRequestFilter{}
	}
	requests, err := s.AdjustmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListAdjustmentRequestsResponse(requests), nil
}

func (s *adjustmentService) notifyRecipient(ctx context.Context, recipientID, title, body string) {
	token, err := s.RecipientProfile.GetNotificationToken(ctx, recipientID)
	if err != nil {
		s.Logger.Debugw("skipping notification, no token", "recipient_id", recipientID, "error", err)
		return
	}
	// Detached from the request: delivery retries must not hold the caller
	go s.Notifier.Notify(context.WithoutCancel(ctx), token, title, body)
}

var _ AdjustmentService = (*adjustmentService)(nil)
