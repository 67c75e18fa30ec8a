package dto

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/domain/adjustment"
	"github.com/milkround/milkround/internal/types"
)

// SubmitAdjustmentRequest represents a recipient asking for a change on
// one date
type SubmitAdjustmentRequest struct {
	RecipientID string               `json:"recipient_id" binding:"required"`
	Date        string               `json:"date" binding:"required"`
	RequestType types.AdjustmentType `json:"request_type" binding:"required"`
	Quantities  types.QuantityMap    `json:"quantities,omitempty"`
	Reason      *string              `json:"reason,omitempty"`
}

// ToRequest converts the submission to an adjustment request. The
// provider is resolved by the workflow, not the caller.
func (r *SubmitAdjustmentRequest) ToRequest(ctx context.Context) (*adjustment.Request, error) {
	date, err := types.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	req := &adjustment.Request{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ADJUSTMENT_REQUEST),
		RecipientID:   r.RecipientID,
		Date:          date,
		RequestType:   r.RequestType,
		Quantities:    r.Quantities,
		Reason:        r.Reason,
		RequestStatus: types.AdjustmentStatusPending,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// RejectAdjustmentRequest carries the provider's rejection reason
type RejectAdjustmentRequest struct {
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// AdjustmentRequestResponse represents an adjustment request in API
// responses
type AdjustmentRequestResponse struct {
	ID              string                 `json:"id"`
	RecipientID     string                 `json:"recipient_id"`
	ProviderID      string                 `json:"provider_id"`
	Date            string                 `json:"date"`
	RequestType     types.AdjustmentType   `json:"request_type"`
	Quantities      types.QuantityMap      `json:"quantities,omitempty"`
	Reason          *string                `json:"reason,omitempty"`
	RequestStatus   types.AdjustmentStatus `json:"request_status"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	FinalizedAt     *time.Time             `json:"finalized_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// NewAdjustmentRequestResponse creates a response from an adjustment
// request
func NewAdjustmentRequestResponse(a *adjustment.Request) *AdjustmentRequestResponse {
	return &AdjustmentRequestResponse{
		ID:              a.ID,
		RecipientID:     a.RecipientID,
		ProviderID:      a.ProviderID,
		Date:            types.FormatDate(a.Date),
		RequestType:     a.RequestType,
		Quantities:      a.Quantities,
		Reason:          a.Reason,
		RequestStatus:   a.RequestStatus,
		RejectionReason: a.RejectionReason,
		FinalizedAt:     a.FinalizedAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ListAdjustmentRequestsResponse is the list envelope for adjustment
// requests
type ListAdjustmentRequestsResponse struct {
	Items []*AdjustmentRequestResponse `json:"items"`
	Total int                          `json:"total"`
}

func NewListAdjustmentRequestsResponse(requests []*adjustment.Request) *ListAdjustmentRequestsResponse {
	items := make([]*AdjustmentRequestResponse, len(requests))
	for i, a := range requests {
		items[i] = NewAdjustmentRequestResponse(a)
	}
	return &ListAdjustmentRequestsResponse{Items: items, Total: len(items)}
}
