package dto

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/domain/delivery"
	"github.com/milkround/milkround/internal/types"
)

// RecordDeliveryRequest represents a fulfiller marking the outcome of
// one delivery
type RecordDeliveryRequest struct {
	RecipientID     string               `json:"recipient_id" binding:"required"`
	ProviderID      string               `json:"provider_id" binding:"required"`
	FulfillerID     *string              `json:"fulfiller_id,omitempty"`
	Date            string               `json:"date" binding:"required"`
	Kind            types.DeliveryKind   `json:"kind" binding:"required"`
	DeliveryStatus  types.DeliveryStatus `json:"delivery_status" binding:"required"`
	ExtraQuantities types.QuantityMap    `json:"extra_quantities,omitempty"`
	Remarks         *string              `json:"remarks,omitempty"`
}

// ToEntry converts the request to a delivery entry
func (r *RecordDeliveryRequest) ToEntry(ctx context.Context) (*delivery.Entry, error) {
	date, err := types.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	entry := &delivery.Entry{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_ENTRY),
		RecipientID:     r.RecipientID,
		ProviderID:      r.ProviderID,
		FulfillerID:     r.FulfillerID,
		Date:            date,
		Kind:            r.Kind,
		DeliveryStatus:  r.DeliveryStatus,
		ExtraQuantities: r.ExtraQuantities,
		Remarks:         r.Remarks,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeliveryEntryResponse represents a delivery entry in API responses
type DeliveryEntryResponse struct {
	ID              string               `json:"id"`
	RecipientID     string               `json:"recipient_id"`
	ProviderID      string               `json:"provider_id"`
	FulfillerID     *string              `json:"fulfiller_id,omitempty"`
	Date            string               `json:"date"`
	Kind            types.DeliveryKind   `json:"kind"`
	DeliveryStatus  types.DeliveryStatus `json:"delivery_status"`
	ExtraQuantities types.QuantityMap    `json:"extra_quantities,omitempty"`
	Remarks         *string              `json:"remarks,omitempty"`
	InvoiceID       *string              `json:"invoice_id,omitempty"`
	Paid            bool                 `json:"paid"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// NewDeliveryEntryResponse creates a response from a delivery entry
func NewDeliveryEntryResponse(e *delivery.Entry) *DeliveryEntryResponse {
	return &DeliveryEntryResponse{
		ID:              e.ID,
		RecipientID:     e.RecipientID,
		ProviderID:      e.ProviderID,
		FulfillerID:     e.FulfillerID,
		Date:            types.FormatDate(e.Date),
		Kind:            e.Kind,
		DeliveryStatus:  e.DeliveryStatus,
		ExtraQuantities: e.ExtraQuantities,
		Remarks:         e.Remarks,
		InvoiceID:       e.InvoiceID,
		Paid:            e.Paid,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// ListDeliveryEntriesResponse is the list envelope for delivery entries
type ListDeliveryEntriesResponse struct {
	Items []*DeliveryEntryResponse `json:"items"`
	Total int                      `json:"total"`
}

func NewListDeliveryEntriesResponse(entries []*delivery.Entry) *ListDeliveryEntriesResponse {
	items := make([]*DeliveryEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = NewDeliveryEntryResponse(e)
	}
	return &ListDeliveryEntriesResponse{Items: items, Total: len(items)}
}
