package types

import "time"

// DeliveryEntryFilter narrows delivery ledger queries
type DeliveryEntryFilter struct {
	// recipient_id filters entries for one recipient
	RecipientID string `json:"recipient_id,omitempty" form:"recipient_id"`
	// provider_id filters entries for one provider
	ProviderID string `json:"provider_id,omitempty" form:"provider_id"`
	// kind filters by regular vs extra entries
	Kind DeliveryKind `json:"kind,omitempty" form:"kind"`
	// delivery_status filters by fulfillment outcome
	DeliveryStatus DeliveryStatus `json:"delivery_status,omitempty" form:"delivery_status"`
	// paid filters on the paid flag when set
	Paid *bool `json:"paid,omitempty" form:"paid"`
	// unlinked selects only entries not yet attached to an invoice
	Unlinked bool `json:"unlinked,omitempty" form:"unlinked"`
	// start_date and end_date bound the entry date (inclusive)
	StartDate *time.Time `json:"start_date,omitempty" form:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" form:"end_date"`
}

// AdjustmentRequestFilter narrows adjustment request queries
type AdjustmentRequestFilter struct {
	RecipientID   string           `json:"recipient_id,omitempty" form:"recipient_id"`
	ProviderID    string           `json:"provider_id,omitempty" form:"provider_id"`
	RequestType   AdjustmentType   `json:"request_type,omitempty" form:"request_type"`
	RequestStatus AdjustmentStatus `json:"request_status,omitempty" form:"request_status"`
	Date          *time.Time       `json:"date,omitempty" form:"date"`
	OnlyActive    bool             `json:"only_active,omitempty" form:"only_active"`
	StartDate     *time.Time       `json:"start_date,omitempty" form:"start_date"`
	EndDate       *time.Time       `json:"end_date,omitempty" form:"end_date"`
}

// InvoiceFilter narrows invoice queries
type InvoiceFilter struct {
	RecipientID   string          `json:"recipient_id,omitempty" form:"recipient_id"`
	ProviderID    string          `json:"provider_id,omitempty" form:"provider_id"`
	InvoiceStatus []InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
	PeriodStart   *time.Time      `json:"period_start,omitempty" form:"period_start"`
	PeriodEnd     *time.Time      `json:"period_end,omitempty" form:"period_end"`
}

// PaymentFilter narrows payment queries
type PaymentFilter struct {
	PayerID       string        `json:"payer_id,omitempty" form:"payer_id"`
	InvoiceID     string        `json:"invoice_id,omitempty" form:"invoice_id"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty" form:"payment_status"`
}
