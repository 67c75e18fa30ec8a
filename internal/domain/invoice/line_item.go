package invoice

import (
	"time"

	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is one priced component of an invoice, tied to one delivery
// entry and one milk variety. Created only by the billing aggregator and
// deleted only as part of invoice rollback.
type LineItem struct {
	// Unique identifier for this line item
	ID string `db:"id" json:"id"`
	// The invoice_id links the item to its invoice
	InvoiceID string `db:"invoice_id" json:"invoice_id"`
	// The delivery_entry_id is the billed delivery entry; one entry never
	// yields more than one item per variety
	DeliveryEntryID string `db:"delivery_entry_id" json:"delivery_entry_id"`
	// The date is the delivery date the item bills
	Date time.Time `db:"date" json:"date"`
	// The variety identifies the billed product
	Variety types.MilkVariety `db:"variety" json:"variety"`
	// Human description, e.g. "Regular delivery - cow milk"
	Description string `db:"description" json:"description"`
	// The quantity in litres
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`
	// The rate per litre at aggregation time
	Rate decimal.Decimal `db:"rate" json:"rate"`
	// The amount equals quantity times rate, fixed-point decimal
	Amount decimal.Decimal `db:"amount" json:"amount"`
	// The is_extra flag marks items billing an extra delivery entry
	IsExtra bool `db:"is_extra" json:"is_extra"`
	// The is_leave flag marks items recording a skipped delivery
	IsLeave bool `db:"is_leave" json:"is_leave"`
	// The is_unsuccessful flag marks items recording a failed delivery
	IsUnsuccessful bool `db:"is_unsuccessful" json:"is_unsuccessful"`

	types.BaseModel
}

// Validate validates the invoice line item
func (li *LineItem) Validate() error {
	if li.InvoiceID == "" {
		return ierr.NewError("invoice_id is required").
			Mark(ierr.ErrValidation)
	}
	if li.DeliveryEntryID == "" {
		return ierr.NewError("delivery_entry_id is required").
			Mark(ierr.ErrValidation)
	}
	if err := li.Variety.Validate(); err != nil {
		return err
	}
	if li.Quantity.IsNegative() {
		return ierr.NewError("quantity must be non negative").
			Mark(ierr.ErrIntegrity)
	}
	if li.Rate.IsNegative() {
		return ierr.NewError("rate must be non negative").
			Mark(ierr.ErrIntegrity)
	}
	if !li.Amount.Equal(li.Quantity.Mul(li.Rate)) {
		return ierr.NewError("amount must equal quantity times rate").
			Mark(ierr.ErrIntegrity)
	}
	return nil
}
