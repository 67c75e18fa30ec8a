package types

import (
	"database/sql/driver"
	"encoding/json"

	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// MilkVariety identifies the product a quantity or rate applies to
type MilkVariety string

const (
	MilkVarietyCow     MilkVariety = "cow"
	MilkVarietyBuffalo MilkVariety = "buffalo"
)

func (v MilkVariety) String() string {
	return string(v)
}

func (v MilkVariety) Validate() error {
	allowed := []MilkVariety{
		MilkVarietyCow,
		MilkVarietyBuffalo,
	}
	if !lo.Contains(allowed, v) {
		return ierr.NewError("invalid milk variety").
			WithHint("Please provide a valid milk variety").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// MilkVarieties lists every known variety in a stable order
func MilkVarieties() []MilkVariety {
	return []MilkVariety{MilkVarietyCow, MilkVarietyBuffalo}
}

// DisplayName returns the human label used in line item descriptions
func (v MilkVariety) DisplayName() string {
	switch v {
	case MilkVarietyCow:
		return "cow milk"
	case MilkVarietyBuffalo:
		return "buffalo milk"
	}
	return string(v)
}

// QuantityMap maps a milk variety to a decimal quantity (litres) or rate
// (currency per litre). Stored as jsonb; decimals are serialized as
// strings so values never round-trip through binary floating point.
type QuantityMap map[MilkVariety]decimal.Decimal

// Value implements driver.Valuer for jsonb storage
func (q QuantityMap) Value() (driver.Value, error) {
	if q == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(q)
}

// Scan implements sql.Scanner for jsonb storage
func (q *QuantityMap) Scan(value interface{}) error {
	if value == nil {
		*q = QuantityMap{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return ierr.NewError("unsupported scan type for quantity map").
			Mark(ierr.ErrDatabase)
	}

	return json.Unmarshal(data, q)
}

// Get returns the quantity for the given variety, zero if absent
func (q QuantityMap) Get(v MilkVariety) decimal.Decimal {
	if q == nil {
		return decimal.Zero
	}
	if qty, ok := q[v]; ok {
		return qty
	}
	return decimal.Zero
}

// IsZero reports whether every quantity in the map is zero or the map is empty
func (q QuantityMap) IsZero() bool {
	for _, qty := range q {
		if !qty.IsZero() {
			return false
		}
	}
	return true
}

// Validate rejects negative quantities; a negative quantity is an
// invariant breach, not a caller mistake
func (q QuantityMap) Validate() error {
	for v, qty := range q {
		if err := v.Validate(); err != nil {
			return err
		}
		if qty.IsNegative() {
			return ierr.NewError("negative quantity").
				WithHintf("Quantity for %s must not be negative", v).
				Mark(ierr.ErrIntegrity)
		}
	}
	return nil
}
