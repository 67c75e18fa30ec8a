package service

import (
	"testing"
	"time"

	"github.com/milkround/milkround/internal/domain/delivery"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/testutil"
	"github.com/milkround/milkround/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingService(newTestServiceParams(&s.BaseServiceTestSuite))

	s.GetDirectory().Assign("rec_1", "prov_1")
	s.GetDirectory().SetRates("prov_1", types.QuantityMap{
		types.MilkVarietyCow:     decimal.NewFromInt(50),
		types.MilkVarietyBuffalo: decimal.NewFromInt(60),
	})
	s.GetProfile().SetStandingQuantities("rec_1", types.QuantityMap{
		types.MilkVarietyCow:     decimal.NewFromInt(2),
		types.MilkVarietyBuffalo: decimal.Zero,
	})
}

func (s *BillingServiceSuite) seedDelivered(day int, kind types.DeliveryKind, extras types.QuantityMap) *delivery.Entry {
	entry := &delivery.Entry{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_ENTRY),
		RecipientID:     "rec_1",
		ProviderID:      "prov_1",
		Date:            time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
		Kind:            kind,
		DeliveryStatus:  types.DeliveryStatusDelivered,
		ExtraQuantities: extras,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	saved, err := s.GetStores().DeliveryRepo.Upsert(s.GetContext(), entry)
	s.Require().NoError(err)
	return saved
}

func (s *BillingServiceSuite) TestNothingToBill() {
	_, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceSuite) TestNoProvider() {
	_, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_nobody")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceSuite) TestRegularEntryBilledAtStandingQuantity() {
	s.seedDelivered(1, types.DeliveryKindRegular, nil)

	inv, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
	s.Len(inv.LineItems, 1)

	item := inv.LineItems[0]
	s.Equal(types.MilkVarietyCow, item.Variety)
	s.True(item.Quantity.Equal(decimal.NewFromInt(2)))
	s.True(item.Rate.Equal(decimal.NewFromInt(50)))
	s.True(item.Amount.Equal(decimal.NewFromInt(100)))
	s.False(item.IsExtra)
	s.Equal("Regular delivery - cow milk", item.Description)
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(100)))
}

func (s *BillingServiceSuite) TestIdempotentAggregation() {
	s.seedDelivered(1, types.DeliveryKindRegular, nil)

	first, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)

	second, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)

	s.Equal(first.ID, second.ID)
	s.Len(second.LineItems, len(first.LineItems))
	s.True(first.TotalAmount.Equal(second.TotalAmount))
}

func (s *BillingServiceSuite) TestIncrementalAggregation() {
	s.seedDelivered(1, types.DeliveryKindRegular, nil)

	first, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)
	s.True(first.TotalAmount.Equal(decimal.NewFromInt(100)))

	s.seedDelivered(2, types.DeliveryKindRegular, nil)

	second, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)

	// Same invoice, second call adds the new entry without dropping the
	// first call's contribution
	s.Equal(first.ID, second.ID)
	s.Len(second.LineItems, 2)
	s.True(second.TotalAmount.Equal(decimal.NewFromInt(200)))
}

func (s *BillingServiceSuite) TestExactlyOnceLinkage() {
	entry := s.seedDelivered(1, types.DeliveryKindRegular, nil)

	inv, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)

	for i := 0; i < 3; i++ {
		_, err = s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
		s.NoError(err)
	}

	linked, err := s.GetStores().DeliveryRepo.Get(s.GetContext(), entry.ID)
	s.NoError(err)
	s.NotNil(linked.InvoiceID)
	s.Equal(inv.ID, *linked.InvoiceID)

	items, err := s.GetStores().LineItemRepo.ListByInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Len(items, 1)
}

func (s *BillingServiceSuite) TestTotalMatchesLineItems() {
	s.seedDelivered(1, types.DeliveryKindRegular, nil)
	s.seedDelivered(2, types.DeliveryKindExtra, types.QuantityMap{
		types.MilkVarietyCow:     decimal.NewFromInt(1),
		types.MilkVarietyBuffalo: decimal.NewFromFloat(0.5),
	})

	inv, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)

	sum := decimal.Zero
	for _, item := range inv.LineItems {
		sum = sum.Add(item.Amount)
	}
	s.True(inv.TotalAmount.Equal(sum))
	// 2x50 + 1x50 + 0.5x60
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(180)))
}

func (s *BillingServiceSuite) TestAggregateForPeriodScenario() {
	s.seedDelivered(10, types.DeliveryKindRegular, nil)
	s.seedDelivered(10, types.DeliveryKindExtra, types.QuantityMap{
		types.MilkVarietyCow: decimal.NewFromFloat(1.5),
	})

	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	inv, err := s.service.AggregateForPeriod(s.GetContext(), "rec_1", start, end)
	s.NoError(err)

	// 2x50 standing + 1.5x50 extra = 175
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(175)), "got total %s", inv.TotalAmount)
	s.Len(inv.LineItems, 2)
	s.Equal("2026-08-10", inv.PeriodStart)
	s.Equal("2026-08-10", inv.PeriodEnd)
}

func (s *BillingServiceSuite) TestAggregateForPeriodSkipsInvoicedPeriod() {
	s.seedDelivered(10, types.DeliveryKindRegular, nil)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	first, err := s.service.AggregateForPeriod(s.GetContext(), "rec_1", start, end)
	s.NoError(err)

	s.seedDelivered(11, types.DeliveryKindRegular, nil)

	second, err := s.service.AggregateForPeriod(s.GetContext(), "rec_1", start, end)
	s.NoError(err)

	// Period already invoiced; the run is a no-op returning the original
	s.Equal(first.ID, second.ID)
	s.Len(second.LineItems, len(first.LineItems))
	s.True(first.TotalAmount.Equal(second.TotalAmount))
}

func (s *BillingServiceSuite) TestAggregateForPeriodNotSatisfiedByOpenInvoice() {
	s.seedDelivered(10, types.DeliveryKindRegular, nil)

	// The rolling open invoice's span lands exactly on 8/10..8/10
	open, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)
	s.Equal("2026-08-10", open.PeriodStart)
	s.Equal("2026-08-10", open.PeriodEnd)

	s.seedDelivered(10, types.DeliveryKindExtra, types.QuantityMap{
		types.MilkVarietyCow: decimal.NewFromInt(1),
	})

	// A period run over the same window must create its own invoice,
	// never hand back the open one
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	inv, err := s.service.AggregateForPeriod(s.GetContext(), "rec_1", start, end)
	s.NoError(err)
	s.NotEqual(open.ID, inv.ID)
	s.True(inv.PeriodScoped)
	s.Len(inv.LineItems, 1)
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(50)))

	// The open invoice is untouched and still resolves as the open one
	reopened, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)
	s.Equal(open.ID, reopened.ID)
}

func (s *BillingServiceSuite) TestAggregateForPeriodIgnoresEntriesOutsideRange() {
	s.seedDelivered(1, types.DeliveryKindRegular, nil)
	s.seedDelivered(20, types.DeliveryKindRegular, nil)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)
	inv, err := s.service.AggregateForPeriod(s.GetContext(), "rec_1", start, end)
	s.NoError(err)
	s.Len(inv.LineItems, 1)
}

func (s *BillingServiceSuite) TestAggregateForPeriodInvalidRange() {
	start := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.service.AggregateForPeriod(s.GetContext(), "rec_1", start, end)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceSuite) TestNonDeliveredEntriesNeverBilled() {
	for i, status := range []types.DeliveryStatus{
		types.DeliveryStatusNotDelivered,
		types.DeliveryStatusCancelled,
		types.DeliveryStatusMissed,
		types.DeliveryStatusLeave,
	} {
		entry := &delivery.Entry{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_ENTRY),
			RecipientID:    "rec_1",
			ProviderID:     "prov_1",
			Date:           time.Date(2026, 8, i+1, 0, 0, 0, 0, time.UTC),
			Kind:           types.DeliveryKindRegular,
			DeliveryStatus: status,
			BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
		}
		_, err := s.GetStores().DeliveryRepo.Upsert(s.GetContext(), entry)
		s.Require().NoError(err)
	}

	_, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceSuite) TestExtraEntryWithoutMatchingStandingStillBills() {
	// Standing buffalo is zero but the extra entry carries buffalo milk
	s.seedDelivered(5, types.DeliveryKindExtra, types.QuantityMap{
		types.MilkVarietyBuffalo: decimal.NewFromInt(1),
	})

	inv, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)
	s.Len(inv.LineItems, 1)
	s.Equal(types.MilkVarietyBuffalo, inv.LineItems[0].Variety)
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(60)))
	s.True(inv.LineItems[0].IsExtra)
}

func (s *BillingServiceSuite) TestGetInvoiceWithLineItems() {
	s.seedDelivered(1, types.DeliveryKindRegular, nil)

	created, err := s.service.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)

	got, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.ID, got.ID)
	s.Len(got.LineItems, 1)
	s.NotEmpty(got.InvoiceNumber)
}
