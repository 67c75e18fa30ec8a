package service

import (
	"testing"
	"time"

	"github.com/milkround/milkround/internal/api/dto"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/testutil"
	"github.com/milkround/milkround/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service LedgerService
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewLedgerService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *LedgerServiceSuite) TestRecordOutcome() {
	resp, err := s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusDelivered,
	})
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal("2026-08-01", resp.Date)
	s.Equal(types.DeliveryStatusDelivered, resp.DeliveryStatus)
	s.False(resp.Paid)
	s.Nil(resp.InvoiceID)
}

func (s *LedgerServiceSuite) TestRecordOutcomeIsIdempotentPerKey() {
	first, err := s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusDelivered,
	})
	s.NoError(err)

	remarks := "door locked"
	second, err := s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusNotDelivered,
		Remarks:        &remarks,
	})
	s.NoError(err)

	// Same key resolves to the same entry with the outcome overwritten
	s.Equal(first.ID, second.ID)
	s.Equal(types.DeliveryStatusNotDelivered, second.DeliveryStatus)
	s.Equal(&remarks, second.Remarks)

	list, err := s.service.ListEntries(s.GetContext(), &types.DeliveryEntryFilter{RecipientID: "rec_1"})
	s.NoError(err)
	s.Equal(1, list.Total)
}

func (s *LedgerServiceSuite) TestRecordOutcomeSeparateKindsCoexist() {
	_, err := s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusDelivered,
	})
	s.NoError(err)

	_, err = s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           types.DeliveryKindExtra,
		DeliveryStatus: types.DeliveryStatusDelivered,
		ExtraQuantities: types.QuantityMap{
			types.MilkVarietyCow: decimal.NewFromFloat(1.5),
		},
	})
	s.NoError(err)

	list, err := s.service.ListEntries(s.GetContext(), &types.DeliveryEntryFilter{RecipientID: "rec_1"})
	s.NoError(err)
	s.Equal(2, list.Total)
}

func (s *LedgerServiceSuite) TestRecordOutcomeRejectsBilledEntry() {
	resp, err := s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusDelivered,
	})
	s.NoError(err)

	err = s.GetStores().DeliveryRepo.LinkToInvoice(s.GetContext(), []string{resp.ID}, "inv_test")
	s.NoError(err)

	_, err = s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusNotDelivered,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *LedgerServiceSuite) TestRecordOutcomeRejectsBadInput() {
	_, err := s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "01-08-2026",
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusDelivered,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           "weekly",
		DeliveryStatus: types.DeliveryStatusDelivered,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           types.DeliveryKindExtra,
		DeliveryStatus: types.DeliveryStatusDelivered,
		ExtraQuantities: types.QuantityMap{
			types.MilkVarietyCow: decimal.NewFromInt(-1),
		},
	})
	s.Error(err)
	s.True(ierr.IsIntegrity(err))
}

func (s *LedgerServiceSuite) TestListEntriesByDateRange() {
	for _, date := range []string{"2026-08-01", "2026-08-02", "2026-08-15"} {
		_, err := s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
			RecipientID:    "rec_1",
			ProviderID:     "prov_1",
			Date:           date,
			Kind:           types.DeliveryKindRegular,
			DeliveryStatus: types.DeliveryStatusDelivered,
		})
		s.NoError(err)
	}

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)
	list, err := s.service.ListEntries(s.GetContext(), &types.DeliveryEntryFilter{
		RecipientID: "rec_1",
		StartDate:   &start,
		EndDate:     &end,
	})
	s.NoError(err)
	s.Equal(2, list.Total)
}

func (s *LedgerServiceSuite) TestGetEntry() {
	resp, err := s.service.RecordOutcome(s.GetContext(), &dto.RecordDeliveryRequest{
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           "2026-08-01",
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusDelivered,
	})
	s.NoError(err)

	got, err := s.service.GetEntry(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(resp.ID, got.ID)

	_, err = s.service.GetEntry(s.GetContext(), "del_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
