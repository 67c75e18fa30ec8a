package service

import (
	"testing"
	"time"

	"github.com/milkround/milkround/internal/api/dto"
	"github.com/milkround/milkround/internal/domain/delivery"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/testutil"
	"github.com/milkround/milkround/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AdjustmentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AdjustmentService
}

func TestAdjustmentService(t *testing.T) {
	suite.Run(t, new(AdjustmentServiceSuite))
}

func (s *AdjustmentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewAdjustmentService(newTestServiceParams(&s.BaseServiceTestSuite))
	s.GetDirectory().Assign("rec_1", "prov_1")
}

func (s *AdjustmentServiceSuite) submitExtraMilk(qty float64) (*dto.AdjustmentRequestResponse, error) {
	return s.service.Submit(s.GetContext(), &dto.SubmitAdjustmentRequest{
		RecipientID: "rec_1",
		Date:        "2026-08-10",
		RequestType: types.AdjustmentTypeExtraMilk,
		Quantities: types.QuantityMap{
			types.MilkVarietyCow: decimal.NewFromFloat(qty),
		},
	})
}

func (s *AdjustmentServiceSuite) TestSubmitExtraMilkStaysPending() {
	resp, err := s.submitExtraMilk(1.5)
	s.NoError(err)
	s.Equal(types.AdjustmentStatusPending, resp.RequestStatus)
	s.Equal("prov_1", resp.ProviderID)
	s.Nil(resp.FinalizedAt)

	// Approval-gated types never touch the ledger at submission
	entries, err := s.GetStores().DeliveryRepo.List(s.GetContext(), &types.DeliveryEntryFilter{RecipientID: "rec_1"})
	s.NoError(err)
	s.Len(entries, 0)
}

func (s *AdjustmentServiceSuite) TestSubmitDuplicateActiveRejected() {
	_, err := s.submitExtraMilk(1.5)
	s.NoError(err)

	_, err = s.submitExtraMilk(2)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *AdjustmentServiceSuite) TestSubmitAfterApprovalStillRejected() {
	resp, err := s.submitExtraMilk(1.5)
	s.NoError(err)

	_, err = s.service.Approve(s.GetContext(), resp.ID)
	s.NoError(err)

	// Approved requests stay active for the date
	_, err = s.submitExtraMilk(2)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *AdjustmentServiceSuite) TestSubmitAfterRejectionAllowed() {
	resp, err := s.submitExtraMilk(1.5)
	s.NoError(err)

	_, err = s.service.Reject(s.GetContext(), resp.ID, nil)
	s.NoError(err)

	_, err = s.submitExtraMilk(2)
	s.NoError(err)
}

func (s *AdjustmentServiceSuite) TestApproveDoesNotWaitForNotification() {
	recorder := testutil.NewRecordingNotifier()
	recorder.Gate = make(chan struct{})
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	params.Notifier = recorder
	service := NewAdjustmentService(params)

	s.GetProfile().SetNotificationToken("rec_1", "device_tok_1")

	resp, err := service.Submit(s.GetContext(), &dto.SubmitAdjustmentRequest{
		RecipientID: "rec_1",
		Date:        "2026-08-10",
		RequestType: types.AdjustmentTypeExtraMilk,
		Quantities: types.QuantityMap{
			types.MilkVarietyCow: decimal.NewFromInt(1),
		},
	})
	s.Require().NoError(err)

	// Approve returns while delivery is still gated
	_, err = service.Approve(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Len(recorder.Delivered(), 0)

	close(recorder.Gate)
	s.True(recorder.WaitFor(1, time.Second))
	note := recorder.Delivered()[0]
	s.Equal("device_tok_1", note.Token)
	s.Equal("Request approved", note.Title)
}

func (s *AdjustmentServiceSuite) TestSubmitZeroQuantitiesRejected() {
	_, err := s.service.Submit(s.GetContext(), &dto.SubmitAdjustmentRequest{
		RecipientID: "rec_1",
		Date:        "2026-08-10",
		RequestType: types.AdjustmentTypeQuantityAdjustment,
		Quantities: types.QuantityMap{
			types.MilkVarietyCow: decimal.Zero,
		},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *AdjustmentServiceSuite) TestSubmitWithoutProviderFails() {
	_, err := s.service.Submit(s.GetContext(), &dto.SubmitAdjustmentRequest{
		RecipientID: "rec_unassigned",
		Date:        "2026-08-10",
		RequestType: types.AdjustmentTypeLeave,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AdjustmentServiceSuite) TestLeaveIsAutoApproved() {
	resp, err := s.service.Submit(s.GetContext(), &dto.SubmitAdjustmentRequest{
		RecipientID: "rec_1",
		Date:        "2026-08-10",
		RequestType: types.AdjustmentTypeLeave,
	})
	s.NoError(err)
	s.Equal(types.AdjustmentStatusApproved, resp.RequestStatus)
	s.NotNil(resp.FinalizedAt)

	// The approved leave writes straight through to the ledger
	entry, err := s.GetStores().DeliveryRepo.GetByKey(s.GetContext(), "rec_1",
		time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), types.DeliveryKindRegular)
	s.NoError(err)
	s.Equal(types.DeliveryStatusLeave, entry.DeliveryStatus)
	s.False(entry.DeliveryStatus.IsBillable())
}

func (s *AdjustmentServiceSuite) TestLeaveOverwritesRecordedOutcome() {
	entry := &delivery.Entry{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_ENTRY),
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusDelivered,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	_, err := s.GetStores().DeliveryRepo.Upsert(s.GetContext(), entry)
	s.NoError(err)

	_, err = s.service.Submit(s.GetContext(), &dto.SubmitAdjustmentRequest{
		RecipientID: "rec_1",
		Date:        "2026-08-10",
		RequestType: types.AdjustmentTypeLeave,
	})
	s.NoError(err)

	updated, err := s.GetStores().DeliveryRepo.Get(s.GetContext(), entry.ID)
	s.NoError(err)
	s.Equal(types.DeliveryStatusLeave, updated.DeliveryStatus)
}

func (s *AdjustmentServiceSuite) TestLeaveBlockedOnBilledEntry() {
	entry := &delivery.Entry{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_ENTRY),
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusDelivered,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	_, err := s.GetStores().DeliveryRepo.Upsert(s.GetContext(), entry)
	s.NoError(err)
	err = s.GetStores().DeliveryRepo.LinkToInvoice(s.GetContext(), []string{entry.ID}, "inv_test")
	s.NoError(err)

	_, err = s.service.Submit(s.GetContext(), &dto.SubmitAdjustmentRequest{
		RecipientID: "rec_1",
		Date:        "2026-08-10",
		RequestType: types.AdjustmentTypeLeave,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// The blocked leave leaves no request behind
	requests, err := s.GetStores().AdjustmentRepo.List(s.GetContext(), &types.AdjustmentRequestFilter{RecipientID: "rec_1"})
	s.NoError(err)
	s.Len(requests, 0)
}

func (s *AdjustmentServiceSuite) TestApprove() {
	resp, err := s.submitExtraMilk(1.5)
	s.NoError(err)

	approved, err := s.service.Approve(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.AdjustmentStatusApproved, approved.RequestStatus)
	s.NotNil(approved.FinalizedAt)
}

func (s *AdjustmentServiceSuite) TestRejectRecordsReason() {
	resp, err := s.submitExtraMilk(1.5)
	s.NoError(err)

	reason := "out of stock"
	rejected, err := s.service.Reject(s.GetContext(), resp.ID, &dto.RejectAdjustmentRequest{
		RejectionReason: &reason,
	})
	s.NoError(err)
	s.Equal(types.AdjustmentStatusRejected, rejected.RequestStatus)
	s.Equal(&reason, rejected.RejectionReason)
	s.NotNil(rejected.FinalizedAt)
}

func (s *AdjustmentServiceSuite) TestFinalizedRequestCannotTransitionAgain() {
	resp, err := s.submitExtraMilk(1.5)
	s.NoError(err)

	_, err = s.service.Approve(s.GetContext(), resp.ID)
	s.NoError(err)

	_, err = s.service.Approve(s.GetContext(), resp.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.Reject(s.GetContext(), resp.ID, nil)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *AdjustmentServiceSuite) TestListRequestsFilters() {
	_, err := s.submitExtraMilk(1.5)
	s.NoError(err)
	_, err = s.service.Submit(s.GetContext(), &dto.SubmitAdjustmentRequest{
		RecipientID: "rec_1",
		Date:        "2026-08-11",
		RequestType: types.AdjustmentTypeLeave,
	})
	s.NoError(err)

	pending, err := s.service.ListRequests(s.GetContext(), &types.AdjustmentRequestFilter{
		RecipientID:   "rec_1",
		RequestStatus: types.AdjustmentStatusPending,
	})
	s.NoError(err)
	s.Equal(1, pending.Total)

	all, err := s.service.ListRequests(s.GetContext(), &types.AdjustmentRequestFilter{
		ProviderID: "prov_1",
	})
	s.NoError(err)
	s.Equal(2, all.Total)
}
