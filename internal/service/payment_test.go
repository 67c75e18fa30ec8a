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

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PaymentService
	billing BillingService
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.billing = NewBillingService(params)
	s.service = NewPaymentService(params, s.billing)

	s.GetDirectory().Assign("rec_1", "prov_1")
	s.GetDirectory().SetRates("prov_1", types.QuantityMap{
		types.MilkVarietyCow: decimal.NewFromInt(50),
	})
	s.GetProfile().SetStandingQuantities("rec_1", types.QuantityMap{
		types.MilkVarietyCow: decimal.NewFromInt(2),
	})
}

func (s *PaymentServiceSuite) seedDelivered(day int) *delivery.Entry {
	entry := &delivery.Entry{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_ENTRY),
		RecipientID:    "rec_1",
		ProviderID:     "prov_1",
		Date:           time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
		Kind:           types.DeliveryKindRegular,
		DeliveryStatus: types.DeliveryStatusDelivered,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	saved, err := s.GetStores().DeliveryRepo.Upsert(s.GetContext(), entry)
	s.Require().NoError(err)
	return saved
}

func (s *PaymentServiceSuite) TestCreateOrderSynthesizesInvoice() {
	s.seedDelivered(1)

	resp, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.NoError(err)
	s.Equal(types.PaymentStatusCreated, resp.PaymentStatus)
	s.NotEmpty(resp.GatewayOrderID)
	s.NotNil(resp.InvoiceID)
	s.True(resp.Amount.Equal(decimal.NewFromInt(100)))
	s.Equal("INR", resp.Currency)

	// The invoice carries the order reference for verification lookups
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), *resp.InvoiceID)
	s.NoError(err)
	s.NotNil(inv.GatewayOrderID)
	s.Equal(resp.GatewayOrderID, *inv.GatewayOrderID)
}

func (s *PaymentServiceSuite) TestCreateOrderReusesOpenInvoice() {
	s.seedDelivered(1)
	open, err := s.billing.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)

	resp, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.NoError(err)
	s.Equal(open.ID, *resp.InvoiceID)
}

func (s *PaymentServiceSuite) TestCreateOrderNothingToBill() {
	_, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestCreateOrderRejectsForeignInvoice() {
	s.seedDelivered(1)
	open, err := s.billing.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)

	_, err = s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_2",
		InvoiceID:   &open.ID,
	})
	s.Error(err)
}

func (s *PaymentServiceSuite) TestRoundTripPayment() {
	entryA := s.seedDelivered(1)
	entryB := s.seedDelivered(2)

	order, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.NoError(err)

	verified, err := s.service.Verify(s.GetContext(), &dto.VerifyPaymentRequest{
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_ext_1",
		Signature:        "sig_valid",
	})
	s.NoError(err)
	s.Equal(types.PaymentStatusCaptured, verified.PaymentStatus)
	s.NotNil(verified.CapturedAt)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), *order.InvoiceID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.NotNil(inv.PaidAt)

	for _, id := range []string{entryA.ID, entryB.ID} {
		e, err := s.GetStores().DeliveryRepo.Get(s.GetContext(), id)
		s.NoError(err)
		s.True(e.Paid)
	}
}

func (s *PaymentServiceSuite) TestVerifyMarksLineItemOnlyEntriesPaid() {
	entry := s.seedDelivered(1)

	order, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.NoError(err)

	// Simulate a link that exists only through the line item
	// back-reference: the entry itself lost its invoice pointer
	e, err := s.GetStores().DeliveryRepo.Get(s.GetContext(), entry.ID)
	s.NoError(err)
	e.InvoiceID = nil
	s.NoError(s.GetStores().DeliveryRepo.(*testutil.InMemoryDeliveryStore).InMemoryStore.Update(s.GetContext(), e.ID, e))

	_, err = s.service.Verify(s.GetContext(), &dto.VerifyPaymentRequest{
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_ext_1",
		Signature:        "sig_valid",
	})
	s.NoError(err)

	updated, err := s.GetStores().DeliveryRepo.Get(s.GetContext(), entry.ID)
	s.NoError(err)
	s.True(updated.Paid)
}

func (s *PaymentServiceSuite) TestVerifyFailureRollsBackInvoice() {
	entry := s.seedDelivered(1)

	order, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.NoError(err)

	s.GetGateway().AcceptAll = false

	resp, err := s.service.Verify(s.GetContext(), &dto.VerifyPaymentRequest{
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_ext_1",
		Signature:        "sig_bogus",
	})
	// Failure is the designed compensation path, reported not raised
	s.NoError(err)
	s.Equal(types.PaymentStatusFailed, resp.PaymentStatus)
	s.NotNil(resp.FailedAt)
	s.NotNil(resp.ErrorMessage)

	// The speculative invoice and its line items are gone
	_, err = s.GetStores().InvoiceRepo.Get(s.GetContext(), *order.InvoiceID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	items, err := s.GetStores().LineItemRepo.ListByInvoice(s.GetContext(), *order.InvoiceID)
	s.NoError(err)
	s.Len(items, 0)

	// The entry is unlinked and billable again
	e, err := s.GetStores().DeliveryRepo.Get(s.GetContext(), entry.ID)
	s.NoError(err)
	s.Nil(e.InvoiceID)
	s.False(e.Paid)
	s.True(e.IsBillable())

	// Re-aggregation picks the entry straight back up
	inv, err := s.billing.GetOrCreateOpenInvoice(s.GetContext(), "rec_1")
	s.NoError(err)
	s.Len(inv.LineItems, 1)
}

func (s *PaymentServiceSuite) TestVerifyTwiceConflicts() {
	s.seedDelivered(1)

	order, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.NoError(err)

	req := &dto.VerifyPaymentRequest{
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_ext_1",
		Signature:        "sig_valid",
	}
	_, err = s.service.Verify(s.GetContext(), req)
	s.NoError(err)

	_, err = s.service.Verify(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentServiceSuite) TestConcurrentVerifySettlesOnce() {
	s.seedDelivered(1)

	order, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.NoError(err)

	req := &dto.VerifyPaymentRequest{
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_ext_1",
		Signature:        "sig_valid",
	}

	// A competing verification completes between this call's finality
	// pre-read and its settlement
	var competing *dto.PaymentResponse
	s.GetGateway().OnVerify = func() {
		resp, err := s.service.Verify(s.GetContext(), req)
		s.NoError(err)
		competing = resp
	}

	_, err = s.service.Verify(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	s.NotNil(competing)
	s.Equal(types.PaymentStatusCaptured, competing.PaymentStatus)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), *order.InvoiceID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
}

func (s *PaymentServiceSuite) TestFailedVerifyCannotRollBackSettledPayment() {
	s.seedDelivered(1)

	order, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.NoError(err)

	gw := s.GetGateway()
	gw.AcceptAll = false
	gw.RegisterSignature(order.GatewayOrderID, "pay_ext_1", "sig_valid")

	// A correctly signed verification settles while the badly signed one
	// is in flight; the loser must not delete the paid invoice
	gw.OnVerify = func() {
		resp, err := s.service.Verify(s.GetContext(), &dto.VerifyPaymentRequest{
			GatewayOrderID:   order.GatewayOrderID,
			GatewayPaymentID: "pay_ext_1",
			Signature:        "sig_valid",
		})
		s.NoError(err)
		s.Equal(types.PaymentStatusCaptured, resp.PaymentStatus)
	}

	_, err = s.service.Verify(s.GetContext(), &dto.VerifyPaymentRequest{
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_ext_1",
		Signature:        "sig_bogus",
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), *order.InvoiceID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)

	items, err := s.GetStores().LineItemRepo.ListByInvoice(s.GetContext(), *order.InvoiceID)
	s.NoError(err)
	s.Len(items, 1)
}

func (s *PaymentServiceSuite) TestVerifyUnknownOrder() {
	_, err := s.service.Verify(s.GetContext(), &dto.VerifyPaymentRequest{
		GatewayOrderID:   "order_missing",
		GatewayPaymentID: "pay_ext_1",
		Signature:        "sig",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestCaptureNotificationDoesNotHoldVerify() {
	recorder := testutil.NewRecordingNotifier()
	recorder.Gate = make(chan struct{})
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	params.Notifier = recorder
	billing := NewBillingService(params)
	service := NewPaymentService(params, billing)

	s.GetProfile().SetNotificationToken("rec_1", "device_tok_1")
	s.seedDelivered(1)

	order, err := service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.Require().NoError(err)

	// Verify returns while delivery is still gated
	verified, err := service.Verify(s.GetContext(), &dto.VerifyPaymentRequest{
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: "pay_ext_1",
		Signature:        "sig_valid",
	})
	s.NoError(err)
	s.Equal(types.PaymentStatusCaptured, verified.PaymentStatus)
	s.Len(recorder.Delivered(), 0)

	close(recorder.Gate)
	s.True(recorder.WaitFor(1, time.Second))
	s.Equal("Payment received", recorder.Delivered()[0].Title)
}

func (s *PaymentServiceSuite) TestCreateOrderGatewayDown() {
	s.seedDelivered(1)
	s.GetGateway().FailOrders = true

	_, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.Error(err)
	s.True(ierr.IsHTTPClient(err))
}

func (s *PaymentServiceSuite) TestListPayments() {
	s.seedDelivered(1)

	order, err := s.service.CreateOrder(s.GetContext(), &dto.CreateOrderRequest{
		RecipientID: "rec_1",
	})
	s.NoError(err)

	list, err := s.service.ListPayments(s.GetContext(), &types.PaymentFilter{PayerID: "rec_1"})
	s.NoError(err)
	s.Equal(1, list.Total)
	s.Equal(order.ID, list.Items[0].ID)

	got, err := s.service.GetPayment(s.GetContext(), order.ID)
	s.NoError(err)
	s.Equal(order.GatewayOrderID, got.GatewayOrderID)
}
