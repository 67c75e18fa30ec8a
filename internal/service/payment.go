package service

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/api/dto"
	"github.com/milkround/milkround/internal/domain/delivery"
	"github.com/milkround/milkround/internal/domain/invoice"
	"github.com/milkround/milkround/internal/domain/payment"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
	"github.com/samber/lo"
)

const defaultCurrency = "INR"

// PaymentService reconciles gateway payments against invoices. A payment
// transitions exactly once: a verified capture marks the invoice paid and
// every linked entry paid; a failed verification compensates by deleting
// the invoice outright so its entries become billable again.
type PaymentService interface {
	// CreateOrder opens a gateway order for the recipient's dues. When no
	// invoice is named, the open invoice is used, synthesized via
	// aggregation if none exists.
	CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.PaymentResponse, error)

	// Verify checks the gateway signature and settles the payment. A
	// failed check is the designed compensation path and is reported in
	// the response, not raised as an error.
	Verify(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.PaymentResponse, error)

	// GetPayment retrieves a payment by ID
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)

	// ListPayments retrieves payments matching the filter
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
}

type paymentService struct {
	ServiceParams
	billing BillingService
}

func NewPaymentService(params ServiceParams, billing BillingService) PaymentService {
	return &paymentService{ServiceParams: params, billing: billing}
}

func (s *paymentService) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.PaymentResponse, error) {
	inv, err := s.resolveInvoice(ctx, req)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus != types.InvoiceStatusPending && inv.InvoiceStatus != types.InvoiceStatusOverdue {
		return nil, ierr.NewError("invoice is not payable").
			WithHint("Only pending invoices can be paid").
			WithReportableDetails(map[string]any{
				"invoice_id":     inv.ID,
				"invoice_status": inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if inv.TotalAmount.IsZero() {
		return nil, ierr.NewError("nothing to pay").
			WithHint("The invoice total is zero").
			Mark(ierr.ErrInvalidOperation)
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	orderID, err := s.Gateway.CreateOrder(ctx, inv.TotalAmount, currency, inv.InvoiceNumber)
	if err != nil {
		return nil, err
	}

	p := &payment.Payment{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		PayerID:         req.RecipientID,
		GatewayOrderID:  orderID,
		DestinationType: types.PaymentDestinationTypeInvoice,
		InvoiceID:       &inv.ID,
		Amount:          inv.TotalAmount,
		Currency:        currency,
		PaymentStatus:   types.PaymentStatusCreated,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PaymentRepo.Create(ctx, p); err != nil {
			return err
		}
		inv.GatewayOrderID = &orderID
		return s.InvoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created payment order",
		"payment_id", p.ID,
		"invoice_id", inv.ID,
		"gateway_order_id", orderID,
		"amount", p.Amount,
	)
	return dto.NewPaymentResponse(p), nil
}

// resolveInvoice finds the invoice the order settles: the named one, the
// recipient's open invoice, or one synthesized by aggregation
func (s *paymentService) resolveInvoice(ctx context.Context, req *dto.CreateOrderRequest) (*invoice.Invoice, error) {
	if req.InvoiceID != nil && *req.InvoiceID != "" {
		inv, err := s.InvoiceRepo.Get(ctx, *req.InvoiceID)
		if err != nil {
			return nil, err
		}
		if inv.RecipientID != req.RecipientID {
			return nil, ierr.NewError("invoice does not belong to recipient").
				WithHint("The invoice belongs to a different recipient").
				Mark(ierr.ErrPermissionDenied)
		}
		return inv, nil
	}

	providerID, err := s.ProviderDirectory.GetAssignedProvider(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}

	open, err := s.InvoiceRepo.GetOpenInvoice(ctx, req.RecipientID, providerID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if open != nil {
		return open, nil
	}

	synthesized, err := s.billing.GetOrCreateOpenInvoice(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}
	return s.InvoiceRepo.Get(ctx, synthesized.ID)
}

func (s *paymentService) Verify(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.GetByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if p.PaymentStatus.IsFinal() {
		return nil, errAlreadyReconciled(p)
	}

	if s.Gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		return s.settle(ctx, p, req)
	}
	return s.compensate(ctx, p, req)
}

func errAlreadyReconciled(p *payment.Payment) error {
	return ierr.NewError("payment is already reconciled").
		WithHint("This payment has already been verified").
		WithReportableDetails(map[string]any{
			"payment_id":     p.ID,
			"payment_status": p.PaymentStatus,
		}).
		Mark(ierr.ErrInvalidOperation)
}

// lockPaymentInvoice takes the per-pair advisory lock for the invoice the
// payment settles. The returned invoice was read before the lock was
// granted; callers must re-read any state they guard on.
func (s *paymentService) lockPaymentInvoice(ctx context.Context, p *payment.Payment) (*invoice.Invoice, error) {
	if p.InvoiceID == nil {
		return nil, nil
	}
	inv, err := s.InvoiceRepo.Get(ctx, *p.InvoiceID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.DB.AcquireLock(ctx, billingLockKey(inv.RecipientID, inv.ProviderID)); err != nil {
		return nil, err
	}
	return inv, nil
}

// settle captures the payment, marks the invoice paid and flips the paid
// flag on every linked entry, in one transaction
func (s *paymentService) settle(ctx context.Context, p *payment.Payment, req *dto.VerifyPaymentRequest) (*dto.PaymentResponse, error) {
	var recipientID string
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.lockPaymentInvoice(ctx, p)
		if err != nil {
			return err
		}

		// Re-read now that the lock is held; a concurrent verification
		// may have finalized the payment while this one waited
		p, err = s.PaymentRepo.GetByGatewayOrderID(ctx, p.GatewayOrderID)
		if err != nil {
			return err
		}
		if p.PaymentStatus.IsFinal() {
			return errAlreadyReconciled(p)
		}

		now := time.Now().UTC()
		p.PaymentStatus = types.PaymentStatusCaptured
		p.GatewayPaymentID = &req.GatewayPaymentID
		p.Signature = &req.Signature
		p.CapturedAt = &now
		if err := s.PaymentRepo.Update(ctx, p); err != nil {
			return err
		}

		if inv == nil {
			return nil
		}
		inv, err = s.InvoiceRepo.Get(ctx, inv.ID)
		if err != nil {
			return err
		}
		recipientID = inv.RecipientID

		inv.InvoiceStatus = types.InvoiceStatusPaid
		inv.PaidAt = &now
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}

		// Entries may be linked through their own invoice reference or
		// only through line item back-references; both paths count
		items, err := s.LineItemRepo.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		itemEntryIDs := lo.Uniq(lo.Map(items, func(li *invoice.LineItem, _ int) string {
			return li.DeliveryEntryID
		}))
		entries, err := s.DeliveryRepo.ListByInvoice(ctx, inv.ID, itemEntryIDs)
		if err != nil {
			return err
		}
		entryIDs := lo.Map(entries, func(e *delivery.Entry, _ int) string { return e.ID })
		if len(entryIDs) == 0 {
			return nil
		}
		return s.DeliveryRepo.MarkPaid(ctx, entryIDs)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("captured payment",
		"payment_id", p.ID,
		"gateway_order_id", p.GatewayOrderID,
	)
	if recipientID != "" {
		s.notifyCapture(ctx, recipientID, p)
	}
	return dto.NewPaymentResponse(p), nil
}

// compensate fails the payment and rolls back the invoice it was opened
// for: line items and invoice deleted, entries unlinked and billable
// again. One transaction; failure is reported, not raised.
func (s *paymentService) compensate(ctx context.Context, p *payment.Payment, req *dto.VerifyPaymentRequest) (*dto.PaymentResponse, error) {
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.lockPaymentInvoice(ctx, p)
		if err != nil {
			return err
		}

		// Same re-read guard as settle: a concurrent verification that
		// captured this payment must not have its invoice rolled back
		p, err = s.PaymentRepo.GetByGatewayOrderID(ctx, p.GatewayOrderID)
		if err != nil {
			return err
		}
		if p.PaymentStatus.IsFinal() {
			return errAlreadyReconciled(p)
		}

		now := time.Now().UTC()
		msg := "signature verification failed"
		p.PaymentStatus = types.PaymentStatusFailed
		p.GatewayPaymentID = &req.GatewayPaymentID
		p.Signature = &req.Signature
		p.ErrorMessage = &msg
		p.FailedAt = &now
		if err := s.PaymentRepo.Update(ctx, p); err != nil {
			return err
		}

		if inv == nil {
			return nil
		}
		inv, err = s.InvoiceRepo.Get(ctx, inv.ID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil
			}
			return err
		}
		if inv.InvoiceStatus == types.InvoiceStatusPaid {
			return ierr.NewError("cannot roll back a paid invoice").
				Mark(ierr.ErrIntegrity)
		}

		if err := s.DeliveryRepo.UnlinkFromInvoice(ctx, inv.ID); err != nil {
			return err
		}
		if err := s.LineItemRepo.DeleteByInvoice(ctx, inv.ID); err != nil {
			return err
		}
		return s.InvoiceRepo.Delete(ctx, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Warnw("payment verification failed, rolled back invoice",
		"payment_id", p.ID,
		"gateway_order_id", p.GatewayOrderID,
	)
	return dto.NewPaymentResponse(p), nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(p), nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = &types.PaymentFilter{}
	}
	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListPaymentsResponse(payments), nil
}

func (s *paymentService) notifyCapture(ctx context.Context, recipientID string, p *payment.Payment) {
	token, err := s.RecipientProfile.GetNotificationToken(ctx, recipientID)
	if err != nil {
		s.Logger.Debugw("skipping notification, no token", "recipient_id", recipientID, "error", err)
		return
	}
	// Detached from the request: delivery retries must not hold the caller
	go s.Notifier.Notify(context.WithoutCancel(ctx), token, "Payment received",
		"Your payment of "+p.Amount.String()+" "+p.Currency+" was received")
}

var _ PaymentService = (*paymentService)(nil)
