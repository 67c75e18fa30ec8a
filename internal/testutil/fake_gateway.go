package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/shopspring/decimal"
)

// FakeGateway implements razorpay.Gateway without network calls. Orders
// get deterministic ids; signature checks pass only for signatures the
// test registered (or everything when AcceptAll is set).
type FakeGateway struct {
	mu         sync.Mutex
	orderSeq   int
	orders     map[string]decimal.Decimal
	signatures map[string]bool
	AcceptAll  bool
	FailOrders bool

	// OnVerify, when set, runs once before the next signature check.
	// Tests use it to interleave a competing verification between the
	// caller's pre-read and its settlement.
	OnVerify func()
}

// NewFakeGateway creates a fake gateway accepting every signature
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		orders:     make(map[string]decimal.Decimal),
		signatures: make(map[string]bool),
		AcceptAll:  true,
	}
}

func (g *FakeGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailOrders {
		return "", ierr.NewError("gateway unavailable").
			Mark(ierr.ErrHTTPClient)
	}

	g.orderSeq++
	orderID := fmt.Sprintf("order_fake_%03d", g.orderSeq)
	g.orders[orderID] = amount
	return orderID, nil
}

func (g *FakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	g.mu.Lock()
	hook := g.OnVerify
	g.OnVerify = nil
	g.mu.Unlock()
	if hook != nil {
		hook()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.AcceptAll {
		return true
	}
	return g.signatures[orderID+"|"+paymentID+"|"+signature]
}

// RegisterSignature marks one (order, payment, signature) triple valid;
// used with AcceptAll disabled
func (g *FakeGateway) RegisterSignature(orderID, paymentID, signature string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signatures[orderID+"|"+paymentID+"|"+signature] = true
}

// OrderAmount returns the amount the order was opened with
func (g *FakeGateway) OrderAmount(orderID string) (decimal.Decimal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.orders[orderID]
	return amount, ok
}

// Clear resets orders and registered signatures
func (g *FakeGateway) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orderSeq = 0
	g.orders = make(map[string]decimal.Decimal)
	g.signatures = make(map[string]bool)
	g.AcceptAll = true
	g.FailOrders = false
	g.OnVerify = nil
}
