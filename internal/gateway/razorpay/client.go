// Package razorpay wraps the Razorpay orders API for payment order
// creation and HMAC signature verification. The gateway is treated as an
// opaque, possibly-unavailable remote service.
package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/cenkalti/backoff/v4"
	"github.com/milkround/milkround/internal/config"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/logger"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// Gateway defines the payment gateway operations the reconciler consumes
type Gateway interface {
	// CreateOrder opens an external payment order and returns its id.
	// The amount is converted to minor units (paise) on the wire.
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (string, error)

	// VerifySignature checks the gateway's payment signature for the
	// order/payment pair
	VerifySignature(orderID, paymentID, signature string) bool
}

// Client is the Razorpay-backed gateway implementation
type Client struct {
	sdk       *razorpay.Client
	secretKey string
	logger    *logger.Logger
}

func NewClient(cfg *config.Configuration, logger *logger.Logger) Gateway {
	return &Client{
		sdk:       razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.SecretKey),
		secretKey: cfg.Razorpay.SecretKey,
		logger:    logger,
	}
}

// CreateOrder opens a Razorpay order. Transient gateway failures are
// retried with exponential backoff before surfacing an upstream error
// the caller can retry idempotently.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": currency,
		"receipt":  receipt,
	}

	var orderID string
	operation := func() error {
		body, err := c.sdk.Order.Create(data, nil)
		if err != nil {
			return err
		}
		id, ok := body["id"].(string)
		if !ok || id == "" {
			return backoff.Permanent(ierr.NewError("gateway returned no order id").
				Mark(ierr.ErrHTTPClient))
		}
		orderID = id
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.Errorw("failed to create gateway order",
			"receipt", receipt,
			"error", err,
		)
		return "", ierr.WithError(err).
			WithHint("Payment gateway is unavailable, please retry").
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Infow("created gateway order",
		"order_id", orderID,
		"receipt", receipt,
	)
	return orderID, nil
}

// VerifySignature recomputes the expected HMAC-SHA256 over
// "<order_id>|<payment_id>" and compares it to the received signature
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		c.logger.Errorw("payment signature mismatch",
			"order_id", orderID,
			"payment_id", paymentID,
		)
		return false
	}
	return true
}
