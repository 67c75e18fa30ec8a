// Package notifier sends best-effort push notifications. Delivery is
// fire-and-forget: failures are logged and never propagate into the
// calling transaction.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/milkround/milkround/internal/config"
	"github.com/milkround/milkround/internal/logger"
)

// Notifier sends a notification to a device token
type Notifier interface {
	Notify(ctx context.Context, token, title, body string)
}

type pushNotifier struct {
	client    *retryablehttp.Client
	endpoint  string
	serverKey string
	enabled   bool
	logger    *logger.Logger
}

func NewNotifier(cfg *config.Configuration, logger *logger.Logger) Notifier {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &pushNotifier{
		client:    client,
		endpoint:  cfg.Notification.Endpoint,
		serverKey: cfg.Notification.ServerKey,
		enabled:   cfg.Notification.Enabled,
		logger:    logger,
	}
}

type pushMessage struct {
	To           string           `json:"to"`
	Notification pushNotification `json:"notification"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (n *pushNotifier) Notify(ctx context.Context, token, title, body string) {
	if !n.enabled || token == "" {
		return
	}

	payload, err := json.Marshal(pushMessage{
		To:           token,
		Notification: pushNotification{Title: title, Body: body},
	})
	if err != nil {
		n.logger.Errorw("failed to marshal notification", "error", err)
		return
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		n.logger.Errorw("failed to build notification request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+n.serverKey)

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warnw("notification delivery failed",
			"title", title,
			"error", err,
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Warnw("notification rejected by push service",
			"title", title,
			"status", resp.StatusCode,
		)
	}
}

// NoopNotifier discards every notification; used in tests and when
// notifications are disabled
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, token, title, body string) {}
