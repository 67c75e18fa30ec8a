package testutil

import (
	"context"
	"sync"
	"time"
)

// DeliveredNotification is one notification a RecordingNotifier received
type DeliveredNotification struct {
	Token string
	Title string
	Body  string
}

// RecordingNotifier captures notifications for assertions. When Gate is
// set, delivery blocks until the gate closes, letting tests check that
// callers are not held by a slow push service.
type RecordingNotifier struct {
	mu        sync.Mutex
	delivered []DeliveredNotification
	Gate      chan struct{}
}

// NewRecordingNotifier creates an ungated recording notifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(ctx context.Context, token, title, body string) {
	if n.Gate != nil {
		<-n.Gate
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, DeliveredNotification{Token: token, Title: title, Body: body})
}

// Delivered returns a copy of everything received so far
func (n *RecordingNotifier) Delivered() []DeliveredNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]DeliveredNotification(nil), n.delivered...)
}

// WaitFor polls until count notifications arrived or the timeout passes
func (n *RecordingNotifier) WaitFor(count int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(n.Delivered()) >= count {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return len(n.Delivered()) >= count
}
