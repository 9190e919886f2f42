package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/ridewise/backend/internal/domain"
)

// defaultTTL is how long (seconds) the push service may hold an undelivered
// message. A day covers the reminder's useful lifetime; after departure the
// message is pointless anyway.
const defaultTTL = 86400

// WebPushSender delivers payloads over the Web Push protocol with VAPID
// authentication via webpush-go.
type WebPushSender struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
}

// NewWebPushSender constructs a WebPushSender. subscriber is the VAPID
// contact URI (e.g. "mailto:ops@example.com") push services may use to reach
// the sender about delivery problems.
func NewWebPushSender(vapidPublicKey, vapidPrivateKey, subscriber string) *WebPushSender {
	return &WebPushSender{
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		subscriber:      subscriber,
	}
}

// compile-time check: WebPushSender must satisfy Sender.
var _ Sender = (*WebPushSender)(nil)

// Send encrypts and posts the payload to the subscription endpoint.
// 404 and 410 responses map to ErrSubscriptionGone; other non-2xx responses
// are transient errors.
func (s *WebPushSender) Send(ctx context.Context, sub domain.PushSubscription, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("push.WebPushSender.Send: marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             defaultTTL,
	})
	if err != nil {
		return fmt.Errorf("push.WebPushSender.Send: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("push.WebPushSender.Send: status %d: %w", resp.StatusCode, ErrSubscriptionGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push.WebPushSender.Send: unexpected status %d", resp.StatusCode)
	}
	return nil
}
