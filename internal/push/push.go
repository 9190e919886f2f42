// Package push defines the boundary to the Web Push transport: the payload
// shape the service worker understands, the Sender interface the dispatcher
// fans out over, and a webpush-go backed implementation.
package push

import (
	"context"
	"errors"

	"github.com/ridewise/backend/internal/domain"
)

// ErrSubscriptionGone signals a permanent delivery failure: the push service
// reports the endpoint no longer exists (HTTP 410, or 404 from services that
// use it the same way). The dispatcher reacts by deactivating the
// subscription; any other error is treated as transient.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Action is one interactive button rendered on the notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// Payload is the structured message delivered to the service worker.
// Tag carries the notification ID so the client collapses duplicate
// deliveries of the same logical notification.
type Payload struct {
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon,omitempty"`
	Badge              string         `json:"badge,omitempty"`
	Tag                string         `json:"tag,omitempty"`
	RequireInteraction bool           `json:"requireInteraction,omitempty"`
	Actions            []Action       `json:"actions,omitempty"`
	Data               map[string]any `json:"data,omitempty"`
}

// Sender delivers one payload to one subscription endpoint.
// Implementations must return ErrSubscriptionGone (possibly wrapped) for
// permanent endpoint failures and any other error for transient ones.
type Sender interface {
	Send(ctx context.Context, sub domain.PushSubscription, payload Payload) error
}
