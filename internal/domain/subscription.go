package domain

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription is a registered device endpoint capable of receiving an
// out-of-band Web Push message for a user. P256dhKey and AuthKey are the
// client-generated encryption keys from the browser's PushSubscription.
//
// Subscriptions are created by an external registration flow; this pipeline
// only reads active ones and flips Active to false when the push transport
// reports the endpoint permanently gone.
type PushSubscription struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	UserType  string // "student" or "guardian"
	Endpoint  string
	P256dhKey string
	AuthKey   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
