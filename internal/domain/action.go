package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind is the user's response to an interactive notification.
type ActionKind string

const (
	ActionConfirm ActionKind = "confirm"
	ActionDecline ActionKind = "decline"
	ActionView    ActionKind = "view"
)

// Valid reports whether k is one of the three recognised action kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionConfirm, ActionDecline, ActionView:
		return true
	}
	return false
}

// ErrorKind is the action processor's error taxonomy. Every kind except
// ErrorKindInternal is a recoverable, expected outcome from the caller's
// perspective.
type ErrorKind string

const (
	ErrorKindMissingParameters ErrorKind = "missing_parameters"
	ErrorKindNotAvailable      ErrorKind = "booking_not_available"
	ErrorKindNoSeats           ErrorKind = "no_seats_available"
	ErrorKindAlreadyBooked     ErrorKind = "already_booked"
	ErrorKindCreationFailed    ErrorKind = "booking_creation_failed"
	ErrorKindInternal          ErrorKind = "internal_error"
)

// ActionRequest carries one confirm/decline/view action from the transport
// layer into the action processor. TripDate, DepartureTime and RouteName echo
// the reminder's context so outcome notifications can be composed even when a
// store lookup fails.
type ActionRequest struct {
	Action         ActionKind
	NotificationID uuid.UUID
	ScheduleID     uuid.UUID
	StudentID      uuid.UUID
	TripDate       time.Time
	DepartureTime  string
	RouteName      string
	BoardingStop   string
}

// ActionResult is the structured outcome of processing one action. Exactly
// one of the success fields (BookingID, SeatNumber) or the error fields
// (ErrorKind, PaymentRequired, PaymentOptions) is populated; Message is
// always human-readable.
type ActionResult struct {
	Success         bool       `json:"success"`
	Action          ActionKind `json:"action"`
	BookingID       *uuid.UUID `json:"booking_id,omitempty"`
	SeatNumber      int        `json:"seat_number,omitempty"`
	ErrorKind       ErrorKind  `json:"error,omitempty"`
	Message         string     `json:"message"`
	PaymentRequired bool       `json:"payment_required,omitempty"`
	PaymentOptions  []string   `json:"payment_options,omitempty"`
}

// ActionLogEntry is one best-effort audit row recording a processed action.
// Writing it must never fail the action itself.
type ActionLogEntry struct {
	NotificationID uuid.UUID
	StudentID      uuid.UUID
	ScheduleID     uuid.UUID
	Action         ActionKind
	Result         string
	Detail         string
}
