package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, unknown action kind).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrNoSeats is returned by the booking store when a seat reservation is
// attempted against a schedule whose booked count has reached capacity.
// A failed reservation is an expected outcome, not an exceptional one:
// concurrent confirmations for the last open seat race by design.
var ErrNoSeats = errors.New("no seats available")

// ErrAlreadyBooked is returned by the booking store when a booking already
// exists for the same (student, schedule) pair. Push actions are delivered
// at-least-once, so a duplicate confirm must surface this condition instead
// of creating a second booking.
var ErrAlreadyBooked = errors.New("already booked")
