// Package domain contains the core data types for the school-transport
// reminder and booking pipeline. This package has zero external dependencies
// beyond uuid and is imported by every other internal package (repo, service,
// handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleStatusScheduled is the only schedule status the reminder pipeline
// acts on. Cancelled or completed schedules are invisible to it.
const ScheduleStatusScheduled = "scheduled"

// Schedule represents a single dated, timed instance of a route, with seat
// capacity and a current booked count. The booked count is mutated only
// through BookingRepo.Reserve; this pipeline never decrements it.
type Schedule struct {
	ID             uuid.UUID
	RouteID        uuid.UUID
	RouteName      string // joined from the routes table for notification copy
	TripDate       time.Time
	DepartureTime  string // "15:04" wall-clock time, display only
	AvailableSeats int
	BookedSeats    int
	BookingEnabled bool
	Released       bool
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasCapacity reports whether at least one seat is still open.
// This is an advisory read; the authoritative check happens inside the
// booking store's conditional update.
func (s Schedule) HasCapacity() bool {
	return s.BookedSeats < s.AvailableSeats
}
