package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses. The pipeline creates bookings as confirmed; pending and
// cancelled rows come from other booking surfaces but still count against
// reminder generation (a pending booking suppresses a reminder).
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusPending   = "pending"
	BookingStatusCancelled = "cancelled"
)

// BookingSourcePush tags bookings created through an interactive push action,
// so reports can separate them from app or admin bookings.
const BookingSourcePush = "push_notification"

// DefaultBoardingStop is the last-resort boarding point when neither the
// action request nor the student record carries one.
const DefaultBoardingStop = "Main Gate"

// Booking represents a reserved seat on a schedule. At most one booking may
// exist per (student, schedule) pair; the booking store enforces this with a
// unique constraint.
//
// ScheduleID is a pointer because legacy bookings created before schedules
// were modelled reference only a route and date. The reminder generator
// honours those rows through a (student, route) fallback key.
type Booking struct {
	ID            uuid.UUID
	StudentID     uuid.UUID
	ScheduleID    *uuid.UUID
	RouteID       uuid.UUID
	TripDate      time.Time
	BoardingStop  string
	Amount        int64 // minor currency units; 0 for pre-paid transport plans
	Status        string
	PaymentStatus string
	Source        string
	SeatNumber    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
