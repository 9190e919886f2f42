package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReminderCandidate is the ephemeral unit of work handed from the reminder
// generator to the dispatcher: one student who has not yet booked one
// specific schedule. It is never persisted.
type ReminderCandidate struct {
	StudentID     uuid.UUID
	ScheduleID    uuid.UUID
	RouteID       uuid.UUID
	RouteName     string
	TripDate      time.Time
	DepartureTime string
	BoardingStop  string
}

// ReminderStats summarizes one generator run.
// FallbackSuppressed counts pairs that were skipped only because a legacy
// booking without a schedule reference matched on (student, route); operators
// watch it to judge whether the legacy fallback still earns its keep.
type ReminderStats struct {
	SchedulesScanned   int `json:"schedules_scanned"`
	StudentsScanned    int `json:"students_scanned"`
	RemindersGenerated int `json:"reminders_generated"`
	FallbackSuppressed int `json:"fallback_suppressed"`
}
