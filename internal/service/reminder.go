// Package service contains the business logic of the reminder/booking
// pipeline. Services validate inputs, enforce business rules, and orchestrate
// repo calls. No SQL lives here; services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
	"github.com/ridewise/backend/internal/repo"
)

// ReminderService computes which (student, schedule) pairs still need a
// day-before reminder for a target date. It is a stateless coordinator: all
// state lives in the stores it reads.
type ReminderService struct {
	schedules repo.ScheduleRepo
	students  repo.StudentRepo
	bookings  repo.BookingRepo
}

// NewReminderService constructs a ReminderService backed by the provided repos.
func NewReminderService(schedules repo.ScheduleRepo, students repo.StudentRepo, bookings repo.BookingRepo) *ReminderService {
	return &ReminderService{schedules: schedules, students: students, bookings: bookings}
}

// bookingKey identifies an existing booking either precisely by
// (student, schedule) or, for legacy rows without a schedule reference, by
// (student, route). The two key spaces cannot collide because the second
// component is a different entity's ID.
type bookingKey struct {
	studentID uuid.UUID
	otherID   uuid.UUID
}

// GenerateReminders returns one ReminderCandidate per (student, unbooked
// schedule) pair on targetDate, plus scan statistics.
//
// A student allocated to a route with multiple same-day schedules yields one
// candidate per unbooked schedule: each schedule is independently bookable.
// No schedules or no students on the date is an empty result, not an error.
// Output order is not part of the contract.
func (s *ReminderService) GenerateReminders(ctx context.Context, targetDate time.Time) ([]domain.ReminderCandidate, domain.ReminderStats, error) {
	var stats domain.ReminderStats

	schedules, err := s.schedules.ListBookableByDate(ctx, targetDate)
	if err != nil {
		return nil, stats, fmt.Errorf("service.ReminderService.GenerateReminders: %w", err)
	}
	stats.SchedulesScanned = len(schedules)
	if len(schedules) == 0 {
		return []domain.ReminderCandidate{}, stats, nil
	}

	byRoute := make(map[uuid.UUID][]domain.Schedule)
	for _, sch := range schedules {
		byRoute[sch.RouteID] = append(byRoute[sch.RouteID], sch)
	}
	routeIDs := make([]uuid.UUID, 0, len(byRoute))
	for id := range byRoute {
		routeIDs = append(routeIDs, id)
	}

	students, err := s.students.ListEnrolledByRoutes(ctx, routeIDs)
	if err != nil {
		return nil, stats, fmt.Errorf("service.ReminderService.GenerateReminders: %w", err)
	}
	stats.StudentsScanned = len(students)

	bookings, err := s.bookings.ListByTripDate(ctx, targetDate,
		[]string{domain.BookingStatusConfirmed, domain.BookingStatusPending})
	if err != nil {
		return nil, stats, fmt.Errorf("service.ReminderService.GenerateReminders: %w", err)
	}

	// byScheduleKey covers modern bookings; byRouteKey covers legacy rows
	// lacking a schedule reference, which suppress every same-day schedule on
	// the student's route.
	byScheduleKey := make(map[bookingKey]struct{})
	byRouteKey := make(map[bookingKey]struct{})
	for _, b := range bookings {
		if b.ScheduleID != nil {
			byScheduleKey[bookingKey{b.StudentID, *b.ScheduleID}] = struct{}{}
		} else {
			byRouteKey[bookingKey{b.StudentID, b.RouteID}] = struct{}{}
		}
	}

	candidates := []domain.ReminderCandidate{}
	for _, student := range students {
		for _, sch := range byRoute[student.AllocatedRouteID] {
			if _, booked := byScheduleKey[bookingKey{student.ID, sch.ID}]; booked {
				continue
			}
			if _, booked := byRouteKey[bookingKey{student.ID, sch.RouteID}]; booked {
				stats.FallbackSuppressed++
				continue
			}
			candidates = append(candidates, domain.ReminderCandidate{
				StudentID:     student.ID,
				ScheduleID:    sch.ID,
				RouteID:       sch.RouteID,
				RouteName:     sch.RouteName,
				TripDate:      sch.TripDate,
				DepartureTime: sch.DepartureTime,
				BoardingStop:  student.BoardingStop,
			})
		}
	}
	stats.RemindersGenerated = len(candidates)

	return candidates, stats, nil
}
