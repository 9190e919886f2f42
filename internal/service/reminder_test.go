package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridewise/backend/internal/domain"
	"github.com/ridewise/backend/internal/service"
)

var testDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

func schedule(routeID uuid.UUID, routeName, departure string) domain.Schedule {
	return domain.Schedule{
		ID:             uuid.New(),
		RouteID:        routeID,
		RouteName:      routeName,
		TripDate:       testDate,
		DepartureTime:  departure,
		AvailableSeats: 40,
		BookingEnabled: true,
		Released:       true,
		Status:         domain.ScheduleStatusScheduled,
	}
}

func student(routeID uuid.UUID, name string) domain.Student {
	return domain.Student{
		ID:                uuid.New(),
		Name:              name,
		AllocatedRouteID:  routeID,
		BoardingStop:      "Gate 4",
		TransportEnrolled: true,
	}
}

func TestReminderService_GenerateReminders(t *testing.T) {
	routeID := uuid.New()
	sch := schedule(routeID, "Route 12 North", "07:30")
	ada := student(routeID, "Ada Okafor")
	ben := student(routeID, "Ben Hale")

	svc := service.NewReminderService(
		&mockScheduleRepo{
			listBookableByDate: func(_ context.Context, date time.Time) ([]domain.Schedule, error) {
				assert.True(t, date.Equal(testDate))
				return []domain.Schedule{sch}, nil
			},
		},
		&mockStudentRepo{
			listEnrolledByRoutes: func(_ context.Context, routeIDs []uuid.UUID) ([]domain.Student, error) {
				assert.Equal(t, []uuid.UUID{routeID}, routeIDs)
				return []domain.Student{ada, ben}, nil
			},
		},
		&mockBookingRepo{
			listByTripDate: func(_ context.Context, _ time.Time, statuses []string) ([]domain.Booking, error) {
				assert.ElementsMatch(t, []string{domain.BookingStatusConfirmed, domain.BookingStatusPending}, statuses)
				// Ben already booked this schedule.
				return []domain.Booking{{StudentID: ben.ID, ScheduleID: &sch.ID, RouteID: routeID}}, nil
			},
		},
	)

	candidates, stats, err := svc.GenerateReminders(context.Background(), testDate)

	require.NoError(t, err)
	require.Len(t, candidates, 1, "only the unbooked student gets a reminder")
	c := candidates[0]
	assert.Equal(t, ada.ID, c.StudentID)
	assert.Equal(t, sch.ID, c.ScheduleID)
	assert.Equal(t, "Route 12 North", c.RouteName)
	assert.Equal(t, "07:30", c.DepartureTime)
	assert.Equal(t, "Gate 4", c.BoardingStop)

	assert.Equal(t, 1, stats.SchedulesScanned)
	assert.Equal(t, 2, stats.StudentsScanned)
	assert.Equal(t, 1, stats.RemindersGenerated)
	assert.Equal(t, 0, stats.FallbackSuppressed)
}

func TestReminderService_GenerateReminders_MultipleSchedulesPerRoute(t *testing.T) {
	routeID := uuid.New()
	morning := schedule(routeID, "Route 12 North", "07:30")
	evening := schedule(routeID, "Route 12 North", "16:00")
	ada := student(routeID, "Ada Okafor")

	svc := service.NewReminderService(
		&mockScheduleRepo{
			listBookableByDate: func(_ context.Context, _ time.Time) ([]domain.Schedule, error) {
				return []domain.Schedule{morning, evening}, nil
			},
		},
		&mockStudentRepo{
			listEnrolledByRoutes: func(_ context.Context, _ []uuid.UUID) ([]domain.Student, error) {
				return []domain.Student{ada}, nil
			},
		},
		&mockBookingRepo{
			listByTripDate: func(_ context.Context, _ time.Time, _ []string) ([]domain.Booking, error) {
				// Ada booked the morning run; the evening one is still open.
				return []domain.Booking{{StudentID: ada.ID, ScheduleID: &morning.ID, RouteID: routeID}}, nil
			},
		},
	)

	candidates, stats, err := svc.GenerateReminders(context.Background(), testDate)

	require.NoError(t, err)
	require.Len(t, candidates, 1, "each schedule is independently bookable")
	assert.Equal(t, evening.ID, candidates[0].ScheduleID)
	assert.Equal(t, 1, stats.RemindersGenerated)
}

func TestReminderService_GenerateReminders_LegacyBookingSuppressesRoute(t *testing.T) {
	routeID := uuid.New()
	morning := schedule(routeID, "Route 12 North", "07:30")
	evening := schedule(routeID, "Route 12 North", "16:00")
	ada := student(routeID, "Ada Okafor")

	svc := service.NewReminderService(
		&mockScheduleRepo{
			listBookableByDate: func(_ context.Context, _ time.Time) ([]domain.Schedule, error) {
				return []domain.Schedule{morning, evening}, nil
			},
		},
		&mockStudentRepo{
			listEnrolledByRoutes: func(_ context.Context, _ []uuid.UUID) ([]domain.Student, error) {
				return []domain.Student{ada}, nil
			},
		},
		&mockBookingRepo{
			listByTripDate: func(_ context.Context, _ time.Time, _ []string) ([]domain.Booking, error) {
				// A legacy booking has no schedule reference. It suppresses
				// every same-day schedule on the student's route.
				return []domain.Booking{{StudentID: ada.ID, ScheduleID: nil, RouteID: routeID}}, nil
			},
		},
	)

	candidates, stats, err := svc.GenerateReminders(context.Background(), testDate)

	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, 2, stats.FallbackSuppressed)
}

func TestReminderService_GenerateReminders_NoSchedules(t *testing.T) {
	studentsCalled := false
	svc := service.NewReminderService(
		&mockScheduleRepo{
			listBookableByDate: func(_ context.Context, _ time.Time) ([]domain.Schedule, error) {
				return nil, nil
			},
		},
		&mockStudentRepo{
			listEnrolledByRoutes: func(_ context.Context, _ []uuid.UUID) ([]domain.Student, error) {
				studentsCalled = true
				return nil, nil
			},
		},
		&mockBookingRepo{},
	)

	candidates, stats, err := svc.GenerateReminders(context.Background(), testDate)

	require.NoError(t, err)
	assert.NotNil(t, candidates, "empty result is an empty slice, not nil")
	assert.Empty(t, candidates)
	assert.Equal(t, 0, stats.SchedulesScanned)
	assert.False(t, studentsCalled, "no schedules means no student scan")
}

func TestReminderService_GenerateReminders_StoreError(t *testing.T) {
	wantErr := errors.New("connection refused")
	svc := service.NewReminderService(
		&mockScheduleRepo{
			listBookableByDate: func(_ context.Context, _ time.Time) ([]domain.Schedule, error) {
				return nil, wantErr
			},
		},
		&mockStudentRepo{},
		&mockBookingRepo{},
	)

	_, _, err := svc.GenerateReminders(context.Background(), testDate)

	assert.ErrorIs(t, err, wantErr)
}
