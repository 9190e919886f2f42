// Package repo contains all database access logic for the reminder/booking
// pipeline. Each resource has its own file with an interface and a Postgres
// implementation. No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ridewise/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ScheduleRepo defines the read operations the pipeline needs over schedules.
// Seat counters are mutated exclusively through BookingRepo.Reserve.
type ScheduleRepo interface {
	// ListBookableByDate returns all schedules on date that a reminder may be
	// generated for: status scheduled, booking enabled, administratively
	// released, on an active route, and with at least one open seat.
	ListBookableByDate(ctx context.Context, date time.Time) ([]domain.Schedule, error)

	// GetByID retrieves one schedule with its route name joined in,
	// regardless of capacity or release state.
	// Returns domain.ErrNotFound if no schedule with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Schedule, error)
}

// pgScheduleRepo is the Postgres implementation of ScheduleRepo.
type pgScheduleRepo struct {
	db db
}

// NewScheduleRepo constructs a ScheduleRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewScheduleRepo(db db) ScheduleRepo {
	return &pgScheduleRepo{db: db}
}

const scheduleColumns = `
	s.id, s.route_id, r.name, s.trip_date, s.departure_time,
	s.available_seats, s.booked_seats, s.booking_enabled, s.released,
	s.status, s.created_at, s.updated_at`

// ListBookableByDate returns the reminder-eligible schedules for a date.
func (r *pgScheduleRepo) ListBookableByDate(ctx context.Context, date time.Time) ([]domain.Schedule, error) {
	q := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		JOIN routes r ON r.id = s.route_id
		WHERE s.trip_date = @trip_date
		  AND s.status = 'scheduled'
		  AND s.booking_enabled
		  AND s.released
		  AND r.active
		  AND s.booked_seats < s.available_seats
		ORDER BY s.departure_time, s.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_date": date})
	if err != nil {
		return nil, fmt.Errorf("repo.ScheduleRepo.ListBookableByDate: %w", err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ScheduleRepo.ListBookableByDate: scan: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ScheduleRepo.ListBookableByDate: rows: %w", err)
	}

	return schedules, nil
}

// GetByID retrieves a schedule by primary key.
func (r *pgScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Schedule, error) {
	q := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		JOIN routes r ON r.id = s.route_id
		WHERE s.id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.GetByID: %w", err)
	}
	return result, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanSchedule maps a single database row into a domain.Schedule.
func scanSchedule(s scanner) (domain.Schedule, error) {
	var (
		sch      domain.Schedule
		id       pgtype.UUID
		routeID  pgtype.UUID
		tripDate pgtype.Date
	)

	err := s.Scan(&id, &routeID, &sch.RouteName, &tripDate, &sch.DepartureTime,
		&sch.AvailableSeats, &sch.BookedSeats, &sch.BookingEnabled, &sch.Released,
		&sch.Status, &sch.CreatedAt, &sch.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Schedule{}, domain.ErrNotFound
		}
		return domain.Schedule{}, err
	}

	sch.ID = uuid.UUID(id.Bytes)
	sch.RouteID = uuid.UUID(routeID.Bytes)
	sch.TripDate = tripDate.Time

	return sch, nil
}
