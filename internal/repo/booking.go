package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
)

// uniqueViolation is the SQLSTATE Postgres reports when an insert hits the
// (student_id, schedule_id) unique constraint.
const uniqueViolation = "23505"

// txBeginner extends the minimal db interface with transaction support.
// *pgxpool.Pool satisfies it directly; pgx.Tx satisfies it too (Begin opens a
// savepoint), so repo integration tests keep their rollback isolation even
// across Reserve calls.
type txBeginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// BookingRepo defines the persistence operations for bookings.
//
// Reserve is the pipeline's single critical section: it must create the
// booking row and increment the schedule's seat counter as one atomic unit,
// so that under N concurrent confirmations against K remaining seats exactly
// min(N, K) succeed and the rest observe domain.ErrNoSeats.
type BookingRepo interface {
	// Reserve atomically creates a booking and increments the schedule's
	// booked_seats, but only while booked_seats < available_seats.
	// The returned booking carries the DB-generated ID, timestamps, and the
	// assigned seat number (the post-increment booked count).
	//
	// Returns domain.ErrAlreadyBooked if a booking already exists for the
	// (student, schedule) pair, including when the schedule is also full,
	// domain.ErrNoSeats if the schedule is full, and domain.ErrNotFound if
	// the schedule does not exist.
	Reserve(ctx context.Context, booking domain.Booking) (domain.Booking, error)

	// ListByTripDate returns all bookings on date whose status is in statuses.
	// The reminder generator uses it to build the already-booked membership set.
	ListByTripDate(ctx context.Context, date time.Time, statuses []string) ([]domain.Booking, error)
}

// pgBookingRepo is the Postgres implementation of BookingRepo.
type pgBookingRepo struct {
	db txBeginner
}

// NewBookingRepo constructs a BookingRepo backed by the provided connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBookingRepo(db txBeginner) BookingRepo {
	return &pgBookingRepo{db: db}
}

// Reserve performs the conditional seat increment and the booking insert in a
// single transaction. The increment runs first: its WHERE clause is the
// authoritative capacity check, and the row lock it takes serializes
// concurrent reservations on the same schedule. The insert then either
// succeeds or trips the unique constraint, in which case the rollback undoes
// the increment. When the increment matches no row the existing-booking check
// runs before the capacity verdict, so a duplicate reservation reads as
// already booked even after the schedule filled up.
func (r *pgBookingRepo) Reserve(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	if booking.ScheduleID == nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Reserve: %w: schedule id is required", domain.ErrValidation)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Reserve: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	const incrementQ = `
		UPDATE schedules
		SET booked_seats = booked_seats + 1,
		    updated_at   = now()
		WHERE id = @schedule_id
		  AND booked_seats < available_seats
		RETURNING booked_seats`

	var seat int
	err = tx.QueryRow(ctx, incrementQ, pgx.NamedArgs{"schedule_id": *booking.ScheduleID}).Scan(&seat)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, r.classifyZeroRows(ctx, tx, booking.StudentID, *booking.ScheduleID)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Reserve: increment: %w", err)
	}

	const insertQ = `
		INSERT INTO bookings (student_id, schedule_id, route_id, trip_date,
		                      boarding_stop, amount, status, payment_status,
		                      source, seat_number)
		VALUES (@student_id, @schedule_id, @route_id, @trip_date,
		        @boarding_stop, @amount, @status, @payment_status,
		        @source, @seat_number)
		RETURNING id, created_at, updated_at`

	args := pgx.NamedArgs{
		"student_id":     booking.StudentID,
		"schedule_id":    *booking.ScheduleID,
		"route_id":       booking.RouteID,
		"trip_date":      booking.TripDate,
		"boarding_stop":  booking.BoardingStop,
		"amount":         booking.Amount,
		"status":         booking.Status,
		"payment_status": booking.PaymentStatus,
		"source":         booking.Source,
		"seat_number":    seat,
	}

	result := booking
	result.SeatNumber = seat
	err = tx.QueryRow(ctx, insertQ, args).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Reserve: %w", domain.ErrAlreadyBooked)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Reserve: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Reserve: commit: %w", err)
	}
	return result, nil
}

// classifyZeroRows distinguishes the reasons the conditional increment can
// match zero rows. An existing (student, schedule) booking wins over a full
// schedule: the student's own earlier confirm may be what filled the last
// seat, and their retry must read as already booked, not as sold out.
func (r *pgBookingRepo) classifyZeroRows(ctx context.Context, tx pgx.Tx, studentID, scheduleID uuid.UUID) error {
	var booked bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings
		 WHERE student_id = @student_id AND schedule_id = @schedule_id)`,
		pgx.NamedArgs{"student_id": studentID, "schedule_id": scheduleID},
	).Scan(&booked)
	if err != nil {
		return fmt.Errorf("repo.BookingRepo.Reserve: classify: %w", err)
	}
	if booked {
		return fmt.Errorf("repo.BookingRepo.Reserve: %w", domain.ErrAlreadyBooked)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schedules WHERE id = @id)`,
		pgx.NamedArgs{"id": scheduleID},
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("repo.BookingRepo.Reserve: classify: %w", err)
	}
	if !exists {
		return fmt.Errorf("repo.BookingRepo.Reserve: %w", domain.ErrNotFound)
	}
	return fmt.Errorf("repo.BookingRepo.Reserve: %w", domain.ErrNoSeats)
}

// ListByTripDate returns all bookings on date with one of the given statuses.
func (r *pgBookingRepo) ListByTripDate(ctx context.Context, date time.Time, statuses []string) ([]domain.Booking, error) {
	const q = `
		SELECT id, student_id, schedule_id, route_id, trip_date, boarding_stop,
		       amount, status, payment_status, source, seat_number,
		       created_at, updated_at
		FROM bookings
		WHERE trip_date = @trip_date
		  AND status = ANY(@statuses)
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_date": date, "statuses": statuses})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByTripDate: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.ListByTripDate: scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByTripDate: rows: %w", err)
	}

	return bookings, nil
}

// scanBooking maps a single database row into a domain.Booking.
// It handles the UUID and nullable schedule_id conversions.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b          domain.Booking
		id         pgtype.UUID
		studentID  pgtype.UUID
		scheduleID pgtype.UUID
		routeID    pgtype.UUID
		tripDate   pgtype.Date
	)

	err := s.Scan(&id, &studentID, &scheduleID, &routeID, &tripDate,
		&b.BoardingStop, &b.Amount, &b.Status, &b.PaymentStatus, &b.Source,
		&b.SeatNumber, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.StudentID = uuid.UUID(studentID.Bytes)
	b.RouteID = uuid.UUID(routeID.Bytes)
	b.TripDate = tripDate.Time
	if scheduleID.Valid {
		sid := uuid.UUID(scheduleID.Bytes)
		b.ScheduleID = &sid
	}

	return b, nil
}
