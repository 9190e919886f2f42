package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/ridewise/backend/testutil"
)

// newTestTx opens a single transaction against the test database. Every repo
// constructed on it shares the same uncommitted state, and the rollback in
// Cleanup gives free per-test isolation without any manual teardown.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// querier is the narrow surface the fixture helpers need; both pgx.Tx and
// *pgxpool.Pool satisfy it.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mustCreateRoute inserts a route and returns its generated ID.
func mustCreateRoute(t *testing.T, q querier, name string, active bool) uuid.UUID {
	t.Helper()
	var id pgtype.UUID
	err := q.QueryRow(context.Background(),
		`INSERT INTO routes (name, active) VALUES ($1, $2) RETURNING id`,
		name, active,
	).Scan(&id)
	require.NoError(t, err, "create route fixture")
	return uuid.UUID(id.Bytes)
}

// scheduleFixture holds the columns a schedule insert needs. Use
// defaultSchedule for a bookable baseline and override fields per test.
type scheduleFixture struct {
	routeID        uuid.UUID
	tripDate       time.Time
	departureTime  string
	availableSeats int
	bookedSeats    int
	bookingEnabled bool
	released       bool
	status         string
}

// defaultSchedule returns a fixture that passes every bookability filter.
func defaultSchedule(routeID uuid.UUID, tripDate time.Time) scheduleFixture {
	return scheduleFixture{
		routeID:        routeID,
		tripDate:       tripDate,
		departureTime:  "07:30",
		availableSeats: 40,
		bookedSeats:    0,
		bookingEnabled: true,
		released:       true,
		status:         "scheduled",
	}
}

// mustCreateSchedule inserts a schedule and returns its generated ID.
func mustCreateSchedule(t *testing.T, q querier, f scheduleFixture) uuid.UUID {
	t.Helper()
	var id pgtype.UUID
	err := q.QueryRow(context.Background(),
		`INSERT INTO schedules (route_id, trip_date, departure_time, available_seats,
		                        booked_seats, booking_enabled, released, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		f.routeID, f.tripDate, f.departureTime, f.availableSeats,
		f.bookedSeats, f.bookingEnabled, f.released, f.status,
	).Scan(&id)
	require.NoError(t, err, "create schedule fixture")
	return uuid.UUID(id.Bytes)
}

// mustCreateStudent inserts a transport-enrolled student on routeID and
// returns its generated ID.
func mustCreateStudent(t *testing.T, q querier, routeID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	return mustCreateStudentStop(t, q, routeID, name, "Gate 4", true)
}

// mustCreateStudentStop is mustCreateStudent with the boarding stop and
// enrollment flag exposed.
func mustCreateStudentStop(t *testing.T, q querier, routeID uuid.UUID, name, boardingStop string, enrolled bool) uuid.UUID {
	t.Helper()
	var id pgtype.UUID
	err := q.QueryRow(context.Background(),
		`INSERT INTO students (name, allocated_route_id, boarding_stop, transport_enrolled)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		name, routeID, boardingStop, enrolled,
	).Scan(&id)
	require.NoError(t, err, "create student fixture")
	return uuid.UUID(id.Bytes)
}

// tripDate returns a fixed future date used across repo tests. date columns
// carry no time component, so midnight UTC round-trips exactly.
func tripDate() time.Time {
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}
