package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ridewise/backend/internal/domain"
)

// ActionLogRepo records processed notification actions for auditing.
// Callers treat writes as best-effort: a failed audit row never fails the
// action that produced it.
type ActionLogRepo interface {
	// Record inserts one audit row.
	Record(ctx context.Context, entry domain.ActionLogEntry) error
}

// pgActionLogRepo is the Postgres implementation of ActionLogRepo.
type pgActionLogRepo struct {
	db db
}

// NewActionLogRepo constructs an ActionLogRepo backed by the provided db
// connection.
func NewActionLogRepo(db db) ActionLogRepo {
	return &pgActionLogRepo{db: db}
}

// Record inserts one audit row.
func (r *pgActionLogRepo) Record(ctx context.Context, entry domain.ActionLogEntry) error {
	const q = `
		INSERT INTO booking_actions (notification_id, student_id, schedule_id,
		                             action, result, detail)
		VALUES (@notification_id, @student_id, @schedule_id,
		        @action, @result, @detail)`

	args := pgx.NamedArgs{
		"notification_id": entry.NotificationID,
		"student_id":      entry.StudentID,
		"schedule_id":     entry.ScheduleID,
		"action":          string(entry.Action),
		"result":          entry.Result,
		"detail":          entry.Detail,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.ActionLogRepo.Record: %w", err)
	}
	return nil
}
