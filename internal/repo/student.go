package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ridewise/backend/internal/domain"
)

// StudentRepo defines the read operations the pipeline needs over students.
// Students are owned by an external enrollment system and never mutated here.
type StudentRepo interface {
	// ListEnrolledByRoutes returns all transport-enrolled students whose
	// allocated route is one of routeIDs.
	ListEnrolledByRoutes(ctx context.Context, routeIDs []uuid.UUID) ([]domain.Student, error)

	// GetByID retrieves a single student by its UUID primary key.
	// Returns domain.ErrNotFound if no student with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Student, error)
}

// pgStudentRepo is the Postgres implementation of StudentRepo.
type pgStudentRepo struct {
	db db
}

// NewStudentRepo constructs a StudentRepo backed by the provided db connection.
func NewStudentRepo(db db) StudentRepo {
	return &pgStudentRepo{db: db}
}

const studentColumns = `
	id, name, phone, allocated_route_id, boarding_stop, transport_enrolled,
	created_at, updated_at`

// ListEnrolledByRoutes returns enrolled students allocated to the given routes.
func (r *pgStudentRepo) ListEnrolledByRoutes(ctx context.Context, routeIDs []uuid.UUID) ([]domain.Student, error) {
	if len(routeIDs) == 0 {
		return nil, nil
	}

	q := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE transport_enrolled
		  AND allocated_route_id = ANY(@route_ids)
		ORDER BY name, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"route_ids": routeIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.StudentRepo.ListEnrolledByRoutes: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StudentRepo.ListEnrolledByRoutes: scan: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StudentRepo.ListEnrolledByRoutes: rows: %w", err)
	}

	return students, nil
}

// GetByID retrieves a student by primary key.
func (r *pgStudentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Student, error) {
	q := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanStudent(row)
	if err != nil {
		return domain.Student{}, fmt.Errorf("repo.StudentRepo.GetByID: %w", err)
	}
	return result, nil
}

// scanStudent maps a single database row into a domain.Student.
func scanStudent(s scanner) (domain.Student, error) {
	var (
		st      domain.Student
		id      pgtype.UUID
		routeID pgtype.UUID
	)

	err := s.Scan(&id, &st.Name, &st.Phone, &routeID, &st.BoardingStop,
		&st.TransportEnrolled, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Student{}, domain.ErrNotFound
		}
		return domain.Student{}, err
	}

	st.ID = uuid.UUID(id.Bytes)
	st.AllocatedRouteID = uuid.UUID(routeID.Bytes)

	return st, nil
}
