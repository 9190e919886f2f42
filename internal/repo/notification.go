package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ridewise/backend/internal/domain"
)

// NotificationRepo defines the persistence operations for notifications.
// Records are created by the dispatcher and read/marked by the action
// processor and the listing endpoint; they are never deleted here.
type NotificationRepo interface {
	// Create inserts a new notification and returns the persisted record
	// (with DB-generated id and created_at populated).
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)

	// GetByID retrieves a single notification by its UUID primary key.
	// Returns domain.ErrNotFound if no notification with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error)

	// ListByUserPaged returns one page of a user's notifications, newest
	// first, together with the user's total notification count.
	ListByUserPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Notification, int64, error)

	// MarkRead flips the read flag to true. Marking an already-read
	// notification is a no-op, not an error.
	// Returns domain.ErrNotFound if the notification does not exist.
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// pgNotificationRepo is the Postgres implementation of NotificationRepo.
type pgNotificationRepo struct {
	db db
}

// NewNotificationRepo constructs a NotificationRepo backed by the provided
// db connection.
func NewNotificationRepo(db db) NotificationRepo {
	return &pgNotificationRepo{db: db}
}

// Create inserts a new notification row. The action set and metadata union
// are marshalled explicitly so the stored JSON shape is owned by the domain
// types, not by pgx codec defaults.
func (r *pgNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	actions, err := json.Marshal(n.Actions)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.Create: marshal actions: %w", err)
	}
	meta, err := json.Marshal(n.Meta)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.Create: marshal meta: %w", err)
	}

	const q = `
		INSERT INTO notifications (user_id, title, message, category, read,
		                           actions, tags, meta, created_by)
		VALUES (@user_id, @title, @message, @category, false,
		        @actions, @tags, @meta, @created_by)
		RETURNING id, created_at`

	args := pgx.NamedArgs{
		"user_id":    n.UserID,
		"title":      n.Title,
		"message":    n.Message,
		"category":   n.Category,
		"actions":    actions,
		"tags":       n.Tags,
		"meta":       meta,
		"created_by": n.CreatedBy,
	}

	result := n
	result.Read = false
	if err := r.db.QueryRow(ctx, q, args).Scan(&result.ID, &result.CreatedAt); err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.Create: %w", err)
	}
	return result, nil
}

const notificationColumns = `
	id, user_id, title, message, category, read, actions, tags, meta,
	created_by, created_at`

// GetByID retrieves a notification by primary key.
func (r *pgNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	q := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanNotification(row)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByUserPaged returns a page of the user's notifications, newest first.
func (r *pgNotificationRepo) ListByUserPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Notification, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = @user_id`,
		pgx.NamedArgs{"user_id": userID},
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.NotificationRepo.ListByUserPaged: count: %w", err)
	}

	q := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = @user_id
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.NotificationRepo.ListByUserPaged: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.NotificationRepo.ListByUserPaged: scan: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.NotificationRepo.ListByUserPaged: rows: %w", err)
	}

	return notifications, total, nil
}

// MarkRead flips the read flag. The UPDATE matches on id alone, so repeating
// the call on an already-read row still affects one row and stays a no-op.
func (r *pgNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE notifications SET read = true WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.NotificationRepo.MarkRead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.NotificationRepo.MarkRead: %w", domain.ErrNotFound)
	}
	return nil
}

// scanNotification maps a single database row into a domain.Notification,
// unmarshalling the actions and metadata JSON columns.
func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n       domain.Notification
		id      pgtype.UUID
		userID  pgtype.UUID
		actions []byte
		meta    []byte
	)

	err := s.Scan(&id, &userID, &n.Title, &n.Message, &n.Category, &n.Read,
		&actions, &n.Tags, &meta, &n.CreatedBy, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotFound
		}
		return domain.Notification{}, err
	}

	n.ID = uuid.UUID(id.Bytes)
	n.UserID = uuid.UUID(userID.Bytes)
	if err := json.Unmarshal(actions, &n.Actions); err != nil {
		return domain.Notification{}, fmt.Errorf("unmarshal actions: %w", err)
	}
	if err := json.Unmarshal(meta, &n.Meta); err != nil {
		return domain.Notification{}, fmt.Errorf("unmarshal meta: %w", err)
	}

	return n, nil
}
