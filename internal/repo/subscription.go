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

// SubscriptionRepo defines the persistence operations for push subscriptions.
// Registration happens in an external flow; the pipeline reads active
// subscriptions for fan-out and deactivates endpoints the transport reports
// permanently gone.
type SubscriptionRepo interface {
	// Create inserts a new subscription and returns the persisted record.
	// Re-registering an existing (user, endpoint) pair refreshes its keys and
	// reactivates it.
	Create(ctx context.Context, sub domain.PushSubscription) (domain.PushSubscription, error)

	// ListActiveByUser returns all active subscriptions for a user.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.PushSubscription, error)

	// Deactivate flips the active flag to false.
	// Returns domain.ErrNotFound if the subscription does not exist.
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// pgSubscriptionRepo is the Postgres implementation of SubscriptionRepo.
type pgSubscriptionRepo struct {
	db db
}

// NewSubscriptionRepo constructs a SubscriptionRepo backed by the provided
// db connection.
func NewSubscriptionRepo(db db) SubscriptionRepo {
	return &pgSubscriptionRepo{db: db}
}

const subscriptionColumns = `
	id, user_id, user_type, endpoint, p256dh_key, auth_key, active,
	created_at, updated_at`

// Create upserts a subscription on (user_id, endpoint). A browser that
// re-subscribes gets fresh keys under the same endpoint, and a previously
// deactivated endpoint comes back to life.
func (r *pgSubscriptionRepo) Create(ctx context.Context, sub domain.PushSubscription) (domain.PushSubscription, error) {
	q := `
		INSERT INTO push_subscriptions (user_id, user_type, endpoint, p256dh_key, auth_key)
		VALUES (@user_id, @user_type, @endpoint, @p256dh_key, @auth_key)
		ON CONFLICT (user_id, endpoint) DO UPDATE
		SET p256dh_key = EXCLUDED.p256dh_key,
		    auth_key   = EXCLUDED.auth_key,
		    user_type  = EXCLUDED.user_type,
		    active     = true,
		    updated_at = now()
		RETURNING ` + subscriptionColumns

	args := pgx.NamedArgs{
		"user_id":    sub.UserID,
		"user_type":  sub.UserType,
		"endpoint":   sub.Endpoint,
		"p256dh_key": sub.P256dhKey,
		"auth_key":   sub.AuthKey,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanSubscription(row)
	if err != nil {
		return domain.PushSubscription{}, fmt.Errorf("repo.SubscriptionRepo.Create: %w", err)
	}
	return result, nil
}

// ListActiveByUser returns the user's active subscriptions, oldest first.
func (r *pgSubscriptionRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.PushSubscription, error) {
	q := `
		SELECT ` + subscriptionColumns + `
		FROM push_subscriptions
		WHERE user_id = @user_id AND active
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.SubscriptionRepo.ListActiveByUser: %w", err)
	}
	defer rows.Close()

	var subs []domain.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SubscriptionRepo.ListActiveByUser: scan: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SubscriptionRepo.ListActiveByUser: rows: %w", err)
	}

	return subs, nil
}

// Deactivate marks a subscription inactive after a permanent delivery failure.
func (r *pgSubscriptionRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE push_subscriptions
		SET active = false, updated_at = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.SubscriptionRepo.Deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SubscriptionRepo.Deactivate: %w", domain.ErrNotFound)
	}
	return nil
}

// scanSubscription maps a single database row into a domain.PushSubscription.
func scanSubscription(s scanner) (domain.PushSubscription, error) {
	var (
		sub    domain.PushSubscription
		id     pgtype.UUID
		userID pgtype.UUID
	)

	err := s.Scan(&id, &userID, &sub.UserType, &sub.Endpoint, &sub.P256dhKey,
		&sub.AuthKey, &sub.Active, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PushSubscription{}, domain.ErrNotFound
		}
		return domain.PushSubscription{}, err
	}

	sub.ID = uuid.UUID(id.Bytes)
	sub.UserID = uuid.UUID(userID.Bytes)

	return sub, nil
}
