package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
	"github.com/ridewise/backend/internal/repo"
)

// NotificationService exposes the read side of the notification store to the
// HTTP layer.
type NotificationService struct {
	notifications repo.NotificationRepo
}

func NewNotificationService(notifications repo.NotificationRepo) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListByUser returns one page of a user's notifications, newest first, plus
// the total count. An empty page is a non-nil empty slice.
func (s *NotificationService) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Notification, int, error) {
	notifications, total, err := s.notifications.ListByUserPaged(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("service.NotificationService.ListByUser: %w", err)
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, int(total), nil
}

// MarkRead marks a notification as read. Marking an already-read notification
// succeeds; an unknown ID returns domain.ErrNotFound.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("service.NotificationService.MarkRead: %w", err)
	}
	return nil
}
