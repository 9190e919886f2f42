// Package handler implements the HTTP handlers for the reminder API.
// All handlers are methods on Server. Methods are split into concern-specific
// files (health.go, reminder.go, etc.) but all share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
	"github.com/ridewise/backend/internal/service"
)

// ReminderRunner runs one reminder pipeline pass. Defining the interface here
// (in the consumer package) follows the Go convention: "accept interfaces,
// return concrete types". It lets handler tests inject a mock without touching
// the database or service layer.
type ReminderRunner interface {
	Run(ctx context.Context, targetDate time.Time) (service.RunSummary, error)
}

// ActionProcessor processes one notification action.
type ActionProcessor interface {
	Process(ctx context.Context, req domain.ActionRequest) domain.ActionResult
}

// NotificationServicer defines the notification read operations the handlers
// depend on.
type NotificationServicer interface {
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Notification, int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	pipeline      ReminderRunner
	actions       ActionProcessor
	notifications NotificationServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(pipeline ReminderRunner, actions ActionProcessor, notifications NotificationServicer) *Server {
	return &Server{pipeline: pipeline, actions: actions, notifications: notifications}
}

// Routes registers every endpoint on a fresh chi router. Middleware is wired
// by the caller (main.go) so tests can mount the routes bare.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/reminders/run", s.RunReminders)
		r.Post("/notifications/action", s.ProcessAction)
		r.Get("/users/{userID}/notifications", s.ListNotifications)
		r.Put("/notifications/{notificationID}/read", s.MarkNotificationRead)
	})
	return r
}
