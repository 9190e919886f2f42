package handler_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
	"github.com/ridewise/backend/internal/handler"
	"github.com/ridewise/backend/internal/service"
)

// Hand-written functional test doubles for the handler's consumer interfaces.

type mockRunner struct {
	run func(ctx context.Context, targetDate time.Time) (service.RunSummary, error)
}

func (m *mockRunner) Run(ctx context.Context, targetDate time.Time) (service.RunSummary, error) {
	if m.run != nil {
		return m.run(ctx, targetDate)
	}
	return service.RunSummary{}, nil
}

var _ handler.ReminderRunner = (*mockRunner)(nil)

type mockProcessor struct {
	process func(ctx context.Context, req domain.ActionRequest) domain.ActionResult
}

func (m *mockProcessor) Process(ctx context.Context, req domain.ActionRequest) domain.ActionResult {
	if m.process != nil {
		return m.process(ctx, req)
	}
	return domain.ActionResult{}
}

var _ handler.ActionProcessor = (*mockProcessor)(nil)

type mockNotifications struct {
	listByUser func(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Notification, int, error)
	markRead   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockNotifications) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Notification, int, error) {
	if m.listByUser != nil {
		return m.listByUser(ctx, userID, params)
	}
	return []domain.Notification{}, 0, nil
}
func (m *mockNotifications) MarkRead(ctx context.Context, id uuid.UUID) error {
	if m.markRead != nil {
		return m.markRead(ctx, id)
	}
	return nil
}

var _ handler.NotificationServicer = (*mockNotifications)(nil)

// serve runs one request through a Server wired to the given mocks and
// returns the recorded response.
func serve(t *testing.T, runner handler.ReminderRunner, processor handler.ActionProcessor,
	notifications handler.NotificationServicer, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.NewServer(runner, processor, notifications).Routes().ServeHTTP(rec, req)
	return rec
}
