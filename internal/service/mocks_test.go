package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
	"github.com/ridewise/backend/internal/push"
	"github.com/ridewise/backend/internal/repo"
	"github.com/ridewise/backend/internal/service"
)

// Hand-written functional test doubles. Each mock delegates to the func field
// when set and returns zero values otherwise, so tests only wire the calls
// they care about.

// ---- repo mocks ------------------------------------------------------------

type mockScheduleRepo struct {
	listBookableByDate func(ctx context.Context, date time.Time) ([]domain.Schedule, error)
	getByID            func(ctx context.Context, id uuid.UUID) (domain.Schedule, error)
}

func (m *mockScheduleRepo) ListBookableByDate(ctx context.Context, date time.Time) ([]domain.Schedule, error) {
	if m.listBookableByDate != nil {
		return m.listBookableByDate(ctx, date)
	}
	return nil, nil
}
func (m *mockScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Schedule, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return domain.Schedule{}, domain.ErrNotFound
}

var _ repo.ScheduleRepo = (*mockScheduleRepo)(nil)

type mockStudentRepo struct {
	listEnrolledByRoutes func(ctx context.Context, routeIDs []uuid.UUID) ([]domain.Student, error)
	getByID              func(ctx context.Context, id uuid.UUID) (domain.Student, error)
}

func (m *mockStudentRepo) ListEnrolledByRoutes(ctx context.Context, routeIDs []uuid.UUID) ([]domain.Student, error) {
	if m.listEnrolledByRoutes != nil {
		return m.listEnrolledByRoutes(ctx, routeIDs)
	}
	return nil, nil
}
func (m *mockStudentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Student, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return domain.Student{}, domain.ErrNotFound
}

var _ repo.StudentRepo = (*mockStudentRepo)(nil)

type mockBookingRepo struct {
	reserve        func(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	listByTripDate func(ctx context.Context, date time.Time, statuses []string) ([]domain.Booking, error)
}

func (m *mockBookingRepo) Reserve(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	if m.reserve != nil {
		return m.reserve(ctx, booking)
	}
	return domain.Booking{}, nil
}
func (m *mockBookingRepo) ListByTripDate(ctx context.Context, date time.Time, statuses []string) ([]domain.Booking, error) {
	if m.listByTripDate != nil {
		return m.listByTripDate(ctx, date, statuses)
	}
	return nil, nil
}

var _ repo.BookingRepo = (*mockBookingRepo)(nil)

type mockNotificationRepo struct {
	create         func(ctx context.Context, n domain.Notification) (domain.Notification, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Notification, error)
	listByUserPaged func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Notification, int64, error)
	markRead       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if m.create != nil {
		return m.create(ctx, n)
	}
	n.ID = uuid.New()
	return n, nil
}
func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return domain.Notification{}, domain.ErrNotFound
}
func (m *mockNotificationRepo) ListByUserPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Notification, int64, error) {
	if m.listByUserPaged != nil {
		return m.listByUserPaged(ctx, userID, p)
	}
	return nil, 0, nil
}
func (m *mockNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	if m.markRead != nil {
		return m.markRead(ctx, id)
	}
	return nil
}

var _ repo.NotificationRepo = (*mockNotificationRepo)(nil)

type mockSubscriptionRepo struct {
	create           func(ctx context.Context, sub domain.PushSubscription) (domain.PushSubscription, error)
	listActiveByUser func(ctx context.Context, userID uuid.UUID) ([]domain.PushSubscription, error)
	deactivate       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, sub domain.PushSubscription) (domain.PushSubscription, error) {
	if m.create != nil {
		return m.create(ctx, sub)
	}
	return sub, nil
}
func (m *mockSubscriptionRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.PushSubscription, error) {
	if m.listActiveByUser != nil {
		return m.listActiveByUser(ctx, userID)
	}
	return nil, nil
}
func (m *mockSubscriptionRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	if m.deactivate != nil {
		return m.deactivate(ctx, id)
	}
	return nil
}

var _ repo.SubscriptionRepo = (*mockSubscriptionRepo)(nil)

type mockActionLogRepo struct {
	record func(ctx context.Context, entry domain.ActionLogEntry) error
}

func (m *mockActionLogRepo) Record(ctx context.Context, entry domain.ActionLogEntry) error {
	if m.record != nil {
		return m.record(ctx, entry)
	}
	return nil
}

var _ repo.ActionLogRepo = (*mockActionLogRepo)(nil)

// ---- collaborator mocks ----------------------------------------------------

type mockEligibility struct {
	check func(ctx context.Context, studentID, scheduleID uuid.UUID) (domain.Eligibility, error)
}

func (m *mockEligibility) Check(ctx context.Context, studentID, scheduleID uuid.UUID) (domain.Eligibility, error) {
	if m.check != nil {
		return m.check(ctx, studentID, scheduleID)
	}
	return domain.Eligibility{CanBook: true}, nil
}

var _ service.EligibilityChecker = (*mockEligibility)(nil)

type mockSender struct {
	send func(ctx context.Context, sub domain.PushSubscription, payload push.Payload) error
}

func (m *mockSender) Send(ctx context.Context, sub domain.PushSubscription, payload push.Payload) error {
	if m.send != nil {
		return m.send(ctx, sub, payload)
	}
	return nil
}

var _ push.Sender = (*mockSender)(nil)

type mockOutcomeDispatcher struct {
	dispatchOutcome func(ctx context.Context, kind domain.NotificationKind, oc service.OutcomeContext) (service.DispatchResult, error)
}

func (m *mockOutcomeDispatcher) DispatchOutcome(ctx context.Context, kind domain.NotificationKind, oc service.OutcomeContext) (service.DispatchResult, error) {
	if m.dispatchOutcome != nil {
		return m.dispatchOutcome(ctx, kind, oc)
	}
	return service.DispatchResult{}, nil
}

var _ service.OutcomeDispatcher = (*mockOutcomeDispatcher)(nil)

type mockGenerator struct {
	generate func(ctx context.Context, targetDate time.Time) ([]domain.ReminderCandidate, domain.ReminderStats, error)
}

func (m *mockGenerator) GenerateReminders(ctx context.Context, targetDate time.Time) ([]domain.ReminderCandidate, domain.ReminderStats, error) {
	if m.generate != nil {
		return m.generate(ctx, targetDate)
	}
	return nil, domain.ReminderStats{}, nil
}

var _ service.ReminderGenerator = (*mockGenerator)(nil)

type mockReminderDispatcher struct {
	dispatchReminder func(ctx context.Context, c domain.ReminderCandidate) (service.DispatchResult, error)
}

func (m *mockReminderDispatcher) DispatchReminder(ctx context.Context, c domain.ReminderCandidate) (service.DispatchResult, error) {
	if m.dispatchReminder != nil {
		return m.dispatchReminder(ctx, c)
	}
	return service.DispatchResult{}, nil
}

var _ service.ReminderDispatcher = (*mockReminderDispatcher)(nil)
