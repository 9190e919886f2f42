package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
	"github.com/ridewise/backend/internal/push"
	"github.com/ridewise/backend/internal/repo"
)

// EligibilityChecker is the dispatcher's and action processor's view of the
// external eligibility collaborator. Defining it here (in the consumer
// package) lets tests inject a fake without an HTTP server.
type EligibilityChecker interface {
	Check(ctx context.Context, studentID, scheduleID uuid.UUID) (domain.Eligibility, error)
}

// DeliveryStats aggregates the per-subscription outcomes of one fan-out.
// Partial failure is reported here, never as an error: some endpoints
// succeeding and some failing is normal operation.
type DeliveryStats struct {
	Attempted   int `json:"attempted"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Deactivated int `json:"deactivated"`
}

// DispatchResult is the outcome of one dispatch: the persisted notification
// and whether at least one push delivery succeeded. Delivered is false (and
// the dispatch still successful) when the user has no active subscriptions,
// since in-app visibility does not depend on push delivery.
type DispatchResult struct {
	Notification domain.Notification
	Delivered    bool
	Stats        DeliveryStats
}

// OutcomeContext carries everything the dispatcher needs to compose a
// follow-up notification after an action was processed: trip context for the
// copy, plus the booking or rejection details of the branch taken.
type OutcomeContext struct {
	StudentID       uuid.UUID
	ScheduleID      uuid.UUID
	RouteName       string
	TripDate        time.Time
	DepartureTime   string
	BoardingStop    string
	BookingID       *uuid.UUID
	SeatNumber      int
	Reason          domain.ErrorKind
	PaymentRequired bool
	PaymentOptions  []string
}

// Dispatcher turns a reminder candidate or an action outcome into a persisted
// notification plus a bounded concurrent push fan-out to every active
// subscription of the target user.
type Dispatcher struct {
	notifications repo.NotificationRepo
	subscriptions repo.SubscriptionRepo
	eligibility   EligibilityChecker
	sender        push.Sender
	concurrency   int
	timeout       time.Duration
}

// NewDispatcher constructs a Dispatcher. concurrency bounds the number of
// simultaneous push attempts per dispatch (values < 1 fall back to 5);
// timeout bounds each individual attempt (values <= 0 fall back to 10s) so a
// hung endpoint cannot delay the others.
func NewDispatcher(notifications repo.NotificationRepo, subscriptions repo.SubscriptionRepo,
	eligibility EligibilityChecker, sender push.Sender, concurrency int, timeout time.Duration) *Dispatcher {
	if concurrency < 1 {
		concurrency = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		notifications: notifications,
		subscriptions: subscriptions,
		eligibility:   eligibility,
		sender:        sender,
		concurrency:   concurrency,
		timeout:       timeout,
	}
}

// DispatchReminder re-checks eligibility, persists the reminder notification,
// and fans out the push. The eligibility verdict decides the primary action
// (confirm vs. pay-and-book) and is stored in the metadata as a snapshot; the
// action processor re-validates at action time regardless, because hours may
// pass between dispatch and tap.
func (d *Dispatcher) DispatchReminder(ctx context.Context, c domain.ReminderCandidate) (DispatchResult, error) {
	elig, err := d.eligibility.Check(ctx, c.StudentID, c.ScheduleID)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("service.Dispatcher.DispatchReminder: %w", err)
	}

	n := reminderNotification(c, elig)
	result, err := d.dispatch(ctx, c.StudentID, n)
	if err != nil {
		return result, fmt.Errorf("service.Dispatcher.DispatchReminder: %w", err)
	}
	return result, nil
}

// DispatchOutcome persists and delivers a follow-up notification reporting
// the outcome of a processed action. kind must be one of KindConfirmed,
// KindFailed, or KindDeclined.
func (d *Dispatcher) DispatchOutcome(ctx context.Context, kind domain.NotificationKind, oc OutcomeContext) (DispatchResult, error) {
	var n domain.Notification
	switch kind {
	case domain.KindConfirmed:
		n = confirmedNotification(oc)
	case domain.KindFailed:
		n = failedNotification(oc)
	case domain.KindDeclined:
		n = declinedNotification(oc)
	default:
		return DispatchResult{}, fmt.Errorf("service.Dispatcher.DispatchOutcome: %w: kind %q", domain.ErrValidation, kind)
	}

	result, err := d.dispatch(ctx, oc.StudentID, n)
	if err != nil {
		return result, fmt.Errorf("service.Dispatcher.DispatchOutcome: %w", err)
	}
	return result, nil
}

// dispatch persists the notification and fans out the push payload.
// The notification record persists regardless of push outcome.
func (d *Dispatcher) dispatch(ctx context.Context, userID uuid.UUID, n domain.Notification) (DispatchResult, error) {
	created, err := d.notifications.Create(ctx, n)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("create notification: %w", err)
	}

	subs, err := d.subscriptions.ListActiveByUser(ctx, userID)
	if err != nil {
		return DispatchResult{Notification: created}, fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return DispatchResult{Notification: created, Delivered: false}, nil
	}

	stats := d.fanOut(ctx, subs, buildPayload(created))
	return DispatchResult{
		Notification: created,
		Delivered:    stats.Succeeded > 0,
		Stats:        stats,
	}, nil
}

// fanOut delivers payload to every subscription through a bounded worker
// pool. Each attempt gets its own timeout so a slow endpoint cannot block the
// rest. An endpoint reported permanently gone is deactivated as a side effect
// that never fails the dispatch.
func (d *Dispatcher) fanOut(ctx context.Context, subs []domain.PushSubscription, payload push.Payload) DeliveryStats {
	workers := d.concurrency
	if workers > len(subs) {
		workers = len(subs)
	}

	jobs := make(chan domain.PushSubscription)
	var (
		mu    sync.Mutex
		stats DeliveryStats
		wg    sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
				err := d.sender.Send(attemptCtx, sub, payload)
				cancel()

				deactivated := false
				if errors.Is(err, push.ErrSubscriptionGone) {
					if derr := d.subscriptions.Deactivate(ctx, sub.ID); derr != nil {
						slog.Warn("failed to deactivate gone subscription",
							"subscription_id", sub.ID, "error", derr)
					} else {
						deactivated = true
					}
				}

				mu.Lock()
				stats.Attempted++
				if err == nil {
					stats.Succeeded++
				} else {
					stats.Failed++
				}
				if deactivated {
					stats.Deactivated++
				}
				mu.Unlock()
			}
		}()
	}

	for _, sub := range subs {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	return stats
}

// buildPayload projects a notification into the push payload shape.
// The tag is the notification ID so the client collapses duplicate deliveries.
func buildPayload(n domain.Notification) push.Payload {
	actions := make([]push.Action, 0, 3)
	if a := n.Actions.Primary; a != nil {
		actions = append(actions, push.Action{Action: a.Action, Title: a.Label})
	}
	if a := n.Actions.Secondary; a != nil {
		actions = append(actions, push.Action{Action: a.Action, Title: a.Label})
	}
	actions = append(actions, push.Action{Action: "dismiss", Title: "Dismiss"})

	return push.Payload{
		Title:              n.Title,
		Body:               n.Message,
		Icon:               "/icons/bus-192.png",
		Badge:              "/icons/bus-72.png",
		Tag:                n.ID.String(),
		RequireInteraction: n.Meta.Kind == domain.KindReminder,
		Actions:            actions,
		Data: map[string]any{
			"notification_id": n.ID.String(),
			"kind":            string(n.Meta.Kind),
			"schedule_id":     n.Meta.ScheduleID.String(),
			"student_id":      n.UserID.String(),
			"schedule_date":   n.Meta.ScheduleDate,
			"departure_time":  n.Meta.DepartureTime,
			"route_name":      n.Meta.RouteName,
		},
	}
}

const metaDateLayout = "2006-01-02"

// reminderNotification composes the day-before reminder. Eligible students
// get a one-tap confirm action; students with an outstanding payment get a
// pay-and-book action instead.
func reminderNotification(c domain.ReminderCandidate, elig domain.Eligibility) domain.Notification {
	primary := &domain.ActionDescriptor{Action: "confirm", Label: "Confirm Seat", Type: "confirm"}
	if !elig.CanBook && elig.PaymentRequired {
		primary = &domain.ActionDescriptor{
			Action: "pay",
			Label:  "Pay & Book",
			Target: "/payments?schedule_id=" + c.ScheduleID.String(),
			Type:   "pay",
		}
	}

	return domain.Notification{
		UserID:   c.StudentID,
		Title:    "Bus seat reminder",
		Message: fmt.Sprintf("Your bus on route %s departs at %s on %s. Reserve your seat now.",
			c.RouteName, c.DepartureTime, c.TripDate.Format("Mon, Jan 2")),
		Category: domain.NotificationCategoryBooking,
		Actions: domain.NotificationActions{
			Primary:   primary,
			Secondary: &domain.ActionDescriptor{Action: "view", Label: "View", Type: "view"},
		},
		Tags: []string{string(domain.KindReminder)},
		Meta: domain.NotificationMeta{
			Kind:            domain.KindReminder,
			ScheduleID:      c.ScheduleID,
			ScheduleDate:    c.TripDate.Format(metaDateLayout),
			DepartureTime:   c.DepartureTime,
			RouteName:       c.RouteName,
			BoardingStop:    c.BoardingStop,
			PaymentRequired: elig.PaymentRequired,
			PaymentOptions:  elig.PaymentOptions,
			Eligibility:     &elig,
		},
		CreatedBy: domain.CreatedByReminderGenerator,
	}
}

// confirmedNotification composes the success follow-up.
func confirmedNotification(oc OutcomeContext) domain.Notification {
	return domain.Notification{
		UserID:   oc.StudentID,
		Title:    "Seat confirmed",
		Message: fmt.Sprintf("Seat %d is yours on route %s, departing %s on %s. Boarding at %s.",
			oc.SeatNumber, oc.RouteName, oc.DepartureTime, oc.TripDate.Format("Mon, Jan 2"), oc.BoardingStop),
		Category: domain.NotificationCategoryBooking,
		Actions: domain.NotificationActions{
			Primary: &domain.ActionDescriptor{Action: "view", Label: "View Booking", Type: "view"},
		},
		Tags: []string{string(domain.KindConfirmed)},
		Meta: domain.NotificationMeta{
			Kind:          domain.KindConfirmed,
			ScheduleID:    oc.ScheduleID,
			ScheduleDate:  oc.TripDate.Format(metaDateLayout),
			DepartureTime: oc.DepartureTime,
			RouteName:     oc.RouteName,
			BoardingStop:  oc.BoardingStop,
			BookingID:     oc.BookingID,
			SeatNumber:    oc.SeatNumber,
		},
		CreatedBy: domain.CreatedByActionProcessor,
	}
}

// failedNotification composes the rejection follow-up. When the rejection was
// payment-related the primary action deep-links into the payment flow rather
// than a retry that would fail the same way.
func failedNotification(oc OutcomeContext) domain.Notification {
	message := fmt.Sprintf("Your seat on route %s for %s could not be booked.",
		oc.RouteName, oc.TripDate.Format("Mon, Jan 2"))
	var primary *domain.ActionDescriptor
	switch {
	case oc.PaymentRequired:
		message = fmt.Sprintf("Your seat on route %s for %s needs payment before it can be booked.",
			oc.RouteName, oc.TripDate.Format("Mon, Jan 2"))
		primary = &domain.ActionDescriptor{
			Action: "pay",
			Label:  "Pay Now",
			Target: "/payments?schedule_id=" + oc.ScheduleID.String(),
			Type:   "pay",
		}
	case oc.Reason == domain.ErrorKindNoSeats:
		message = fmt.Sprintf("The bus on route %s for %s is full.",
			oc.RouteName, oc.TripDate.Format("Mon, Jan 2"))
	case oc.Reason == domain.ErrorKindAlreadyBooked:
		message = fmt.Sprintf("You already have a seat on route %s for %s.",
			oc.RouteName, oc.TripDate.Format("Mon, Jan 2"))
	}
	if primary == nil {
		primary = &domain.ActionDescriptor{Action: "view", Label: "View", Type: "view"}
	}

	return domain.Notification{
		UserID:   oc.StudentID,
		Title:    "Booking not completed",
		Message:  message,
		Category: domain.NotificationCategoryBooking,
		Actions:  domain.NotificationActions{Primary: primary},
		Tags:     []string{string(domain.KindFailed)},
		Meta: domain.NotificationMeta{
			Kind:            domain.KindFailed,
			ScheduleID:      oc.ScheduleID,
			ScheduleDate:    oc.TripDate.Format(metaDateLayout),
			DepartureTime:   oc.DepartureTime,
			RouteName:       oc.RouteName,
			Reason:          string(oc.Reason),
			PaymentRequired: oc.PaymentRequired,
			PaymentOptions:  oc.PaymentOptions,
		},
		CreatedBy: domain.CreatedByActionProcessor,
	}
}

// declinedNotification acknowledges an explicit decline.
func declinedNotification(oc OutcomeContext) domain.Notification {
	return domain.Notification{
		UserID:   oc.StudentID,
		Title:    "Trip declined",
		Message: fmt.Sprintf("You declined the trip on route %s for %s. No seat was booked.",
			oc.RouteName, oc.TripDate.Format("Mon, Jan 2")),
		Category: domain.NotificationCategoryBooking,
		Actions: domain.NotificationActions{
			Primary: &domain.ActionDescriptor{Action: "view", Label: "View", Type: "view"},
		},
		Tags: []string{string(domain.KindDeclined)},
		Meta: domain.NotificationMeta{
			Kind:          domain.KindDeclined,
			ScheduleID:    oc.ScheduleID,
			ScheduleDate:  oc.TripDate.Format(metaDateLayout),
			DepartureTime: oc.DepartureTime,
			RouteName:     oc.RouteName,
		},
		CreatedBy: domain.CreatedByActionProcessor,
	}
}
