package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
	"github.com/ridewise/backend/internal/repo"
)

// OutcomeDispatcher is the action processor's view of the dispatcher: it only
// ever sends outcome notifications, never reminders.
type OutcomeDispatcher interface {
	DispatchOutcome(ctx context.Context, kind domain.NotificationKind, oc OutcomeContext) (DispatchResult, error)
}

// ActionService processes the action a student took on a reminder
// notification. Confirm is the interesting path: it re-validates eligibility,
// reserves a seat atomically, and reports the outcome back through a
// follow-up notification.
type ActionService struct {
	notifications repo.NotificationRepo
	bookings      repo.BookingRepo
	schedules     repo.ScheduleRepo
	students      repo.StudentRepo
	actions       repo.ActionLogRepo
	eligibility   EligibilityChecker
	dispatcher    OutcomeDispatcher
}

func NewActionService(notifications repo.NotificationRepo, bookings repo.BookingRepo,
	schedules repo.ScheduleRepo, students repo.StudentRepo, actions repo.ActionLogRepo,
	eligibility EligibilityChecker, dispatcher OutcomeDispatcher) *ActionService {
	return &ActionService{
		notifications: notifications,
		bookings:      bookings,
		schedules:     schedules,
		students:      students,
		actions:       actions,
		eligibility:   eligibility,
		dispatcher:    dispatcher,
	}
}

// Process handles one notification action. It never returns a Go error: every
// failure mode is encoded in the result's ErrorKind so the transport layer can
// map it to a status code and the client gets a stable machine-readable
// reason. Tapping the same confirm twice is safe: the duplicate resolves to
// already_booked without touching the seat count.
func (s *ActionService) Process(ctx context.Context, req domain.ActionRequest) domain.ActionResult {
	if !req.Action.Valid() || req.NotificationID == uuid.Nil || req.StudentID == uuid.Nil {
		return s.finish(ctx, req, domain.ActionResult{
			Action:    req.Action,
			ErrorKind: domain.ErrorKindMissingParameters,
			Message:   "action, notification_id, and student_id are required",
		})
	}

	// Acting on a notification implies having seen it. Read-marking is
	// best effort: a failure here must not block the booking.
	if err := s.notifications.MarkRead(ctx, req.NotificationID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("failed to mark notification read",
			"notification_id", req.NotificationID, "error", err)
	}

	switch req.Action {
	case domain.ActionView:
		return s.finish(ctx, req, domain.ActionResult{Success: true, Action: req.Action})
	case domain.ActionDecline:
		return s.processDecline(ctx, req)
	case domain.ActionConfirm:
		return s.processConfirm(ctx, req)
	default:
		return s.finish(ctx, req, domain.ActionResult{
			Action:    req.Action,
			ErrorKind: domain.ErrorKindMissingParameters,
			Message:   fmt.Sprintf("unsupported action %q", req.Action),
		})
	}
}

func (s *ActionService) processDecline(ctx context.Context, req domain.ActionRequest) domain.ActionResult {
	s.sendOutcome(ctx, domain.KindDeclined, OutcomeContext{
		StudentID:     req.StudentID,
		ScheduleID:    req.ScheduleID,
		RouteName:     req.RouteName,
		TripDate:      req.TripDate,
		DepartureTime: req.DepartureTime,
	})
	return s.finish(ctx, req, domain.ActionResult{Success: true, Action: req.Action})
}

func (s *ActionService) processConfirm(ctx context.Context, req domain.ActionRequest) domain.ActionResult {
	if req.ScheduleID == uuid.Nil {
		return s.finish(ctx, req, domain.ActionResult{
			Action:    req.Action,
			ErrorKind: domain.ErrorKindMissingParameters,
			Message:   "schedule_id is required to confirm a seat",
		})
	}
	studentID, scheduleID := req.StudentID, req.ScheduleID

	// The snapshot in the notification metadata may be hours old; only a
	// fresh verdict authorizes a booking.
	elig, err := s.eligibility.Check(ctx, studentID, scheduleID)
	if err != nil {
		slog.Error("eligibility check failed",
			"student_id", studentID, "schedule_id", scheduleID, "error", err)
		return s.finish(ctx, req, domain.ActionResult{
			Action:    req.Action,
			ErrorKind: domain.ErrorKindInternal,
			Message:   "could not verify booking eligibility, please try again",
		})
	}
	if !elig.CanBook {
		s.sendOutcome(ctx, domain.KindFailed, OutcomeContext{
			StudentID:       studentID,
			ScheduleID:      scheduleID,
			RouteName:       req.RouteName,
			TripDate:        req.TripDate,
			DepartureTime:   req.DepartureTime,
			Reason:          domain.ErrorKindNotAvailable,
			PaymentRequired: elig.PaymentRequired,
			PaymentOptions:  elig.PaymentOptions,
		})
		return s.finish(ctx, req, domain.ActionResult{
			Action:          req.Action,
			ErrorKind:       domain.ErrorKindNotAvailable,
			Message:         elig.Reason,
			PaymentRequired: elig.PaymentRequired,
			PaymentOptions:  elig.PaymentOptions,
		})
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return s.finish(ctx, req, s.lookupFailure(req, "student", err))
	}
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return s.finish(ctx, req, s.lookupFailure(req, "schedule", err))
	}

	oc := OutcomeContext{
		StudentID:     studentID,
		ScheduleID:    scheduleID,
		RouteName:     schedule.RouteName,
		TripDate:      schedule.TripDate,
		DepartureTime: schedule.DepartureTime,
		BoardingStop:  boardingStop(req, student),
	}

	// No capacity precheck here. The booking store is the only layer that
	// can tell a full schedule from a duplicate reservation, and the
	// student's own earlier confirm may be what filled the last seat.
	booking, err := s.bookings.Reserve(ctx, domain.Booking{
		StudentID:     studentID,
		ScheduleID:    &scheduleID,
		RouteID:       schedule.RouteID,
		TripDate:      schedule.TripDate,
		BoardingStop:  oc.BoardingStop,
		Status:        domain.BookingStatusConfirmed,
		PaymentStatus: "paid",
		Source:        domain.BookingSourcePush,
	})
	if err != nil {
		return s.finish(ctx, req, s.reserveFailure(ctx, req, oc, err))
	}

	oc.BookingID = &booking.ID
	oc.SeatNumber = booking.SeatNumber
	oc.BoardingStop = booking.BoardingStop
	s.sendOutcome(ctx, domain.KindConfirmed, oc)

	return s.finish(ctx, req, domain.ActionResult{
		Success:    true,
		Action:     req.Action,
		BookingID:  &booking.ID,
		SeatNumber: booking.SeatNumber,
		Message:    fmt.Sprintf("seat %d confirmed", booking.SeatNumber),
	})
}

// reserveFailure maps a Reserve error to a result and sends the matching
// failure notification. A duplicate booking is a failure kind for the caller
// but leaves the earlier booking untouched.
func (s *ActionService) reserveFailure(ctx context.Context, req domain.ActionRequest, oc OutcomeContext, err error) domain.ActionResult {
	result := domain.ActionResult{Action: req.Action}
	switch {
	case errors.Is(err, domain.ErrAlreadyBooked):
		result.ErrorKind = domain.ErrorKindAlreadyBooked
		result.Message = "you already have a seat on this trip"
	case errors.Is(err, domain.ErrNoSeats):
		result.ErrorKind = domain.ErrorKindNoSeats
		result.Message = "all seats on this trip are taken"
	case errors.Is(err, domain.ErrNotFound):
		result.ErrorKind = domain.ErrorKindNotAvailable
		result.Message = "this trip is no longer available"
	default:
		slog.Error("seat reservation failed",
			"student_id", oc.StudentID, "schedule_id", oc.ScheduleID, "error", err)
		result.ErrorKind = domain.ErrorKindCreationFailed
		result.Message = "could not create the booking, please try again"
	}

	oc.Reason = result.ErrorKind
	s.sendOutcome(ctx, domain.KindFailed, oc)
	return result
}

func (s *ActionService) lookupFailure(req domain.ActionRequest, what string, err error) domain.ActionResult {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ActionResult{
			Action:    req.Action,
			ErrorKind: domain.ErrorKindNotAvailable,
			Message:   fmt.Sprintf("this trip is no longer available for booking (%s not found)", what),
		}
	}
	slog.Error("lookup failed while processing action", "what", what, "error", err)
	return domain.ActionResult{
		Action:    req.Action,
		ErrorKind: domain.ErrorKindInternal,
		Message:   "could not process the action, please try again",
	}
}

// sendOutcome fires the follow-up notification. Outcome delivery is informative
// only: a dispatch failure is logged and never changes the action result.
func (s *ActionService) sendOutcome(ctx context.Context, kind domain.NotificationKind, oc OutcomeContext) {
	if _, err := s.dispatcher.DispatchOutcome(ctx, kind, oc); err != nil {
		slog.Warn("failed to dispatch outcome notification",
			"kind", kind, "student_id", oc.StudentID, "error", err)
	}
}

// finish records the audit entry and returns the result unchanged. The audit
// log is best effort: losing a row is preferable to failing the action.
func (s *ActionService) finish(ctx context.Context, req domain.ActionRequest, result domain.ActionResult) domain.ActionResult {
	entry := domain.ActionLogEntry{
		NotificationID: req.NotificationID,
		StudentID:      req.StudentID,
		ScheduleID:     req.ScheduleID,
		Action:         req.Action,
		Result:         resultLabel(result),
		Detail:         result.Message,
	}
	if err := s.actions.Record(ctx, entry); err != nil {
		slog.Warn("failed to record action log entry", "action", req.Action, "error", err)
	}
	return result
}

func resultLabel(r domain.ActionResult) string {
	if r.Success {
		return "success"
	}
	return string(r.ErrorKind)
}

func boardingStop(req domain.ActionRequest, student domain.Student) string {
	if req.BoardingStop != "" {
		return req.BoardingStop
	}
	if student.BoardingStop != "" {
		return student.BoardingStop
	}
	return domain.DefaultBoardingStop
}
