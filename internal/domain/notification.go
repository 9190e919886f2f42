package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind discriminates the metadata union and selects notification
// copy and actions. Exactly one kind is set per notification.
type NotificationKind string

const (
	// KindReminder is the day-before "you have not booked yet" notice.
	KindReminder NotificationKind = "booking_reminder"
	// KindConfirmed reports a successful seat reservation.
	KindConfirmed NotificationKind = "booking_confirmed"
	// KindFailed reports a rejected confirmation (ineligible, full, duplicate).
	KindFailed NotificationKind = "booking_failed"
	// KindDeclined acknowledges an explicit decline.
	KindDeclined NotificationKind = "booking_declined"
)

// NotificationCategoryBooking is the category for every notification this
// pipeline creates; the dashboard uses it for filtering.
const NotificationCategoryBooking = "booking"

// Creator tags identifying which pipeline stage produced a notification.
const (
	CreatedByReminderGenerator = "reminder_generator"
	CreatedByActionProcessor   = "booking_action_processor"
)

// ActionDescriptor describes one interactive action attached to a
// notification: the client renders Label as a button, and tapping it sends
// Action back through the action endpoint (or follows Target for deep links).
type ActionDescriptor struct {
	Action string `json:"action"`
	Label  string `json:"label"`
	Target string `json:"target,omitempty"`
	Type   string `json:"type"`
}

// NotificationActions holds the primary and optional secondary action of a
// notification.
type NotificationActions struct {
	Primary   *ActionDescriptor `json:"primary,omitempty"`
	Secondary *ActionDescriptor `json:"secondary,omitempty"`
}

// NotificationMeta is the tagged union persisted in the notification's
// metadata column. Kind decides which of the optional fields are meaningful:
// Eligibility is set only for reminders, BookingID/SeatNumber only for
// confirmations, Reason and the payment fields only for failures.
type NotificationMeta struct {
	Kind            NotificationKind `json:"kind"`
	ScheduleID      uuid.UUID        `json:"schedule_id"`
	ScheduleDate    string           `json:"schedule_date"` // "2006-01-02"
	DepartureTime   string           `json:"departure_time,omitempty"`
	RouteName       string           `json:"route_name,omitempty"`
	BoardingStop    string           `json:"boarding_stop,omitempty"`
	BookingID       *uuid.UUID       `json:"booking_id,omitempty"`
	SeatNumber      int              `json:"seat_number,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	PaymentRequired bool             `json:"payment_required,omitempty"`
	PaymentOptions  []string         `json:"payment_options,omitempty"`
	Eligibility     *Eligibility     `json:"eligibility,omitempty"`
}

// Notification is an in-app notification record. It exists independently of
// push delivery: a user with zero push subscriptions still sees it in the
// app. The only mutation this pipeline performs is flipping Read to true.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Message   string
	Category  string
	Read      bool
	Actions   NotificationActions
	Tags      []string
	Meta      NotificationMeta
	CreatedBy string
	CreatedAt time.Time
}
