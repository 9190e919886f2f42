package domain

import "time"

// Eligibility is the external collaborator's verdict on whether a student may
// currently book a schedule (payment status, cutoff windows).
type Eligibility struct {
	CanBook         bool     `json:"can_book"`
	Reason          string   `json:"reason,omitempty"`
	PaymentRequired bool     `json:"payment_required,omitempty"`
	PaymentOptions  []string `json:"payment_options,omitempty"`

	// CheckedAt records when the verdict was obtained. A snapshot stored in
	// reminder metadata may be hours old by the time the user taps an action,
	// so the action processor always re-checks and never trusts this value.
	CheckedAt time.Time `json:"checked_at,omitempty"`
}
