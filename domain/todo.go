package domain

import "time"

// Todo represents a user-owned item, optionally carrying a reminder.
type Todo struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Title            string     `json:"title"`
	Completed        bool       `json:"completed"`
	RemindAt         *time.Time `json:"remind_at,omitempty"`
	NotificationSent bool       `json:"notification_sent"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsDue reports whether the todo is a delivery candidate at the given
// instant: reminder set, elapsed, and not yet notified. Completion is
// deliberately not part of the predicate; excluding completed items is a
// per-agent policy, not a store rule.
func (t *Todo) IsDue(reference time.Time) bool {
	if t == nil || t.RemindAt == nil || t.NotificationSent {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !t.RemindAt.After(reference)
}
