package domain

import "time"

// Agent identifiers recorded in the delivery journal.
const (
	AgentForeground = "foreground"
	AgentSweep      = "sweep"
)

// Delivery outcomes.
const (
	OutcomeNotified = "notified"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// DeliveryEvent records one delivery attempt for a reminder. The journal is
// best-effort observability; a failed append never blocks an agent cycle.
type DeliveryEvent struct {
	ID        string    `json:"id"`
	TodoID    string    `json:"todo_id"`
	UserID    string    `json:"user_id"`
	Agent     string    `json:"agent"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
