package transport

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
)

type ProfileUpdateRequest struct {
	Email  string            `json:"email"`
	Role   string            `json:"role"`
	Status string            `json:"status"`
	Meta   map[string]string `json:"metadata"`
}

type TodoCreateRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	RemindAt  string `json:"remind_at"`
}

// TodoUpdateRequest is a partial update. Field presence matters: a null
// remind_at clears the reminder, an absent remind_at leaves it untouched.
// The custom unmarshaler records which keys appeared in the payload.
type TodoUpdateRequest struct {
	title     *string
	completed *bool
	remindAt  repository.OptionalTime
}

func (r *TodoUpdateRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(v, &title); err != nil {
			return err
		}
		r.title = &title
	}

	if v, ok := raw["completed"]; ok {
		var completed bool
		if err := json.Unmarshal(v, &completed); err != nil {
			return err
		}
		r.completed = &completed
	}

	if v, ok := raw["remind_at"]; ok {
		r.remindAt.Set = true
		if !bytes.Equal(v, []byte("null")) {
			var stamp string
			if err := json.Unmarshal(v, &stamp); err != nil {
				return err
			}
			parsed, err := time.Parse(time.RFC3339, stamp)
			if err != nil {
				return err
			}
			r.remindAt.Value = &parsed
		}
	}

	return nil
}

// Patch converts the request into a repository patch. Unrecognized keys are
// ignored; a payload carrying none of the recognized fields produces an
// empty patch, which the store rejects.
func (r *TodoUpdateRequest) Patch() repository.TodoPatch {
	return repository.TodoPatch{
		Title:     r.title,
		Completed: r.completed,
		RemindAt:  r.remindAt,
	}
}

// ParseRemindAt parses an optional RFC3339 reminder timestamp from a create
// request. Empty means no reminder.
func ParseRemindAt(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid remind_at timestamp", err)
	}
	return &parsed, nil
}

type DeviceRegisterRequest struct {
	Token string `json:"token"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
