package repository

import (
	"context"
	"time"

	"github.com/tickdone/backend/domain"
)

type TodoFilter struct {
	UserID string
	Limit  int
	Offset int
}

// OptionalTime distinguishes "field absent" from "set to null" in a patch.
// Set=true with a nil Value clears the reminder.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// TodoPatch is a partial update. Nil pointer fields are left untouched.
// Any patch with RemindAt.Set also resets notification_sent in the same
// write, so an edited reminder is always re-armed.
type TodoPatch struct {
	Title     *string
	Completed *bool
	RemindAt  OptionalTime
}

// IsEmpty reports whether the patch carries no recognized fields.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil && !p.RemindAt.Set
}

// ReminderFilter selects delivery candidates: remind_at set, elapsed at Now,
// notification not yet sent. An empty UserID means the privileged global
// scope used by the backend sweep.
type ReminderFilter struct {
	UserID           string
	ExcludeCompleted bool
	Now              time.Time
	Limit            int
}

type TodoRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Todo, error)
	List(ctx context.Context, filter TodoFilter) ([]domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	Patch(ctx context.Context, userID, id string, patch TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, userID, id string) error

	// DueReminders returns current delivery candidates for the given scope.
	DueReminders(ctx context.Context, filter ReminderFilter) ([]domain.Todo, error)
	// MarkNotified flips notification_sent for a todo that has not been
	// claimed yet. A todo already marked by a concurrent agent is not an
	// error; the update is simply a no-op.
	MarkNotified(ctx context.Context, id string) error
}
