package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodoIsDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		todo *Todo
		want bool
	}{
		{"no reminder", &Todo{}, false},
		{"due and unsent", &Todo{RemindAt: &past}, true},
		{"due but already sent", &Todo{RemindAt: &past, NotificationSent: true}, false},
		{"not yet due", &Todo{RemindAt: &future}, false},
		{"exactly now", &Todo{RemindAt: &now}, true},
		{"completed is still due", &Todo{RemindAt: &past, Completed: true}, true},
		{"nil receiver", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.todo.IsDue(now))
		})
	}
}
