package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdone/backend/repository"
)

func TestBuildTodoPatchTitleOnly(t *testing.T) {
	title := "new title"
	set, args := buildTodoPatch(repository.TodoPatch{Title: &title})

	assert.Equal(t, []string{"title = $1"}, set)
	assert.Equal(t, []interface{}{"new title"}, args)
}

func TestBuildTodoPatchReminderRearms(t *testing.T) {
	when := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	set, args := buildTodoPatch(repository.TodoPatch{
		RemindAt: repository.OptionalTime{Set: true, Value: &when},
	})

	require.Len(t, set, 2)
	assert.Equal(t, "remind_at = $1", set[0])
	assert.Equal(t, "notification_sent = FALSE", set[1])
	assert.Equal(t, []interface{}{when}, args)
}

func TestBuildTodoPatchClearReminder(t *testing.T) {
	set, args := buildTodoPatch(repository.TodoPatch{
		RemindAt: repository.OptionalTime{Set: true},
	})

	assert.Contains(t, set, "notification_sent = FALSE")
	require.Len(t, args, 1)
	assert.Nil(t, args[0])
}

func TestBuildTodoPatchAllFields(t *testing.T) {
	title := "t"
	done := true
	when := time.Now()
	set, args := buildTodoPatch(repository.TodoPatch{
		Title:     &title,
		Completed: &done,
		RemindAt:  repository.OptionalTime{Set: true, Value: &when},
	})

	assert.Equal(t, []string{
		"title = $1",
		"completed = $2",
		"remind_at = $3",
		"notification_sent = FALSE",
	}, set)
	assert.Len(t, args, 3)
}
