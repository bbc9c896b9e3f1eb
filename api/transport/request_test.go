package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoUpdateRequestFieldPresence(t *testing.T) {
	var req TodoUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"new title"}`), &req))

	patch := req.Patch()
	require.NotNil(t, patch.Title)
	assert.Equal(t, "new title", *patch.Title)
	assert.Nil(t, patch.Completed)
	assert.False(t, patch.RemindAt.Set)
}

func TestTodoUpdateRequestRemindAtSet(t *testing.T) {
	var req TodoUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"remind_at":"2026-01-02T15:04:05Z"}`), &req))

	patch := req.Patch()
	assert.True(t, patch.RemindAt.Set)
	require.NotNil(t, patch.RemindAt.Value)
	assert.Equal(t, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), patch.RemindAt.Value.UTC())
}

func TestTodoUpdateRequestRemindAtNullClears(t *testing.T) {
	var req TodoUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"remind_at":null}`), &req))

	patch := req.Patch()
	assert.True(t, patch.RemindAt.Set)
	assert.Nil(t, patch.RemindAt.Value)
	assert.False(t, patch.IsEmpty())
}

func TestTodoUpdateRequestEmptyPayload(t *testing.T) {
	var req TodoUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.True(t, req.Patch().IsEmpty())
}

func TestTodoUpdateRequestUnknownKeysIgnored(t *testing.T) {
	var req TodoUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"priority":5,"owner":"x"}`), &req))
	assert.True(t, req.Patch().IsEmpty())
}

func TestTodoUpdateRequestMalformedTimestamp(t *testing.T) {
	var req TodoUpdateRequest
	err := json.Unmarshal([]byte(`{"remind_at":"tomorrow"}`), &req)
	assert.Error(t, err)
}

func TestParseRemindAt(t *testing.T) {
	parsed, err := ParseRemindAt("")
	require.NoError(t, err)
	assert.Nil(t, parsed)

	parsed, err = ParseRemindAt("2026-03-01T09:00:00Z")
	require.NoError(t, err)
	require.NotNil(t, parsed)

	_, err = ParseRemindAt("not-a-time")
	assert.Error(t, err)
}
