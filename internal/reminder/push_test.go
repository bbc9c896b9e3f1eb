package reminder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdone/backend/domain"
)

type fakeDevices struct {
	tokens map[string]string
	err    error
}

func (d *fakeDevices) GetToken(_ context.Context, userID string) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	token, ok := d.tokens[userID]
	if !ok {
		return "", domain.ErrDeviceNotFound
	}
	return token, nil
}

func (d *fakeDevices) SaveToken(_ context.Context, userID, token string) error {
	d.tokens[userID] = token
	return nil
}

func (d *fakeDevices) DeleteToken(_ context.Context, userID string) error {
	delete(d.tokens, userID)
	return nil
}

func TestPushNotifierSkipsWithoutToken(t *testing.T) {
	n := NewPushNotifier(&fakeDevices{tokens: map[string]string{}}, nil, PushConfig{ServerKey: "key"}, nil)

	delivered, err := n.Notify(context.Background(), &domain.Todo{ID: "t1", UserID: "u1", Title: "x"})
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestPushNotifierSkipsWithoutServerKey(t *testing.T) {
	devices := &fakeDevices{tokens: map[string]string{"u1": "tok"}}
	n := NewPushNotifier(devices, nil, PushConfig{}, nil)

	delivered, err := n.Notify(context.Background(), &domain.Todo{ID: "t1", UserID: "u1", Title: "x"})
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestPushNotifierPropagatesTokenLookupError(t *testing.T) {
	devices := &fakeDevices{err: domain.WrapError(domain.ErrCodeInternal, "redis down", nil)}
	n := NewPushNotifier(devices, nil, PushConfig{ServerKey: "key"}, nil)

	delivered, err := n.Notify(context.Background(), &domain.Todo{ID: "t1", UserID: "u1", Title: "x"})
	require.Error(t, err)
	assert.False(t, delivered)
}
