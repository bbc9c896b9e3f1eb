package reminder

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/tickdone/backend/domain"
)

// Permission is the three-state notification capability of the local
// display surface.
type Permission int

const (
	// PermissionDefault means permission was never requested or the surface
	// does not support notifications.
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

// PermissionFunc reports the current permission state. It is consulted
// before every display attempt and never cached, since permission can
// change between cycles.
type PermissionFunc func() Permission

// DisplayFunc renders a notification on the local surface.
type DisplayFunc func(title, body string) error

// ChimeFunc plays the audible cue accompanying a displayed notification.
type ChimeFunc func()

const notificationTitle = "Todo Reminder"

// LocalNotifier is the foreground delivery channel: a visible notification
// plus an audible cue on the device the user is signed in on.
type LocalNotifier struct {
	permission PermissionFunc
	display    DisplayFunc
	chime      ChimeFunc
	logger     *zap.Logger
}

func NewLocalNotifier(permission PermissionFunc, display DisplayFunc, chime ChimeFunc, logger *zap.Logger) *LocalNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &LocalNotifier{
		permission: permission,
		display:    display,
		chime:      chime,
		logger:     logger,
	}
	if n.permission == nil {
		n.permission = func() Permission { return PermissionGranted }
	}
	if n.display == nil {
		n.display = func(title, body string) error {
			logger.Info("reminder notification",
				zap.String("title", title),
				zap.String("body", body))
			return nil
		}
	}
	if n.chime == nil {
		// Terminal bell as the audible cue.
		n.chime = func() { _, _ = os.Stdout.Write([]byte{'\a'}) }
	}
	return n
}

func (n *LocalNotifier) Notify(ctx context.Context, todo *domain.Todo) (bool, error) {
	if todo == nil {
		return false, domain.ErrInvalidPayload
	}

	if p := n.permission(); p != PermissionGranted {
		n.logger.Debug("notification permission not granted, skipping",
			zap.String("todo_id", todo.ID),
			zap.String("permission", p.String()))
		return false, nil
	}

	if err := n.display(notificationTitle, todo.Title); err != nil {
		return false, err
	}
	n.chime()
	return true, nil
}

var _ Notifier = (*LocalNotifier)(nil)
