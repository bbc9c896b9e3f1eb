package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
)

const defaultPushEndpoint = "https://fcm.googleapis.com/fcm/send"

// PushConfig holds the push gateway settings used by the backend sweep.
type PushConfig struct {
	Endpoint    string
	ServerKey   string
	Icon        string
	ClickAction string
	Timeout     time.Duration
}

type pushPayload struct {
	To           string           `json:"to"`
	Notification pushNotification `json:"notification"`
}

type pushNotification struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Icon        string `json:"icon,omitempty"`
	ClickAction string `json:"click_action,omitempty"`
}

// PushNotifier is the backend delivery channel: it resolves the owner's
// registered device token and dispatches to the external push gateway.
// A missing token or server key means nothing to do, not a failure.
type PushNotifier struct {
	devices repository.DeviceRepository
	client  *fasthttp.Client
	cfg     PushConfig
	logger  *zap.Logger
}

func NewPushNotifier(devices repository.DeviceRepository, client *fasthttp.Client, cfg PushConfig, logger *zap.Logger) *PushNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &fasthttp.Client{}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultPushEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &PushNotifier{
		devices: devices,
		client:  client,
		cfg:     cfg,
		logger:  logger,
	}
}

func (n *PushNotifier) Notify(ctx context.Context, todo *domain.Todo) (bool, error) {
	if todo == nil {
		return false, domain.ErrInvalidPayload
	}

	token, err := n.devices.GetToken(ctx, todo.UserID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			n.logger.Debug("no device token registered, skipping push",
				zap.String("todo_id", todo.ID),
				zap.String("user_id", todo.UserID))
			return false, nil
		}
		return false, err
	}

	if n.cfg.ServerKey == "" {
		n.logger.Debug("push server key not configured, skipping push",
			zap.String("todo_id", todo.ID))
		return false, nil
	}

	body, err := json.Marshal(pushPayload{
		To: token,
		Notification: pushNotification{
			Title:       notificationTitle,
			Body:        todo.Title,
			Icon:        n.cfg.Icon,
			ClickAction: n.cfg.ClickAction,
		},
	})
	if err != nil {
		return false, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.cfg.Endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "key="+n.cfg.ServerKey)
	req.SetBody(body)

	if err := n.client.DoTimeout(req, resp, n.cfg.Timeout); err != nil {
		return false, err
	}

	if status := resp.StatusCode(); status >= fasthttp.StatusMultipleChoices {
		return false, fmt.Errorf("push gateway rejected request: status %d", status)
	}

	n.logger.Info("push notification dispatched",
		zap.String("todo_id", todo.ID),
		zap.String("user_id", todo.UserID))
	return true, nil
}

var _ Notifier = (*PushNotifier)(nil)
