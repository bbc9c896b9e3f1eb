package redis

import (
	"context"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
)

type deviceRepository struct {
	client *redislib.Client
	prefix string
}

// NewDeviceRepository creates a Redis-backed push token registry. Tokens do
// not expire on their own; the owner replaces or removes them explicitly.
func NewDeviceRepository(client *redislib.Client) repository.DeviceRepository {
	return &deviceRepository{
		client: client,
		prefix: "device:",
	}
}

func (r *deviceRepository) GetToken(ctx context.Context, userID string) (string, error) {
	token, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if err == redislib.Nil {
			return "", domain.ErrDeviceNotFound
		}
		return "", err
	}
	return token, nil
}

func (r *deviceRepository) SaveToken(ctx context.Context, userID, token string) error {
	if userID == "" || token == "" {
		return domain.ErrInvalidPayload
	}
	return r.client.Set(ctx, r.key(userID), token, 0).Err()
}

func (r *deviceRepository) DeleteToken(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}

func (r *deviceRepository) key(userID string) string {
	return fmt.Sprintf("%s%s", r.prefix, userID)
}
