package repository

import "context"

// DeviceRepository keeps the per-user push token registry. A user without a
// registered token reads as domain.ErrDeviceNotFound, which delivery agents
// treat as "nothing to dispatch", not a failure.
type DeviceRepository interface {
	GetToken(ctx context.Context, userID string) (string, error)
	SaveToken(ctx context.Context, userID, token string) error
	DeleteToken(ctx context.Context, userID string) error
}
