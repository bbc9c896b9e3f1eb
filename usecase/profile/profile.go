package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
	"github.com/tickdone/backend/usecase"
)

type UseCase struct {
	users   repository.UserRepository
	devices repository.DeviceRepository
	buffer  usecase.OperationBuffer
	logger  *zap.Logger
}

func New(users repository.UserRepository, devices repository.DeviceRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:   users,
		devices: devices,
		buffer:  buffer,
		logger:  logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

func (uc *UseCase) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := uc.users.Upsert(ctx, user); err != nil {
		if uc.buffer != nil {
			if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpdate, user); bufErr != nil {
				uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
			return user, nil
		}
		return nil, err
	}
	return user, nil
}

// RegisterDevice stores the push token the backend sweep dispatches to. The
// token is replaced wholesale; one device per user.
func (uc *UseCase) RegisterDevice(ctx context.Context, userID, token string) error {
	if token == "" {
		return domain.ErrInvalidPayload
	}
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return uc.devices.SaveToken(ctx, userID, token)
}

func (uc *UseCase) UnregisterDevice(ctx context.Context, userID string) error {
	return uc.devices.DeleteToken(ctx, userID)
}
