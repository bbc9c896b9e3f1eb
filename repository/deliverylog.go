package repository

import (
	"context"

	"github.com/tickdone/backend/domain"
)

type DeliveryLogRepository interface {
	Append(ctx context.Context, event domain.DeliveryEvent) error
	ListByTodo(ctx context.Context, todoID string, limit int) ([]domain.DeliveryEvent, error)
}
