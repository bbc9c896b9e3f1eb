package usecase

import (
	"context"

	"github.com/tickdone/backend/domain"
)

// Buffered operation kinds.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferProfile(ctx context.Context, operation string, user *domain.User) error
	BufferTodo(ctx context.Context, operation string, todo *domain.Todo) error
}
