package todo

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
	"github.com/tickdone/backend/usecase"
)

type UseCase struct {
	todos  repository.TodoRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(todos repository.TodoRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:  todos,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) ListTodos(ctx context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	return uc.todos.List(ctx, filter)
}

func (uc *UseCase) GetTodo(ctx context.Context, userID, id string) (*domain.Todo, error) {
	return uc.todos.GetByID(ctx, userID, id)
}

func (uc *UseCase) CreateTodo(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(todo.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}
	// The delivered mark is owned by the delivery agents; callers never set it.
	todo.NotificationSent = false

	created, err := uc.todos.Create(ctx, todo)
	if err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationCreate, todo) {
			return todo, nil
		}
		return nil, err
	}
	return created, nil
}

// PatchTodo applies a partial update. Validation errors and empty patches
// are rejected before touching the store; the re-arm rule for remind_at is
// enforced inside the repository so it is atomic with the update itself.
func (uc *UseCase) PatchTodo(ctx context.Context, userID, id string, patch repository.TodoPatch) (*domain.Todo, error) {
	if patch.IsEmpty() {
		return nil, domain.ErrEmptyPatch
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}
	return uc.todos.Patch(ctx, userID, id, patch)
}

func (uc *UseCase) DeleteTodo(ctx context.Context, userID, id string) error {
	if err := uc.todos.Delete(ctx, userID, id); err != nil {
		if err == domain.ErrTodoNotFound {
			return err
		}
		todo := &domain.Todo{ID: id, UserID: userID}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, todo) {
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, todo *domain.Todo) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTodo(ctx, operation, todo); err != nil {
		uc.logger.Error("failed to buffer todo operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("todo operation buffered", zap.String("operation", operation))
	return true
}
