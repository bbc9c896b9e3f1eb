package services

import (
	"context"
	"encoding/json"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/internal/infrastructure/buffer"
	"github.com/tickdone/backend/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if b.processor == nil || user == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    user.ID,
		Entity:    buffer.EntityProfile,
		Operation: operation,
		Data:      payload,
		Priority:  3,
	}
	return b.processor.BufferOperation(ctx, item)
}

func (b *BufferBridge) BufferTodo(ctx context.Context, operation string, todo *domain.Todo) error {
	if b.processor == nil || todo == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(todo)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:        todo.ID,
		UserID:    todo.UserID,
		Entity:    buffer.EntityTodo,
		Operation: operation,
		Data:      payload,
		Priority:  4,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
