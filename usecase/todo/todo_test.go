package todo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
)

type fakeTodoRepo struct {
	todos     map[string]*domain.Todo
	createErr error
	deleteErr error
}

func newFakeTodoRepo(todos ...*domain.Todo) *fakeTodoRepo {
	r := &fakeTodoRepo{todos: make(map[string]*domain.Todo)}
	for _, todo := range todos {
		r.todos[todo.ID] = todo
	}
	return r
}

func (r *fakeTodoRepo) GetByID(_ context.Context, userID, id string) (*domain.Todo, error) {
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	copied := *todo
	return &copied, nil
}

func (r *fakeTodoRepo) List(_ context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	var out []domain.Todo
	for _, todo := range r.todos {
		if todo.UserID == filter.UserID {
			out = append(out, *todo)
		}
	}
	return out, nil
}

func (r *fakeTodoRepo) Create(_ context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if todo.ID == "" {
		todo.ID = "generated"
	}
	stored := *todo
	r.todos[todo.ID] = &stored
	return todo, nil
}

func (r *fakeTodoRepo) Patch(_ context.Context, userID, id string, patch repository.TodoPatch) (*domain.Todo, error) {
	if patch.IsEmpty() {
		return nil, domain.ErrEmptyPatch
	}
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	if patch.RemindAt.Set {
		todo.RemindAt = patch.RemindAt.Value
		todo.NotificationSent = false
	}
	copied := *todo
	return &copied, nil
}

func (r *fakeTodoRepo) Delete(_ context.Context, userID, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return domain.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *fakeTodoRepo) DueReminders(_ context.Context, _ repository.ReminderFilter) ([]domain.Todo, error) {
	return nil, nil
}

func (r *fakeTodoRepo) MarkNotified(_ context.Context, _ string) error { return nil }

type recordingBuffer struct {
	ops []string
	err error
}

func (b *recordingBuffer) BufferProfile(_ context.Context, operation string, _ *domain.User) error {
	b.ops = append(b.ops, "profile:"+operation)
	return b.err
}

func (b *recordingBuffer) BufferTodo(_ context.Context, operation string, _ *domain.Todo) error {
	b.ops = append(b.ops, "todo:"+operation)
	return b.err
}

func TestCreateTodoForcesDeliveredFlagFalse(t *testing.T) {
	repo := newFakeTodoRepo()
	uc := New(repo, nil, nil)

	created, err := uc.CreateTodo(context.Background(), &domain.Todo{
		UserID:           "u1",
		Title:            "buy milk",
		NotificationSent: true,
	})
	require.NoError(t, err)
	assert.False(t, created.NotificationSent)
}

func TestCreateTodoRejectsBlankTitle(t *testing.T) {
	uc := New(newFakeTodoRepo(), nil, nil)

	_, err := uc.CreateTodo(context.Background(), &domain.Todo{UserID: "u1", Title: "   "})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}

func TestPatchTodoRearmsOnReminderChange(t *testing.T) {
	when := time.Now().Add(-time.Hour)
	repo := newFakeTodoRepo(&domain.Todo{
		ID:               "t1",
		UserID:           "u1",
		Title:            "call bank",
		RemindAt:         &when,
		NotificationSent: true,
	})
	uc := New(repo, nil, nil)

	// Re-setting remind_at to the same value still resets the flag.
	updated, err := uc.PatchTodo(context.Background(), "u1", "t1", repository.TodoPatch{
		RemindAt: repository.OptionalTime{Set: true, Value: &when},
	})
	require.NoError(t, err)
	assert.False(t, updated.NotificationSent)

	// Clearing the reminder also resets it.
	repo.todos["t1"].NotificationSent = true
	updated, err = uc.PatchTodo(context.Background(), "u1", "t1", repository.TodoPatch{
		RemindAt: repository.OptionalTime{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.RemindAt)
	assert.False(t, updated.NotificationSent)
}

func TestPatchTodoTitleOnlyKeepsDeliveredFlag(t *testing.T) {
	when := time.Now().Add(-time.Hour)
	repo := newFakeTodoRepo(&domain.Todo{
		ID:               "t1",
		UserID:           "u1",
		Title:            "old",
		RemindAt:         &when,
		NotificationSent: true,
	})
	uc := New(repo, nil, nil)

	title := "new"
	updated, err := uc.PatchTodo(context.Background(), "u1", "t1", repository.TodoPatch{Title: &title})
	require.NoError(t, err)
	assert.True(t, updated.NotificationSent)
}

func TestPatchTodoRejectsEmptyPatch(t *testing.T) {
	repo := newFakeTodoRepo(&domain.Todo{ID: "t1", UserID: "u1", Title: "x"})
	uc := New(repo, nil, nil)

	_, err := uc.PatchTodo(context.Background(), "u1", "t1", repository.TodoPatch{})
	assert.ErrorIs(t, err, domain.ErrEmptyPatch)
	assert.Equal(t, "x", repo.todos["t1"].Title)
}

func TestPatchTodoRejectsBlankTitle(t *testing.T) {
	repo := newFakeTodoRepo(&domain.Todo{ID: "t1", UserID: "u1", Title: "x"})
	uc := New(repo, nil, nil)

	blank := ""
	_, err := uc.PatchTodo(context.Background(), "u1", "t1", repository.TodoPatch{Title: &blank})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}

func TestPatchTodoNotOwned(t *testing.T) {
	repo := newFakeTodoRepo(&domain.Todo{ID: "t1", UserID: "u1", Title: "x"})
	uc := New(repo, nil, nil)

	done := true
	_, err := uc.PatchTodo(context.Background(), "u2", "t1", repository.TodoPatch{Completed: &done})
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestCreateTodoBuffersOnStoreFailure(t *testing.T) {
	repo := newFakeTodoRepo()
	repo.createErr = errors.New("postgres down")
	buffer := &recordingBuffer{}
	uc := New(repo, buffer, nil)

	created, err := uc.CreateTodo(context.Background(), &domain.Todo{UserID: "u1", Title: "offline"})
	require.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, []string{"todo:create"}, buffer.ops)
}

func TestDeleteTodoNotFoundIsNotBuffered(t *testing.T) {
	buffer := &recordingBuffer{}
	uc := New(newFakeTodoRepo(), buffer, nil)

	err := uc.DeleteTodo(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
	assert.Empty(t, buffer.ops)
}
