package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
)

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation of TodoRepository.
func NewTodoRepository(pool *pgxpool.Pool) repository.TodoRepository {
	return &todoRepository{pool: pool}
}

const todoColumns = `id, user_id, title, completed, remind_at, notification_sent, created_at, updated_at`

func (r *todoRepository) GetByID(ctx context.Context, userID, id string) (*domain.Todo, error) {
	query := fmt.Sprintf(`
	SELECT %s
	FROM todos
	WHERE id = $1 AND user_id = $2
	`, todoColumns)
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanTodo(row)
}

func (r *todoRepository) List(ctx context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	query := fmt.Sprintf(`
	SELECT %s
	FROM todos
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`, todoColumns)
	rows, err := r.pool.Query(ctx, query, filter.UserID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTodos(rows)
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}

	// notification_sent is forced false on creation regardless of input.
	const query = `
	INSERT INTO todos (id, user_id, title, completed, remind_at, notification_sent)
	VALUES ($1, $2, $3, $4, $5, FALSE)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.Completed,
		nullableTime(todo.RemindAt),
	).Scan(&todo.CreatedAt, &todo.UpdatedAt); err != nil {
		return nil, err
	}

	todo.NotificationSent = false
	return todo, nil
}

func (r *todoRepository) Patch(ctx context.Context, userID, id string, patch repository.TodoPatch) (*domain.Todo, error) {
	if patch.IsEmpty() {
		return nil, domain.ErrEmptyPatch
	}

	set, args := buildTodoPatch(patch)
	args = append(args, id, userID)

	query := fmt.Sprintf(`
	UPDATE todos
	SET %s, updated_at = NOW()
	WHERE id = $%d AND user_id = $%d
	RETURNING %s
	`, strings.Join(set, ", "), len(args)-1, len(args), todoColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanTodo(row)
}

func (r *todoRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM todos WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) DueReminders(ctx context.Context, filter repository.ReminderFilter) ([]domain.Todo, error) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	query := fmt.Sprintf(`
	SELECT %s
	FROM todos
	WHERE remind_at IS NOT NULL
	  AND remind_at <= $1
	  AND notification_sent = FALSE
	  AND ($2 = '' OR user_id = $2)
	  AND ($3 = FALSE OR completed = FALSE)
	LIMIT $4
	`, todoColumns)

	rows, err := r.pool.Query(ctx, query, now, filter.UserID, filter.ExcludeCompleted, clampLimit(filter.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTodos(rows)
}

func (r *todoRepository) MarkNotified(ctx context.Context, id string) error {
	// Conditional write: a row already claimed by a concurrent agent is left
	// alone and the zero-row result is not an error.
	const query = `
	UPDATE todos
	SET notification_sent = TRUE, updated_at = NOW()
	WHERE id = $1 AND notification_sent = FALSE
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// buildTodoPatch translates a TodoPatch into SET clauses and ordered args.
// A patch touching remind_at always re-arms notification_sent.
func buildTodoPatch(patch repository.TodoPatch) ([]string, []interface{}) {
	var (
		set  []string
		args []interface{}
	)
	next := func() int { return len(args) + 1 }

	if patch.Title != nil {
		set = append(set, fmt.Sprintf("title = $%d", next()))
		args = append(args, *patch.Title)
	}
	if patch.Completed != nil {
		set = append(set, fmt.Sprintf("completed = $%d", next()))
		args = append(args, *patch.Completed)
	}
	if patch.RemindAt.Set {
		set = append(set, fmt.Sprintf("remind_at = $%d", next()))
		args = append(args, nullableTime(patch.RemindAt.Value))
		set = append(set, "notification_sent = FALSE")
	}
	return set, args
}

func scanTodo(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Todo, error) {
	var todo domain.Todo
	var remindAt *time.Time

	if err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Completed,
		&remindAt,
		&todo.NotificationSent,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}

	todo.RemindAt = remindAt
	return &todo, nil
}

func collectTodos(rows pgx.Rows) ([]domain.Todo, error) {
	var todos []domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
