package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
)

type deliveryLogRepository struct {
	pool *pgxpool.Pool
}

// NewDeliveryLogRepository creates a Postgres-backed delivery journal.
func NewDeliveryLogRepository(pool *pgxpool.Pool) repository.DeliveryLogRepository {
	return &deliveryLogRepository{pool: pool}
}

func (r *deliveryLogRepository) Append(ctx context.Context, event domain.DeliveryEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO delivery_events (id, todo_id, user_id, agent, outcome, detail)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.TodoID,
		event.UserID,
		event.Agent,
		event.Outcome,
		event.Detail,
	)
	return err
}

func (r *deliveryLogRepository) ListByTodo(ctx context.Context, todoID string, limit int) ([]domain.DeliveryEvent, error) {
	const query = `
	SELECT id, todo_id, user_id, agent, outcome, detail, created_at
	FROM delivery_events
	WHERE todo_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, todoID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.DeliveryEvent
	for rows.Next() {
		event, err := scanDeliveryEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func scanDeliveryEvent(row pgx.Row) (*domain.DeliveryEvent, error) {
	var event domain.DeliveryEvent
	if err := row.Scan(
		&event.ID,
		&event.TodoID,
		&event.UserID,
		&event.Agent,
		&event.Outcome,
		&event.Detail,
		&event.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}
