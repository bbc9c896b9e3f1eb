package reminder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
)

// Store is the slice of the todo repository an agent needs: candidate
// lookup and the conditional delivered mark.
type Store interface {
	DueReminders(ctx context.Context, filter repository.ReminderFilter) ([]domain.Todo, error)
	MarkNotified(ctx context.Context, id string) error
}

// Notifier attempts delivery over one channel. delivered=false with a nil
// error means the channel had nothing to do (no token, no permission); that
// is a valid outcome, not a failure.
type Notifier interface {
	Notify(ctx context.Context, todo *domain.Todo) (delivered bool, err error)
}

// Config controls an agent's scope and cadence.
type Config struct {
	// Name tags journal entries and logs (domain.AgentForeground or
	// domain.AgentSweep).
	Name string
	// UserID scopes candidate queries to one owner. Empty means the
	// privileged global scope.
	UserID string
	// ExcludeCompleted drops completed todos from the candidate set. The
	// foreground poller sets this; the sweep does not.
	ExcludeCompleted bool
	// Interval between foreground cycles. The first cycle runs immediately.
	Interval time.Duration
	// BatchSize caps candidates fetched per cycle.
	BatchSize int
}

// Agent runs the query-attempt-mark cycle against the shared store. Two
// instances exist in the system: a foreground poller and a one-shot backend
// sweep; both share this implementation and differ only in Config and
// Notifier. Marking happens after the attempt and the candidate query
// excludes marked rows, so duplicates are only possible across concurrently
// running agents, which the system tolerates.
type Agent struct {
	store    Store
	notifier Notifier
	journal  repository.DeliveryLogRepository
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time

	mu        sync.RWMutex
	lastCheck time.Time
}

func NewAgent(store Store, notifier Notifier, journal repository.DeliveryLogRepository, logger *zap.Logger, cfg Config) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = domain.AgentForeground
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Agent{
		store:    store,
		notifier: notifier,
		journal:  journal,
		logger:   logger.With(zap.String("agent", cfg.Name)),
		cfg:      cfg,
		now:      time.Now,
	}
}

// RunCycle executes one sweep: fetch candidates, attempt delivery for each,
// mark attempted ones. It returns the number of candidates marked. A store
// error on the candidate fetch aborts the cycle with nothing marked; the
// candidates stay due and are retried next cycle.
func (a *Agent) RunCycle(ctx context.Context) (int, error) {
	reference := a.now()

	todos, err := a.store.DueReminders(ctx, repository.ReminderFilter{
		UserID:           a.cfg.UserID,
		ExcludeCompleted: a.cfg.ExcludeCompleted,
		Now:              reference,
		Limit:            a.cfg.BatchSize,
	})
	if err != nil {
		a.logger.Error("due reminder query failed", zap.Error(err))
		return 0, err
	}

	if len(todos) == 0 {
		a.logger.Debug("no due reminders")
		a.recordCheck(reference)
		return 0, nil
	}

	a.logger.Info("due reminders found", zap.Int("count", len(todos)))

	processed := 0
	for i := range todos {
		todo := &todos[i]

		delivered, notifyErr := a.notifier.Notify(ctx, todo)
		if notifyErr != nil {
			// Channel failures never block the mark; there is no
			// delivery-receipt tracking in this design.
			a.logger.Warn("delivery attempt failed",
				zap.String("todo_id", todo.ID),
				zap.Error(notifyErr))
		}
		a.appendJournal(ctx, todo, delivered, notifyErr)

		if err := a.store.MarkNotified(ctx, todo.ID); err != nil {
			// Left unmarked, the todo stays a candidate and is retried next
			// cycle. A duplicate notification is the accepted cost.
			a.logger.Error("failed to mark reminder delivered",
				zap.String("todo_id", todo.ID),
				zap.Error(err))
			continue
		}
		processed++
	}

	a.recordCheck(reference)
	return processed, nil
}

// Run polls on the configured interval until the context is canceled. The
// first cycle runs immediately. In-flight cycles are not interrupted by
// cancellation; only subsequent cycles are prevented.
func (a *Agent) Run(ctx context.Context) {
	a.logger.Info("reminder agent started", zap.Duration("interval", a.cfg.Interval))

	if _, err := a.RunCycle(ctx); err != nil {
		a.logger.Warn("initial reminder cycle failed", zap.Error(err))
	}

	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("reminder agent stopped")
			return
		case <-ticker.C:
			if _, err := a.RunCycle(ctx); err != nil {
				a.logger.Warn("reminder cycle failed", zap.Error(err))
			}
		}
	}
}

// LastCheck returns when the agent last completed a cycle. Agent-local
// observability only; never persisted.
func (a *Agent) LastCheck() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastCheck
}

func (a *Agent) recordCheck(t time.Time) {
	a.mu.Lock()
	a.lastCheck = t
	a.mu.Unlock()
}

func (a *Agent) appendJournal(ctx context.Context, todo *domain.Todo, delivered bool, notifyErr error) {
	if a.journal == nil {
		return
	}

	event := domain.DeliveryEvent{
		TodoID:  todo.ID,
		UserID:  todo.UserID,
		Agent:   a.cfg.Name,
		Outcome: domain.OutcomeNotified,
	}
	switch {
	case notifyErr != nil:
		event.Outcome = domain.OutcomeFailed
		event.Detail = notifyErr.Error()
	case !delivered:
		event.Outcome = domain.OutcomeSkipped
	}

	if err := a.journal.Append(ctx, event); err != nil {
		a.logger.Warn("failed to append delivery event", zap.Error(err))
	}
}
