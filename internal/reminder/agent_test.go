package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/repository"
)

// fakeStore is an in-memory Store honoring the candidate contract: remind_at
// set, elapsed, not yet notified, with optional owner/completed filters.
type fakeStore struct {
	mu    sync.Mutex
	todos map[string]*domain.Todo

	queryErr error
	markErr  error
	// frozen, when set, is returned by DueReminders instead of a live query.
	// Used to simulate two agents observing the same snapshot before either
	// marks anything.
	frozen []domain.Todo
}

func newFakeStore(todos ...*domain.Todo) *fakeStore {
	s := &fakeStore{todos: make(map[string]*domain.Todo)}
	for _, todo := range todos {
		s.todos[todo.ID] = todo
	}
	return s
}

func (s *fakeStore) DueReminders(_ context.Context, filter repository.ReminderFilter) ([]domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.frozen != nil {
		return s.frozen, nil
	}

	var due []domain.Todo
	for _, todo := range s.todos {
		if !todo.IsDue(filter.Now) {
			continue
		}
		if filter.UserID != "" && todo.UserID != filter.UserID {
			continue
		}
		if filter.ExcludeCompleted && todo.Completed {
			continue
		}
		due = append(due, *todo)
	}
	return due, nil
}

func (s *fakeStore) MarkNotified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markErr != nil {
		return s.markErr
	}
	if todo, ok := s.todos[id]; ok && !todo.NotificationSent {
		todo.NotificationSent = true
	}
	return nil
}

func (s *fakeStore) get(id string) domain.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.todos[id]
}

type fakeNotifier struct {
	mu        sync.Mutex
	notified  []string
	delivered bool
	err       error
}

func (n *fakeNotifier) Notify(_ context.Context, todo *domain.Todo) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, todo.ID)
	return n.delivered, n.err
}

func (n *fakeNotifier) attempts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notified...)
}

type journalRecorder struct {
	mu     sync.Mutex
	events []domain.DeliveryEvent
}

func (j *journalRecorder) Append(_ context.Context, event domain.DeliveryEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
	return nil
}

func (j *journalRecorder) ListByTodo(_ context.Context, todoID string, _ int) ([]domain.DeliveryEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []domain.DeliveryEvent
	for _, e := range j.events {
		if e.TodoID == todoID {
			out = append(out, e)
		}
	}
	return out, nil
}

func remindAt(t time.Time) *time.Time { return &t }

func newTestAgent(store Store, notifier Notifier, journal repository.DeliveryLogRepository, cfg Config, now time.Time) *Agent {
	agent := NewAgent(store, notifier, journal, nil, cfg)
	agent.now = func() time.Time { return now }
	return agent
}

func TestRunCycleDeliversDueReminder(t *testing.T) {
	now := time.Now()
	store := newFakeStore(&domain.Todo{
		ID:       "t1",
		UserID:   "u1",
		Title:    "water the plants",
		RemindAt: remindAt(now.Add(-time.Minute)),
	})
	notifier := &fakeNotifier{delivered: true}
	journal := &journalRecorder{}

	agent := newTestAgent(store, notifier, journal, Config{Name: domain.AgentSweep}, now)

	processed, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{"t1"}, notifier.attempts())
	assert.True(t, store.get("t1").NotificationSent)
	assert.Equal(t, now, agent.LastCheck())

	require.Len(t, journal.events, 1)
	assert.Equal(t, domain.OutcomeNotified, journal.events[0].Outcome)
	assert.Equal(t, domain.AgentSweep, journal.events[0].Agent)
}

func TestRunCycleIgnoresTodosWithoutReminder(t *testing.T) {
	now := time.Now()
	store := newFakeStore(
		&domain.Todo{ID: "t1", UserID: "u1", Title: "no reminder"},
		&domain.Todo{ID: "t2", UserID: "u1", Title: "future", RemindAt: remindAt(now.Add(time.Hour))},
	)
	notifier := &fakeNotifier{delivered: true}

	agent := newTestAgent(store, notifier, nil, Config{}, now)

	processed, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Empty(t, notifier.attempts())
	assert.False(t, store.get("t1").NotificationSent)
	assert.False(t, store.get("t2").NotificationSent)
}

func TestRunCycleEmptySetRecordsCheck(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	agent := newTestAgent(store, &fakeNotifier{}, nil, Config{}, now)

	processed, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Equal(t, now, agent.LastCheck())
}

func TestRunCycleIdempotent(t *testing.T) {
	now := time.Now()
	store := newFakeStore(&domain.Todo{
		ID:       "t1",
		UserID:   "u1",
		Title:    "pay rent",
		RemindAt: remindAt(now.Add(-time.Minute)),
	})
	notifier := &fakeNotifier{delivered: true}
	agent := newTestAgent(store, notifier, nil, Config{}, now)

	first, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	// Second cycle with no intervening mutation: zero candidates.
	second, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Equal(t, []string{"t1"}, notifier.attempts())
}

func TestForegroundScopeExcludesCompleted(t *testing.T) {
	now := time.Now()
	due := remindAt(now.Add(-time.Minute))
	store := newFakeStore(
		&domain.Todo{ID: "open", UserID: "u1", Title: "open", RemindAt: due},
		&domain.Todo{ID: "done", UserID: "u1", Title: "done", Completed: true, RemindAt: due},
		&domain.Todo{ID: "other", UserID: "u2", Title: "other owner", RemindAt: due},
	)

	foreground := &fakeNotifier{delivered: true}
	fgAgent := newTestAgent(store, foreground, nil, Config{
		Name:             domain.AgentForeground,
		UserID:           "u1",
		ExcludeCompleted: true,
	}, now)

	processed, err := fgAgent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{"open"}, foreground.attempts())

	// The global sweep still sees the completed todo and the other owner's.
	sweep := &fakeNotifier{delivered: true}
	swAgent := newTestAgent(store, sweep, nil, Config{Name: domain.AgentSweep}, now)

	processed, err = swAgent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.ElementsMatch(t, []string{"done", "other"}, sweep.attempts())
}

func TestRunCycleQueryFailureAbortsWithoutMarking(t *testing.T) {
	now := time.Now()
	store := newFakeStore(&domain.Todo{
		ID:       "t1",
		UserID:   "u1",
		Title:    "due",
		RemindAt: remindAt(now.Add(-time.Minute)),
	})
	store.queryErr = errors.New("store unreachable")
	notifier := &fakeNotifier{delivered: true}
	agent := newTestAgent(store, notifier, nil, Config{}, now)

	_, err := agent.RunCycle(context.Background())
	require.Error(t, err)
	assert.Empty(t, notifier.attempts())
	assert.False(t, store.get("t1").NotificationSent)
	assert.True(t, agent.LastCheck().IsZero())

	// Store recovers: the candidate is still due and gets delivered.
	store.mu.Lock()
	store.queryErr = nil
	store.mu.Unlock()

	processed, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
}

func TestRunCycleNotifyFailureStillMarks(t *testing.T) {
	now := time.Now()
	store := newFakeStore(&domain.Todo{
		ID:       "t1",
		UserID:   "u1",
		Title:    "due",
		RemindAt: remindAt(now.Add(-time.Minute)),
	})
	notifier := &fakeNotifier{err: errors.New("push gateway rejected")}
	journal := &journalRecorder{}
	agent := newTestAgent(store, notifier, journal, Config{}, now)

	processed, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.True(t, store.get("t1").NotificationSent)

	require.Len(t, journal.events, 1)
	assert.Equal(t, domain.OutcomeFailed, journal.events[0].Outcome)
}

func TestRunCycleSkippedDeliveryStillMarks(t *testing.T) {
	now := time.Now()
	store := newFakeStore(&domain.Todo{
		ID:       "t1",
		UserID:   "u1",
		Title:    "due",
		RemindAt: remindAt(now.Add(-time.Minute)),
	})
	// delivered=false with nil error: no token registered, nothing to do.
	notifier := &fakeNotifier{delivered: false}
	journal := &journalRecorder{}
	agent := newTestAgent(store, notifier, journal, Config{}, now)

	processed, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.True(t, store.get("t1").NotificationSent)

	require.Len(t, journal.events, 1)
	assert.Equal(t, domain.OutcomeSkipped, journal.events[0].Outcome)
}

func TestRunCycleMarkFailureRetriesNextCycle(t *testing.T) {
	now := time.Now()
	store := newFakeStore(&domain.Todo{
		ID:       "t1",
		UserID:   "u1",
		Title:    "due",
		RemindAt: remindAt(now.Add(-time.Minute)),
	})
	store.markErr = errors.New("write failed")
	notifier := &fakeNotifier{delivered: true}
	agent := newTestAgent(store, notifier, nil, Config{}, now)

	processed, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.False(t, store.get("t1").NotificationSent)

	store.mu.Lock()
	store.markErr = nil
	store.mu.Unlock()

	// Re-attempted next cycle; the duplicate notification is the accepted cost.
	processed, err = agent.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{"t1", "t1"}, notifier.attempts())
	assert.True(t, store.get("t1").NotificationSent)
}

func TestConcurrentAgentsBothAttemptFinalStateMarked(t *testing.T) {
	now := time.Now()
	todo := &domain.Todo{
		ID:       "t1",
		UserID:   "u1",
		Title:    "shared candidate",
		RemindAt: remindAt(now.Add(-time.Minute)),
	}
	store := newFakeStore(todo)
	// Both agents observe the same pre-mark snapshot of the candidate set.
	store.frozen = []domain.Todo{*todo}

	first := &fakeNotifier{delivered: true}
	second := &fakeNotifier{delivered: true}
	agentA := newTestAgent(store, first, nil, Config{Name: domain.AgentForeground, UserID: "u1"}, now)
	agentB := newTestAgent(store, second, nil, Config{Name: domain.AgentSweep}, now)

	_, err := agentA.RunCycle(context.Background())
	require.NoError(t, err)
	_, err = agentB.RunCycle(context.Background())
	require.NoError(t, err)

	// Duplicate delivery is a tolerated outcome, not a failure.
	assert.Equal(t, []string{"t1"}, first.attempts())
	assert.Equal(t, []string{"t1"}, second.attempts())
	assert.True(t, store.get("t1").NotificationSent)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	agent := newTestAgent(store, &fakeNotifier{}, nil, Config{Interval: 5 * time.Millisecond}, now)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		agent.Run(ctx)
		close(done)
	}()

	// Let the immediate first cycle and at least one tick happen.
	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("agent did not stop after cancellation")
	}
	assert.False(t, agent.LastCheck().IsZero())
}
