package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/vinayprograms/willow/logging"
)

// ErrTaskNotFound indicates the requested task ID was never issued by
// this manager.
var ErrTaskNotFound = errors.New("task not found")

// DefaultMaxConcurrent is the worker pool size used when Config leaves
// MaxConcurrent unset.
const DefaultMaxConcurrent = 3

// Config configures a Manager.
type Config struct {
	// MaxConcurrent is the fixed worker pool size. Defaults to
	// DefaultMaxConcurrent when zero or negative.
	MaxConcurrent int

	// Logger receives task lifecycle events. Defaults to a fresh
	// logger when nil.
	Logger *logging.Logger
}

// Manager owns a fixed pool of worker goroutines, a FIFO queue of
// pending tasks, and the authoritative history of every task ever
// submitted. One mutex guards the queue, the in-flight set, the history
// map and the ID counter; task bodies always execute outside it.
//
// History is never evicted: memory grows with the number of tasks
// submitted over the manager's lifetime.
type Manager struct {
	log *logging.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*Task
	inFlight map[int64]*Task
	history  map[int64]*Task
	nextID   int64
	closed   bool

	wg sync.WaitGroup
}

// New creates a Manager and starts its worker pool. Workers block until
// work arrives and live until Close is called.
func New(cfg Config) *Manager {
	workers := cfg.MaxConcurrent
	if workers <= 0 {
		workers = DefaultMaxConcurrent
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}

	m := &Manager{
		log:      log.WithComponent("tasks"),
		inFlight: make(map[int64]*Task),
		history:  make(map[int64]*Task),
	}
	m.cond = sync.NewCond(&m.mu)

	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.worker()
	}

	m.log.Info("manager_started", map[string]interface{}{
		"workers": workers,
	})
	return m
}

// Submit enqueues a new task and returns its identifier. The ID is
// allocated, the task appended to the queue, and the history entry
// recorded in one critical section, so a status query issued immediately
// after return always finds the task. Submit never fails; validating the
// body is the caller's responsibility.
func (m *Manager) Submit(description string, body Body) int64 {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	t := newTask(id, description, body)
	m.queue = append(m.queue, t)
	m.history[id] = t
	m.cond.Signal()
	m.mu.Unlock()

	m.log.TaskQueued(id, description)
	return id
}

// Get returns a snapshot of the task with the given ID, or
// ErrTaskNotFound if the ID was never issued. The lookup is O(1) and
// never blocks on task execution.
func (m *Manager) Get(id int64) (*Snapshot, error) {
	m.mu.Lock()
	t, ok := m.history[id]
	m.mu.Unlock()

	if !ok {
		return nil, ErrTaskNotFound
	}
	return t.snapshot(), nil
}

// List returns a snapshot of every task ever submitted, ordered by ID.
// The history is walked in a single critical section; tasks submitted
// concurrently with the call may or may not appear.
func (m *Manager) List() []*Snapshot {
	m.mu.Lock()
	all := make([]*Task, 0, len(m.history))
	for _, t := range m.history {
		all = append(all, t)
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].id < all[j].id })

	snaps := make([]*Snapshot, len(all))
	for i, t := range all {
		snaps[i] = t.snapshot()
	}
	return snaps
}

// Len reports the number of queued and in-flight tasks.
func (m *Manager) Len() (pending, running int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue), len(m.inFlight)
}

// Close stops the worker pool and waits for in-flight bodies to finish.
// Tasks still queued stay pending; there is no drain. Close is
// idempotent, and tasks submitted after Close are recorded but never
// executed.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()

	m.wg.Wait()
	m.log.Info("manager_stopped")
}

// worker is the long-lived loop run by each pool slot. It blocks on the
// condition variable until a task is queued, moves the FIFO head into
// the in-flight set under the lock, and runs the body outside the lock
// so one long task never blocks submissions, status queries, or other
// workers' dequeues.
func (m *Manager) worker() {
	defer m.wg.Done()

	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.cond.Wait()
		}
		if m.closed {
			m.mu.Unlock()
			return
		}

		t := m.queue[0]
		m.queue = m.queue[1:]
		m.inFlight[t.id] = t
		m.mu.Unlock()

		t.run(context.Background(), m.log)

		m.mu.Lock()
		delete(m.inFlight, t.id)
		m.mu.Unlock()
	}
}
