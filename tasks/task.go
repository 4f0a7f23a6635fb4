package tasks

import (
	"context"
	"sync/atomic"
	"time"

	werrors "github.com/vinayprograms/willow/errors"
	"github.com/vinayprograms/willow/logging"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is queued and waiting for a worker.
	StatusPending TaskStatus = "pending"

	// StatusRunning indicates a worker is executing the task body.
	StatusRunning TaskStatus = "running"

	// StatusCompleted indicates the task body returned successfully.
	StatusCompleted TaskStatus = "completed"

	// StatusFailed indicates the task body returned an error or panicked.
	StatusFailed TaskStatus = "failed"
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the status is a terminal state.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Body is a deferred computation submitted to the manager. Arguments are
// pre-bound by the submitter via closure; the manager never inspects the
// body beyond invoking it exactly once on a worker goroutine.
type Body func(ctx context.Context) (string, error)

// Internal state codes backing TaskStatus. Result and error text are
// written by the owning worker before the terminal state is published,
// so a reader that observes a terminal state may read them without
// holding the manager lock.
const (
	statePending int32 = iota
	stateRunning
	stateCompleted
	stateFailed
)

func statusOf(state int32) TaskStatus {
	switch state {
	case stateRunning:
		return StatusRunning
	case stateCompleted:
		return StatusCompleted
	case stateFailed:
		return StatusFailed
	default:
		return StatusPending
	}
}

// Task is one submitted unit of deferred work plus its execution outcome.
// Identity and body are immutable; status, result and error are mutated
// only by the single worker that dequeues the task.
type Task struct {
	id          int64
	description string
	body        Body
	createdAt   time.Time

	state  atomic.Int32
	result string
	errMsg string
}

func newTask(id int64, description string, body Body) *Task {
	return &Task{
		id:          id,
		description: description,
		body:        body,
		createdAt:   time.Now(),
	}
}

// ID returns the manager-assigned task identifier.
func (t *Task) ID() int64 {
	return t.id
}

// Description returns the caller-supplied label.
func (t *Task) Description() string {
	return t.description
}

// Status returns the task's current status.
func (t *Task) Status() TaskStatus {
	return statusOf(t.state.Load())
}

// run executes the task body and records the outcome. Failures are
// swallowed here: the body's error (or recovered panic) becomes the
// task's terminal failed state and never propagates to the worker loop.
// run always returns the task's final status.
func (t *Task) run(ctx context.Context, log *logging.Logger) TaskStatus {
	if !t.state.CompareAndSwap(statePending, stateRunning) {
		// Already ran or is running. The worker loop never does this;
		// treat misuse as a no-op rather than corrupting the record.
		log.Warn("task_rerun_ignored", map[string]interface{}{
			"task":   t.id,
			"status": t.Status().String(),
		})
		return t.Status()
	}

	log.TaskStart(t.id, t.description)
	start := time.Now()

	result, err := t.invoke(ctx)
	if err != nil {
		t.errMsg = err.Error()
		t.state.Store(stateFailed)
		log.TaskFailed(t.id, time.Since(start), err)
		return StatusFailed
	}

	t.result = result
	t.state.Store(stateCompleted)
	log.TaskComplete(t.id, time.Since(start), result)
	return StatusCompleted
}

// invoke calls the body, converting panics into failed-task errors so a
// misbehaving body cannot take down its worker.
func (t *Task) invoke(ctx context.Context) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = ""
			err = werrors.Newf(werrors.ErrCodePanic, "task body panicked: %v", r)
		}
	}()
	return t.body(ctx)
}

// Snapshot is a point-in-time view of a task's state as returned by
// status queries. Result is set iff Status is completed; Error is set
// iff Status is failed.
type Snapshot struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Result      string     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// snapshot captures the task's current state. Result and error are only
// read once a terminal state has been observed.
func (t *Task) snapshot() *Snapshot {
	s := &Snapshot{
		ID:          t.id,
		Description: t.description,
		Status:      statusOf(t.state.Load()),
		CreatedAt:   t.createdAt,
	}
	switch s.Status {
	case StatusCompleted:
		s.Result = t.result
	case StatusFailed:
		s.Error = t.errMsg
	}
	return s
}
