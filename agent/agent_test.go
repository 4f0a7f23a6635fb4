package agent

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/vinayprograms/willow/config"
	werrors "github.com/vinayprograms/willow/errors"
	"github.com/vinayprograms/willow/llm"
	"github.com/vinayprograms/willow/logging"
	"github.com/vinayprograms/willow/notes"
	"github.com/vinayprograms/willow/tasks"
)

func testLogger() *logging.Logger {
	l := logging.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

func newTestAgent(t *testing.T, providers map[string]llm.Provider, store *notes.Store) *Agent {
	t.Helper()
	settings := config.Default()
	settings.APIPreference = "mock"
	a := New(Config{
		Settings:  settings,
		Providers: providers,
		Notes:     store,
		Logger:    testLogger(),
	})
	t.Cleanup(func() { a.Close() })
	return a
}

func waitTerminal(t *testing.T, a *Agent, id int64) *tasks.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := a.TaskStatus(id)
		if err != nil {
			t.Fatalf("TaskStatus(%d) failed: %v", id, err)
		}
		if snap.Status.IsTerminal() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Task %d never reached a terminal state", id)
	return nil
}

func TestProcessPrompt(t *testing.T) {
	mock := llm.NewMock("direct answer")
	a := newTestAgent(t, map[string]llm.Provider{"mock": mock}, nil)

	got, err := a.ProcessPrompt(context.Background(), "what is up")
	if err != nil {
		t.Fatalf("ProcessPrompt failed: %v", err)
	}
	if got != "direct answer" {
		t.Errorf("Expected provider response, got %q", got)
	}
	if mock.LastPrompt() != "what is up" {
		t.Errorf("Prompt not forwarded, provider saw %q", mock.LastPrompt())
	}
}

func TestProcessPromptEmptyPrompt(t *testing.T) {
	a := newTestAgent(t, map[string]llm.Provider{"mock": llm.NewMock("x")}, nil)

	_, err := a.ProcessPrompt(context.Background(), "")
	if !werrors.IsCode(err, werrors.ErrCodeInvalidInput) {
		t.Errorf("Expected INVALID_INPUT, got %v", err)
	}
}

func TestProcessPromptUnconfiguredPreference(t *testing.T) {
	a := newTestAgent(t, map[string]llm.Provider{}, nil)

	_, err := a.ProcessPrompt(context.Background(), "hello")
	if !werrors.IsCode(err, werrors.ErrCodeUnsupported) {
		t.Errorf("Expected UNSUPPORTED for missing provider, got %v", err)
	}
}

func TestSubmitPromptTask(t *testing.T) {
	mock := llm.NewMock("background answer")
	a := newTestAgent(t, map[string]llm.Provider{"mock": mock}, nil)

	id, err := a.SubmitTask(PromptTask{Prompt: "tell me a story"})
	if err != nil {
		t.Fatalf("SubmitTask failed: %v", err)
	}

	snap := waitTerminal(t, a, id)
	if snap.Status != tasks.StatusCompleted {
		t.Fatalf("Expected completed, got %s (error %q)", snap.Status, snap.Error)
	}
	if snap.Result != "background answer" {
		t.Errorf("Expected provider result, got %q", snap.Result)
	}
}

func TestSubmitPromptTaskProviderFailure(t *testing.T) {
	mock := llm.NewMock("")
	mock.SetError(werrors.New(werrors.ErrCodeRateLimit, "mock rate limit exceeded"))
	a := newTestAgent(t, map[string]llm.Provider{"mock": mock}, nil)

	id, err := a.SubmitTask(PromptTask{Prompt: "doomed"})
	if err != nil {
		t.Fatalf("SubmitTask failed: %v", err)
	}

	snap := waitTerminal(t, a, id)
	if snap.Status != tasks.StatusFailed {
		t.Fatalf("Expected failed, got %s", snap.Status)
	}
	if snap.Error == "" {
		t.Error("Expected provider failure recorded on the task")
	}
}

func TestSubmitTaskValidation(t *testing.T) {
	a := newTestAgent(t, map[string]llm.Provider{"mock": llm.NewMock("x")}, nil)

	tests := []struct {
		name string
		spec TaskSpec
		want werrors.ErrorCode
	}{
		{"empty prompt", PromptTask{}, werrors.ErrCodeInvalidInput},
		{"unknown provider", PromptTask{Provider: "llamafarm", Prompt: "hi"}, werrors.ErrCodeUnsupported},
		{"empty query", NoteSearchTask{}, werrors.ErrCodeInvalidInput},
		{"no note store", NoteSearchTask{Query: "x"}, werrors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		_, err := a.SubmitTask(tt.spec)
		if !werrors.IsCode(err, tt.want) {
			t.Errorf("%s: expected %s, got %v", tt.name, tt.want, err)
		}
	}

	// Rejected specs must never reach the queue.
	if got := len(a.AllTaskStatuses()); got != 0 {
		t.Errorf("Expected empty task history after rejections, got %d entries", got)
	}
}

func TestSubmitNoteSearchTask(t *testing.T) {
	store, err := notes.Open("")
	if err != nil {
		t.Fatalf("notes.Open failed: %v", err)
	}
	if _, err := store.Add("willow trees like wet soil"); err != nil {
		t.Fatalf("Add note failed: %v", err)
	}

	a := newTestAgent(t, map[string]llm.Provider{"mock": llm.NewMock("x")}, store)

	id, err := a.SubmitTask(NoteSearchTask{Query: "willow soil"})
	if err != nil {
		t.Fatalf("SubmitTask failed: %v", err)
	}

	snap := waitTerminal(t, a, id)
	if snap.Status != tasks.StatusCompleted {
		t.Fatalf("Expected completed, got %s (error %q)", snap.Status, snap.Error)
	}
	if snap.Result == "" || snap.Result == "no matching notes" {
		t.Errorf("Expected a matching note in the result, got %q", snap.Result)
	}
}

func TestSubmitNoteSearchNoMatches(t *testing.T) {
	store, err := notes.Open("")
	if err != nil {
		t.Fatalf("notes.Open failed: %v", err)
	}
	a := newTestAgent(t, map[string]llm.Provider{"mock": llm.NewMock("x")}, store)

	id, err := a.SubmitTask(NoteSearchTask{Query: "nothing indexed"})
	if err != nil {
		t.Fatalf("SubmitTask failed: %v", err)
	}

	snap := waitTerminal(t, a, id)
	if snap.Result != "no matching notes" {
		t.Errorf("Expected explicit empty-result text, got %q", snap.Result)
	}
}

func TestTaskStatusUnknownID(t *testing.T) {
	a := newTestAgent(t, map[string]llm.Provider{"mock": llm.NewMock("x")}, nil)

	if _, err := a.TaskStatus(424242); err != tasks.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestPromptTaskDescription(t *testing.T) {
	a := newTestAgent(t, map[string]llm.Provider{"mock": llm.NewMock("x")}, nil)

	longPrompt := "write a very long essay about the history of asynchronous job queues"
	id, err := a.SubmitTask(PromptTask{Prompt: longPrompt})
	if err != nil {
		t.Fatalf("SubmitTask failed: %v", err)
	}

	snap := waitTerminal(t, a, id)
	if len(snap.Description) > len("mock prompt: ")+43 {
		t.Errorf("Description not truncated: %q", snap.Description)
	}
}

func TestSessionID(t *testing.T) {
	a := newTestAgent(t, map[string]llm.Provider{"mock": llm.NewMock("x")}, nil)
	b := newTestAgent(t, map[string]llm.Provider{"mock": llm.NewMock("x")}, nil)

	if a.SessionID() == "" {
		t.Error("Expected non-empty session ID")
	}
	if a.SessionID() == b.SessionID() {
		t.Error("Two agents should not share a session ID")
	}
}
