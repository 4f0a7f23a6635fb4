package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vinayprograms/willow/config"
	werrors "github.com/vinayprograms/willow/errors"
	"github.com/vinayprograms/willow/llm"
	"github.com/vinayprograms/willow/logging"
	"github.com/vinayprograms/willow/notes"
	"github.com/vinayprograms/willow/tasks"
)

// Agent ties Willow's pieces together: user settings, LLM providers, the
// note store, and the background task manager. Construct one per process
// with New.
type Agent struct {
	log       *logging.Logger
	sessionID string
	settings  config.Settings
	providers map[string]llm.Provider
	notes     *notes.Store
	manager   *tasks.Manager
}

// Config configures an Agent.
type Config struct {
	// Settings are the loaded user settings. Zero value falls back to
	// config.Default().
	Settings config.Settings

	// Providers maps provider names to implementations. At least the
	// settings' APIPreference should be present for synchronous prompts
	// to work.
	Providers map[string]llm.Provider

	// Notes is the optional note store backing note-search tasks.
	Notes *notes.Store

	// Logger receives agent and task events. Defaults to a fresh logger.
	Logger *logging.Logger
}

// New creates an Agent and starts its background task manager.
func New(cfg Config) *Agent {
	settings := cfg.Settings
	if settings == (config.Settings{}) {
		settings = config.Default()
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}

	sessionID := uuid.NewString()
	log = log.WithSessionID(sessionID)

	providers := cfg.Providers
	if providers == nil {
		providers = map[string]llm.Provider{}
	}

	a := &Agent{
		log:       log.WithComponent("agent"),
		sessionID: sessionID,
		settings:  settings,
		providers: providers,
		notes:     cfg.Notes,
		manager: tasks.New(tasks.Config{
			MaxConcurrent: settings.MaxConcurrentTasks,
			Logger:        log,
		}),
	}

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	a.log.Info("agent_ready", map[string]interface{}{
		"providers":  fmt.Sprintf("%v", names),
		"preference": settings.APIPreference,
		"workers":    settings.MaxConcurrentTasks,
	})
	return a
}

// SessionID returns the unique ID of this agent instance.
func (a *Agent) SessionID() string {
	return a.sessionID
}

// Settings returns the settings the agent was built with.
func (a *Agent) Settings() config.Settings {
	return a.settings
}

// provider resolves a provider by name, using the settings preference
// when name is empty.
func (a *Agent) provider(name string) (llm.Provider, error) {
	if name == "" {
		name = a.settings.APIPreference
	}
	p, ok := a.providers[name]
	if !ok {
		return nil, werrors.Newf(werrors.ErrCodeUnsupported, "provider %q is not configured", name)
	}
	return p, nil
}

// ProcessPrompt sends a prompt to the preferred provider and blocks for
// the answer. Use SubmitTask for work that should run in the background.
func (a *Agent) ProcessPrompt(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", werrors.New(werrors.ErrCodeInvalidInput, "prompt is empty")
	}
	p, err := a.provider("")
	if err != nil {
		return "", err
	}

	a.log.Debug("prompt_sync", map[string]interface{}{"provider": p.Name()})
	return p.Complete(ctx, prompt)
}

// SubmitTask validates a task spec, resolves it to a deferred body, and
// enqueues it. The returned ID can be polled with TaskStatus. Invalid
// specs are rejected here and never reach the queue.
func (a *Agent) SubmitTask(spec TaskSpec) (int64, error) {
	description, body, err := spec.resolve(a)
	if err != nil {
		a.log.Warn("task_rejected", map[string]interface{}{"error": err.Error()})
		return 0, err
	}
	return a.manager.Submit(description, body), nil
}

// TaskStatus returns a snapshot of one background task, or
// tasks.ErrTaskNotFound for an ID this agent never issued.
func (a *Agent) TaskStatus(id int64) (*tasks.Snapshot, error) {
	return a.manager.Get(id)
}

// AllTaskStatuses returns a snapshot of every background task submitted
// during this session, ordered by ID.
func (a *Agent) AllTaskStatuses() []*tasks.Snapshot {
	return a.manager.List()
}

// QueueDepth reports pending and running background task counts.
func (a *Agent) QueueDepth() (pending, running int) {
	return a.manager.Len()
}

// Close stops the task manager and releases provider and note-store
// resources. Running task bodies finish first.
func (a *Agent) Close() error {
	a.manager.Close()

	var firstErr error
	for _, p := range a.providers {
		if closer, ok := p.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if a.notes != nil {
		if err := a.notes.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.log.Info("agent_closed")
	return firstErr
}
