package agent

import (
	"context"
	"fmt"
	"strings"

	werrors "github.com/vinayprograms/willow/errors"
	"github.com/vinayprograms/willow/tasks"
)

// TaskSpec is a typed background task request. Each kind carries its own
// payload and is resolved to a deferred body before it ever reaches the
// task queue, so the core never dispatches on strings.
//
// The interface is sealed: the kinds defined in this package are the
// only ones the agent accepts.
type TaskSpec interface {
	resolve(a *Agent) (description string, body tasks.Body, err error)
}

// PromptTask runs a prompt against an LLM provider in the background.
type PromptTask struct {
	// Provider selects the provider by name; empty uses the settings
	// preference.
	Provider string

	// Prompt is the text sent to the provider.
	Prompt string

	// Description optionally overrides the generated task label.
	Description string
}

func (s PromptTask) resolve(a *Agent) (string, tasks.Body, error) {
	if s.Prompt == "" {
		return "", nil, werrors.New(werrors.ErrCodeInvalidInput, "prompt task has no prompt")
	}
	p, err := a.provider(s.Provider)
	if err != nil {
		return "", nil, err
	}

	description := s.Description
	if description == "" {
		description = fmt.Sprintf("%s prompt: %s", p.Name(), truncate(s.Prompt, 40))
	}

	prompt := s.Prompt
	body := func(ctx context.Context) (string, error) {
		return p.Complete(ctx, prompt)
	}
	return description, body, nil
}

// NoteSearchTask searches the note store in the background.
type NoteSearchTask struct {
	// Query is the full-text query.
	Query string

	// Limit caps the number of hits; 0 uses the store default.
	Limit int
}

func (s NoteSearchTask) resolve(a *Agent) (string, tasks.Body, error) {
	if s.Query == "" {
		return "", nil, werrors.New(werrors.ErrCodeInvalidInput, "note search has no query")
	}
	if a.notes == nil {
		return "", nil, werrors.New(werrors.ErrCodeUnsupported, "note store is not configured")
	}

	store := a.notes
	query := s.Query
	limit := s.Limit
	description := fmt.Sprintf("note search: %s", truncate(query, 40))

	body := func(ctx context.Context) (string, error) {
		matches, err := store.Search(query, limit)
		if err != nil {
			return "", err
		}
		if len(matches) == 0 {
			return "no matching notes", nil
		}
		lines := make([]string, len(matches))
		for i, m := range matches {
			lines[i] = fmt.Sprintf("%s: %s", m.ID, m.Content)
		}
		return strings.Join(lines, "\n"), nil
	}
	return description, body, nil
}

// truncate shortens s to at most n runes for use in task labels.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
