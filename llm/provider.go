package llm

import (
	"context"
	"sync"
	"time"

	werrors "github.com/vinayprograms/willow/errors"
)

// Provider is the interface for LLM providers. A provider turns one text
// prompt into one text completion; conversation state, if any, is the
// caller's concern.
type Provider interface {
	// Name returns the provider name ("openai", "google", "anthropic").
	Name() string

	// Complete sends a prompt and returns the completion text. Failures
	// are structured errors carrying an error code (UNAUTHORIZED,
	// RATE_LIMITED, ...) so callers never parse provider error text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration common to all providers.
type Config struct {
	APIKey    string
	Model     string // empty selects the provider's default model
	MaxTokens int    // 0 selects defaultMaxTokens
	BaseURL   string // optional custom endpoint (openai/anthropic only)
	Retry     RetryConfig
}

// RetryConfig holds retry settings for provider calls.
type RetryConfig struct {
	MaxRetries  int           // max retry attempts (default 3)
	InitBackoff time.Duration // initial backoff (default 1s)
	MaxBackoff  time.Duration // backoff ceiling (default 30s)
}

const (
	defaultMaxTokens = 1024

	defaultMaxRetries  = 3
	defaultInitBackoff = time.Second
	defaultMaxBackoff  = 30 * time.Second
	backoffFactor      = 2.0
)

func (r RetryConfig) withDefaults() RetryConfig {
	if r.MaxRetries <= 0 {
		r.MaxRetries = defaultMaxRetries
	}
	if r.InitBackoff <= 0 {
		r.InitBackoff = defaultInitBackoff
	}
	if r.MaxBackoff <= 0 {
		r.MaxBackoff = defaultMaxBackoff
	}
	return r
}

// withRetry invokes call, retrying on retryable classified errors with
// exponential backoff. Permanent errors (bad credentials, invalid input)
// return immediately.
func withRetry(ctx context.Context, retry RetryConfig, call func() (string, error)) (string, error) {
	retry = retry.withDefaults()
	backoff := retry.InitBackoff

	var result string
	var err error
	for attempt := 0; attempt <= retry.MaxRetries; attempt++ {
		result, err = call()
		if err == nil {
			return result, nil
		}
		if !werrors.IsRetryable(err) || attempt == retry.MaxRetries {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", werrors.Wrap(werrors.ErrCodeTimeout, "provider call canceled", ctx.Err())
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * backoffFactor)
		if backoff > retry.MaxBackoff {
			backoff = retry.MaxBackoff
		}
	}
	return "", err
}

// --- Mock Provider for Testing ---

// Mock is an in-memory Provider for tests.
type Mock struct {
	mu         sync.Mutex
	response   string
	err        error
	callCount  int
	lastPrompt string

	// CompleteFunc can be set for custom behavior.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

// NewMock creates a mock provider returning the given response.
func NewMock(response string) *Mock {
	return &Mock{response: response}
}

// Name implements Provider.
func (m *Mock) Name() string {
	return "mock"
}

// SetError makes subsequent Complete calls fail with err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CallCount returns the number of Complete calls made.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastPrompt returns the prompt from the most recent call.
func (m *Mock) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// Complete implements Provider.
func (m *Mock) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastPrompt = prompt
	fn, err, resp := m.CompleteFunc, m.err, m.response
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}
