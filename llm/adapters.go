package llm

import (
	"context"

	werrors "github.com/vinayprograms/willow/errors"
)

// NewProvider creates a provider by name. Supported names are "openai",
// "google" and "anthropic"; anything else is an UNSUPPORTED error.
func NewProvider(ctx context.Context, name string, cfg Config) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "google", "gemini":
		return NewGoogleProvider(ctx, cfg)
	case "anthropic":
		return NewAnthropicProvider(cfg)
	default:
		return nil, werrors.Newf(werrors.ErrCodeUnsupported, "unknown provider %q", name)
	}
}
