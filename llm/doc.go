// Package llm provides text-completion providers for Willow.
//
// A Provider turns one prompt into one completion:
//
//	p, err := llm.NewProvider(ctx, "openai", llm.Config{APIKey: key})
//	text, err := p.Complete(ctx, "Summarize this report...")
//
// Implementations exist for OpenAI, Google Gemini and Anthropic, each
// built on the official SDK. Provider failures come back as structured
// errors from the errors package: a bad API key is UNAUTHORIZED, a 429
// is RATE_LIMITED, a 5xx is UNAVAILABLE, and so on. Transient and
// rate-limit failures are retried internally with exponential backoff
// before surfacing.
//
// The Mock provider supports testing without network access.
package llm
