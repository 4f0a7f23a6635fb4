package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	werrors "github.com/vinayprograms/willow/errors"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicProvider implements Provider using the official Anthropic SDK.
type AnthropicProvider struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	retry     RetryConfig
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg Config) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, werrors.New(werrors.ErrCodeUnauthorized, "api key is required for anthropic",
			werrors.WithProvider("anthropic"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &AnthropicProvider{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
		retry:     cfg.Retry,
	}, nil
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete implements Provider.
func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	return withRetry(ctx, p.retry, func() (string, error) {
		resp, err := p.client.Messages.New(ctx, params)
		if err != nil {
			return "", p.classify(err)
		}

		var out string
		for _, block := range resp.Content {
			if block.Type == "text" {
				out += block.Text
			}
		}
		if out == "" {
			return "", werrors.New(werrors.ErrCodeProvider, "anthropic returned no text blocks",
				werrors.WithProvider("anthropic"))
		}
		return out, nil
	})
}

// classify converts SDK errors into coded errors using the HTTP status
// when the SDK exposes one.
func (p *AnthropicProvider) classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return classifyStatus("anthropic", apierr.StatusCode, err)
	}
	return classifyStatus("anthropic", 0, err)
}
