package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	werrors "github.com/vinayprograms/willow/errors"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider implements Provider using the official OpenAI SDK.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
	retry     RetryConfig
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, werrors.New(werrors.ErrCodeUnauthorized, "api key is required for openai",
			werrors.WithProvider("openai"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &OpenAIProvider{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
		retry:     cfg.Retry,
	}, nil
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete implements Provider.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(p.maxTokens)),
		Temperature: openai.Float(0.7),
	}

	return withRetry(ctx, p.retry, func() (string, error) {
		resp, err := p.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", p.classify(err)
		}
		if len(resp.Choices) == 0 {
			return "", werrors.New(werrors.ErrCodeProvider, "openai returned no choices",
				werrors.WithProvider("openai"))
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// classify converts SDK errors into coded errors using the HTTP status
// when the SDK exposes one.
func (p *OpenAIProvider) classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return classifyStatus("openai", apierr.StatusCode, err)
	}
	return classifyStatus("openai", 0, err)
}
