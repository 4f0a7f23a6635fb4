package llm

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	werrors "github.com/vinayprograms/willow/errors"
)

const defaultGoogleModel = "gemini-2.0-flash"

// GoogleProvider implements Provider using the official Gemini SDK.
type GoogleProvider struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	retry     RetryConfig
}

// NewGoogleProvider creates a new Google Gemini provider.
func NewGoogleProvider(ctx context.Context, cfg Config) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return nil, werrors.New(werrors.ErrCodeUnauthorized, "api key is required for google",
			werrors.WithProvider("google"))
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeProvider, "failed to create google client", err,
			werrors.WithProvider("google"))
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultGoogleModel
	}
	maxTokens := int32(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	model := client.GenerativeModel(modelName)
	model.MaxOutputTokens = &maxTokens

	return &GoogleProvider{
		client:    client,
		model:     model,
		modelName: modelName,
		retry:     cfg.Retry,
	}, nil
}

// Close closes the underlying client.
func (p *GoogleProvider) Close() error {
	return p.client.Close()
}

// Name implements Provider.
func (p *GoogleProvider) Name() string {
	return "google"
}

// Complete implements Provider.
func (p *GoogleProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return withRetry(ctx, p.retry, func() (string, error) {
		resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", p.classify(err)
		}

		var out string
		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			for _, part := range resp.Candidates[0].Content.Parts {
				if text, ok := part.(genai.Text); ok {
					out += string(text)
				}
			}
		}
		if out == "" {
			return "", werrors.New(werrors.ErrCodeProvider, "google returned no text candidates",
				werrors.WithProvider("google"))
		}
		return out, nil
	})
}

// classify converts SDK errors into coded errors using the HTTP status
// carried by googleapi errors.
func (p *GoogleProvider) classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return classifyStatus("google", gerr.Code, err)
	}
	return classifyStatus("google", 0, err)
}
