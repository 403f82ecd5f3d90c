package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"vibetweet/internal/models"
	"vibetweet/internal/observability"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
}

// OpenAIProvider calls the Chat Completions API.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	maxRetries int
}

// NewOpenAIProvider builds the provider, or returns ErrNotConfigured without an API key.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Name implements Provider.
func (p *OpenAIProvider) Name() models.LLMProvider {
	return models.ProviderOpenAI
}

// Generate implements Provider. Rate limits and server errors are retried with backoff.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (text string, err error) {
	start := time.Now()
	defer func() { observability.ObserveLLM(string(models.ProviderOpenAI), start, err) }()

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}

	backoff := 500 * time.Millisecond
	for attempt := 0; ; attempt++ {
		var resp openai.ChatCompletionResponse
		resp, err = p.client.CreateChatCompletion(ctx, chatReq)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", errors.New("openai returned no choices")
			}
			return resp.Choices[0].Message.Content, nil
		}
		if attempt >= p.maxRetries || !retryable(err) {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}
