package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vibetweet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "array", input: `[{"content":"a","confidence":0.9},{"content":"b"}]`, want: []string{"a", "b"}},
		{name: "fenced", input: "```json\n[{\"content\":\"a\"}]\n```", want: []string{"a"}},
		{name: "tweets object", input: `{"tweets":[{"content":"x"}]}`, want: []string{"x"}},
		{name: "suggestions object", input: `{"suggestions":[{"content":"y"}]}`, want: []string{"y"}},
		{name: "plain strings", input: `["one","two"]`, want: []string{"one", "two"}},
		{name: "prose around array", input: "Sure! Here you go:\n[{\"content\":\"z\"}]\nEnjoy.", want: []string{"z"}},
		{name: "empty", input: "   ", wantErr: true},
		{name: "prose only", input: "I cannot help with that.", wantErr: true},
		{name: "empty object", input: `{"tweets":[]}`, wantErr: true},
		{name: "empty array", input: `[]`, wantErr: true},
		{name: "empty array in prose", input: "Nothing today: [] sorry", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSuggestions(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnparseable)
				return
			}
			require.NoError(t, err)
			contents := make([]string, len(got))
			for i, s := range got {
				contents[i] = s.Content
			}
			assert.Equal(t, tt.want, contents)
		})
	}
}

func TestParseSuggestionsKeepsConfidenceAndTrend(t *testing.T) {
	t.Parallel()

	got, err := ParseSuggestions(`[{"content":"a","confidence":0.7,"trend_used":"Go 1.26"},{"content":"b","trend_used":null}]`)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Confidence)
	assert.InDelta(t, 0.7, *got[0].Confidence, 1e-9)
	require.NotNil(t, got[0].TrendUsed)
	assert.Equal(t, "Go 1.26", *got[0].TrendUsed)
	assert.Nil(t, got[1].Confidence)
	assert.Nil(t, got[1].TrendUsed)
}

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	profile := models.DefaultStyleProfileData()
	profile.Themes = []string{"golang", "coffee"}
	profile.Vocabulary.CommonWords = []string{"shipping"}

	req := BuildRequest(PromptInput{
		Count:     3,
		Tone:      models.ToneSarcastic,
		Interests: []string{"databases"},
		Trends:    []string{"Postgres 18"},
		Profile:   &profile,
		Avoid:     []string{"already said this"},
	})

	assert.Contains(t, req.System, "sarcastic")
	assert.Contains(t, req.System, "golang, coffee")
	assert.Contains(t, req.System, "shipping")
	assert.Contains(t, req.Prompt, "Write 3 distinct")
	assert.Contains(t, req.Prompt, "Postgres 18")
	assert.Contains(t, req.Prompt, "databases")
	assert.Contains(t, req.Prompt, "already said this")
	assert.Equal(t, GuideFor(models.ToneSarcastic).Temperature, req.Temperature)
	assert.Positive(t, req.MaxTokens)
}

func TestGuideForEveryTone(t *testing.T) {
	t.Parallel()

	for _, tone := range models.Tones {
		g := GuideFor(tone)
		assert.NotEmpty(t, g.Description, tone)
		assert.NotEmpty(t, g.Guidance, tone)
	}
	assert.Equal(t, GuideFor(models.ToneCasual), GuideFor("unknown"))
}

type fakeProvider struct {
	name models.LLMProvider
}

func (f fakeProvider) Name() models.LLMProvider { return f.name }
func (f fakeProvider) Generate(context.Context, Request) (string, error) {
	return "[]", nil
}

func TestRegistryCandidates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(fakeProvider{name: models.ProviderOpenAI})
	r.Register(fakeProvider{name: models.ProviderClaude})

	names := func(ps []Provider) []models.LLMProvider {
		out := make([]models.LLMProvider, len(ps))
		for i, p := range ps {
			out[i] = p.Name()
		}
		return out
	}

	assert.Equal(t,
		[]models.LLMProvider{models.ProviderClaude, models.ProviderOpenAI},
		names(r.Candidates(models.ProviderClaude, models.ProviderOpenAI)))
	assert.Equal(t,
		[]models.LLMProvider{models.ProviderOpenAI, models.ProviderClaude},
		names(r.Candidates("", models.ProviderOpenAI)))

	only := NewRegistry()
	only.Register(fakeProvider{name: models.ProviderOpenAI})
	assert.Equal(t,
		[]models.LLMProvider{models.ProviderOpenAI},
		names(only.Candidates(models.ProviderClaude, models.ProviderClaude)))

	assert.Empty(t, NewRegistry().Candidates(models.ProviderClaude, models.ProviderOpenAI))
}

func TestProvidersRequireAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewClaudeProvider(ClaudeConfig{Model: "m"})
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewOpenAIProvider(OpenAIConfig{APIKey: "  "})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenAIProviderGenerate(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body.Model)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Equal(t, "user", body.Messages[1].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-test","choices":[{"index":0,"message":{"role":"assistant","content":"[{\"content\":\"hi\"}]"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:     "sk-test",
		Model:      "gpt-test",
		BaseURL:    server.URL + "/v1",
		MaxRetries: 1,
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderOpenAI, p.Name())

	out, err := p.Generate(context.Background(), Request{System: "sys", Prompt: "go", MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, `[{"content":"hi"}]`, out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIProviderDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk", Model: "m", BaseURL: server.URL + "/v1", MaxRetries: 3})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Prompt: "go"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClaudeProviderGenerate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body["model"])
		assert.NotNil(t, body["system"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "[{\"content\":"}, {"type": "text", "text": "\"yo\"}]"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	t.Cleanup(server.Close)

	p, err := NewClaudeProvider(ClaudeConfig{
		APIKey:  "sk-ant-test",
		Model:   "claude-test",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderClaude, p.Name())

	out, err := p.Generate(context.Background(), Request{System: "sys", Prompt: "go", Temperature: 0.5})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "["))

	parsed, err := ParseSuggestions(out)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "yo", parsed[0].Content)
}

func TestClaudeProviderSurfacesErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	t.Cleanup(server.Close)

	p, err := NewClaudeProvider(ClaudeConfig{APIKey: "bad", Model: "claude-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Prompt: "go"})
	require.Error(t, err)
}
