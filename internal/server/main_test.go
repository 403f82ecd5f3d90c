package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vibetweet/internal/config"
	"vibetweet/internal/featureflags"
	"vibetweet/internal/llm"
	"vibetweet/internal/models"
	"vibetweet/internal/testutil"
	"vibetweet/internal/trends"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// MockProvider is a testify mock of llm.Provider.
type MockProvider struct {
	mock.Mock
	name models.LLMProvider
}

func (m *MockProvider) Name() models.LLMProvider {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type fetcherStub struct {
	tweets []models.TweetCreate
	err    error
	handle string
	limit  int
}

func (f *fetcherStub) FetchTweets(_ context.Context, handle string, limit int) ([]models.TweetCreate, error) {
	f.handle, f.limit = handle, limit
	return f.tweets, f.err
}

var testTopics = []string{"Go 1.26 release", "AI agents", "World Cup"}

func testConfig() *config.Config {
	return &config.Config{
		Env:                 "test",
		DefaultLLMProvider:  config.ProviderClaude,
		LLMTimeoutSeconds:   5,
		FeatureFlags:        "auto_reanalyze=off,trend_fetch=on",
		GenerationRateLimit: 10,
	}
}

// newTestApp builds a server over a private SQLite database with static trends.
func newTestApp(t *testing.T, opts Options) (*Server, *fiber.App) {
	t.Helper()
	cfg := testConfig()
	if opts.Trends == nil {
		opts.Trends = trends.NewService(
			[]trends.Source{trends.StaticSource{Label: "static", Topics: testTopics}},
			0,
			featureflags.NewManager(cfg.FeatureFlags),
		)
	}

	s, err := NewServerWithDeps(cfg, testutil.NewSQLiteDB(t), nil, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.shutdownFn()
		_ = s.bus.Close()
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return s, app
}

// doJSON sends body (when non-nil) as JSON and returns the status and raw response body.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// doRaw sends a literal JSON body.
func doRaw(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func createUser(t *testing.T, app *fiber.App, username string) models.UserWithPreferences {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/users", models.UserCreate{Username: username})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode[models.UserWithPreferences](t, body)
}
