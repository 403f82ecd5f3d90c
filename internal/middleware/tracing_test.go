package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"vibetweet/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		observability.Tracer = prev
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingMiddleware_UserRouteSpan(t *testing.T) {
	rec := recordSpans(t)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(TracingMiddleware())

	var logUser string
	app.Post("/api/users/:id/tweets/import", func(c *fiber.Ctx) error {
		logUser, _ = c.UserContext().Value(UserIDKey).(string)
		return c.SendStatus(fiber.StatusOK)
	})

	userID := uuid.New()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/users/"+userID.String()+"/tweets/import", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	assert.Equal(t, userID.String(), logUser)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "POST /api/users/:id/tweets/import", span.Name())

	attrs := spanAttrs(span)
	assert.Equal(t, userID.String(), attrs[AttrUserID].AsString())
	assert.Equal(t, "tweets.import", attrs[AttrOperation].AsString())
	assert.Equal(t, "/api/users/:id/tweets/import", attrs["http.route"].AsString())
	assert.EqualValues(t, http.StatusOK, attrs["http.status_code"].AsInt64())
	assert.NotEmpty(t, attrs["request.id"].AsString())
}

func TestTracingMiddleware_ErrorStatus(t *testing.T) {
	rec := recordSpans(t)

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/api/trends", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "feeds down")
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/trends", nil))
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	attrs := spanAttrs(spans[0])
	assert.EqualValues(t, http.StatusBadGateway, attrs["http.status_code"].AsInt64())
	assert.Equal(t, "trends.list", attrs[AttrOperation].AsString())
	_, hasUser := attrs[AttrUserID]
	assert.False(t, hasUser)
}

func TestTracingMiddleware_SkipsHealthChecks(t *testing.T) {
	rec := recordSpans(t)

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("X-Trace-ID"))
	assert.Empty(t, rec.Ended())
}

func TestUserIDFromPath(t *testing.T) {
	id := uuid.New()

	got, ok := UserIDFromPath("/api/users/" + id.String() + "/style-profile")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	got, ok = UserIDFromPath("/api/users/" + id.String())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	for _, p := range []string{"/api/users/", "/api/users/not-a-uuid/tweets", "/api/trends", "/health"} {
		_, ok := UserIDFromPath(p)
		assert.False(t, ok, p)
	}
}
