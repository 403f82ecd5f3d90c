package middleware

import (
	"errors"
	"net/http"
	"strings"

	"vibetweet/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes specific to Vibe Tweet requests.
const (
	AttrUserID    = attribute.Key("vibetweet.user_id")
	AttrOperation = attribute.Key("vibetweet.operation")
)

const usersPrefix = "/api/users/"

// operations names the user-facing actions by method and route template.
var operations = map[string]string{
	"POST /api/users/:id/tweets/import":         "tweets.import",
	"POST /api/users/:id/tweets/import/x":       "tweets.import_x",
	"POST /api/users/:id/tweets/generate":       "tweets.generate",
	"POST /api/users/:id/tweets":                "tweets.create",
	"GET /api/users/:id/tweets":                 "tweets.list",
	"GET /api/users/:id/style-profile":          "style.get",
	"GET /api/users/:id/style-profile/summary":  "style.summary",
	"POST /api/users/:id/style-profile/refresh": "style.refresh",
	"GET /api/users/:id/preferences":            "preferences.get",
	"PATCH /api/users/:id/preferences":          "preferences.update",
	"POST /api/users/":                          "users.create",
	"POST /api/users":                           "users.create",
	"GET /api/users/":                           "users.list",
	"GET /api/users":                            "users.list",
	"GET /api/users/:id":                        "users.get",
	"PATCH /api/users/:id":                      "users.update",
	"DELETE /api/users/:id":                     "users.delete",
	"GET /api/trends":                           "trends.list",
}

// TracingMiddleware starts a server span per request. The span is renamed
// after the matched route once the handler chain returns, and requests under
// /api/users/{id} carry the user id on both the span and the log context.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if untraced(c.Path()) {
			return c.Next()
		}

		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("client.address", c.IP()),
				attribute.String("user_agent.original", c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		if uid, ok := UserIDFromPath(c.Path()); ok {
			span.SetAttributes(AttrUserID.String(uid.String()))
			ctx = WithUserID(ctx, uid.String())
		}

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(attribute.String("http.route", route))
		if op, ok := operations[c.Method()+" "+route]; ok {
			span.SetAttributes(AttrOperation.String(op))
		}

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		span.SetAttributes(attribute.Int("http.status_code", status))

		return err
	}
}

// UserIDFromPath extracts the user id from /api/users/{id}[/...] paths.
func UserIDFromPath(path string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(path, usersPrefix)
	if !ok {
		return uuid.Nil, false
	}
	seg, _, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(seg)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func untraced(path string) bool {
	return strings.HasPrefix(path, "/health") || path == "/metrics"
}
