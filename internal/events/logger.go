package events

import (
	"log/slog"

	"vibetweet/internal/middleware"

	"github.com/ThreeDotsLabs/watermill"
)

// slogAdapter routes watermill logs through the application logger.
type slogAdapter struct {
	fields watermill.LogFields
}

func newSlogAdapter() watermill.LoggerAdapter {
	return slogAdapter{}
}

func (a slogAdapter) attrs(fields watermill.LogFields) []any {
	all := a.fields.Add(fields)
	out := make([]any, 0, len(all)+1)
	out = append(out, slog.String("component", "events"))
	for k, v := range all {
		out = append(out, slog.Any(k, v))
	}
	return out
}

func (a slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	args := a.attrs(fields)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	middleware.Logger.Error(msg, args...)
}

func (a slogAdapter) Info(msg string, fields watermill.LogFields) {
	middleware.Logger.Info(msg, a.attrs(fields)...)
}

func (a slogAdapter) Debug(msg string, fields watermill.LogFields) {
	middleware.Logger.Debug(msg, a.attrs(fields)...)
}

func (a slogAdapter) Trace(msg string, fields watermill.LogFields) {
	middleware.Logger.Debug(msg, a.attrs(fields)...)
}

func (a slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return slogAdapter{fields: a.fields.Add(fields)}
}
