package trends

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"vibetweet/internal/cache"
	"vibetweet/internal/featureflags"
	"vibetweet/internal/middleware"
	"vibetweet/internal/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// ErrNoTrends is returned when every source failed.
var ErrNoTrends = errors.New("no trend source succeeded")

// Service merges trends from all sources and caches the result.
type Service struct {
	sources []Source
	ttl     time.Duration
	flags   *featureflags.Manager
}

// NewService builds a trend service. A zero ttl disables caching.
func NewService(sources []Source, ttl time.Duration, flags *featureflags.Manager) *Service {
	return &Service{sources: sources, ttl: ttl, flags: flags}
}

// Sources lists the configured source names.
func (s *Service) Sources() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return names
}

// Current returns the merged trend list, from cache when possible.
func (s *Service) Current(ctx context.Context) ([]string, error) {
	if len(s.sources) == 0 {
		return []string{}, nil
	}

	var merged []string
	fetch := func() error {
		out, err := s.fetchAll(ctx)
		if err != nil {
			return err
		}
		merged = out
		return nil
	}

	if s.ttl <= 0 {
		if err := fetch(); err != nil {
			return nil, err
		}
		return merged, nil
	}
	if err := cache.Aside(ctx, cache.TrendsKey, &merged, s.ttl, fetch); err != nil {
		return nil, err
	}
	if merged == nil {
		merged = []string{}
	}
	return merged, nil
}

// ForUser returns at most limit trends for a user, interest matches first.
// A disabled flag or a failed fetch yields an empty list.
func (s *Service) ForUser(ctx context.Context, userID uuid.UUID, interests []string, limit int) []string {
	if !s.flags.Enabled(featureflags.TrendFetch, userID) {
		return []string{}
	}

	all, err := s.Current(ctx)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "trend fetch failed", slog.String("error", err.Error()))
		return []string{}
	}

	ranked := Rank(all, interests)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// fetchAll queries every source concurrently. Individual failures are logged;
// the call fails only when no source succeeded.
func (s *Service) fetchAll(ctx context.Context) ([]string, error) {
	span, ctx := observability.NewSpan(ctx, "trends.fetch", attribute.Int("sources", len(s.sources)))
	defer span.End()

	results := make([][]string, len(s.sources))
	failures := make([]error, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			topics, err := src.Fetch(gctx)
			if err != nil {
				observability.TrendFetches.WithLabelValues(src.Name(), "error").Inc()
				middleware.Logger.WarnContext(ctx, "trend source failed",
					slog.String("source", src.Name()),
					slog.String("error", err.Error()),
				)
				failures[i] = err
				return nil
			}
			observability.TrendFetches.WithLabelValues(src.Name(), "ok").Inc()
			results[i] = topics
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(failures...); err != nil && countNil(failures) == 0 {
		span.SetError(err)
		return nil, errors.Join(ErrNoTrends, err)
	}
	merged := Merge(results...)
	span.AddAttributes(attribute.Int("trends", len(merged)))
	return merged, nil
}

func countNil(errs []error) int {
	n := 0
	for _, err := range errs {
		if err == nil {
			n++
		}
	}
	return n
}

// Merge concatenates lists in order, trimming and dropping case-insensitive duplicates.
func Merge(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, t := range list {
			t = strings.TrimSpace(t)
			key := strings.ToLower(t)
			if t == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}

// Rank moves trends mentioning any interest to the front, keeping relative order otherwise.
func Rank(trends, interests []string) []string {
	out := append([]string(nil), trends...)
	if len(interests) == 0 {
		return out
	}

	needles := make([]string, 0, len(interests))
	for _, in := range interests {
		if in = strings.ToLower(strings.TrimSpace(in)); in != "" {
			needles = append(needles, in)
		}
	}
	matches := func(t string) bool {
		lt := strings.ToLower(t)
		for _, n := range needles {
			if strings.Contains(lt, n) {
				return true
			}
		}
		return false
	}

	sort.SliceStable(out, func(i, j int) bool {
		return matches(out[i]) && !matches(out[j])
	})
	return out
}

// Override normalises caller-supplied trends: trimmed, deduplicated case-insensitively, capped.
func Override(trends []string, limit int) []string {
	out := Merge(trends)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
