package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"vibetweet/internal/analyzer"
	"vibetweet/internal/llm"
	"vibetweet/internal/middleware"
	"vibetweet/internal/models"
	"vibetweet/internal/observability"
	"vibetweet/internal/trends"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	maxOverrideTrends  = 10
	maxConsultedTrends = 5
	missingConfidence  = 0.5
)

// TrendProvider supplies trends for a user.
type TrendProvider interface {
	ForUser(ctx context.Context, userID uuid.UUID, interests []string, limit int) []string
}

type GenerationService struct {
	prefs           *PreferencesService
	styles          *StyleService
	trends          TrendProvider
	registry        *llm.Registry
	defaultProvider models.LLMProvider
	timeout         time.Duration
}

// NewGenerationService builds the generator. trends may be nil; timeout bounds each provider call.
func NewGenerationService(
	prefs *PreferencesService,
	styles *StyleService,
	trendProvider TrendProvider,
	registry *llm.Registry,
	defaultProvider models.LLMProvider,
	timeout time.Duration,
) *GenerationService {
	return &GenerationService{
		prefs:           prefs,
		styles:          styles,
		trends:          trendProvider,
		registry:        registry,
		defaultProvider: defaultProvider,
		timeout:         timeout,
	}
}

// generationInput is everything one provider call needs.
type generationInput struct {
	prompt  llm.PromptInput
	trends  []string
	profile *models.StyleProfileData
	tone    models.Tone
}

// Generate produces up to count ranked suggestions in the user's voice.
func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, req models.TweetGenerationRequest) (*models.TweetGenerationResponse, error) {
	count, err := req.ResolvedCount()
	if err != nil {
		return nil, err
	}

	span, ctx := observability.NewSpan(ctx, "tweets.generate",
		attribute.String("user_id", userID.String()),
		attribute.Int("count", count),
	)
	defer span.End()

	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	stored, err := s.styles.OptionalProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	var profile *models.StyleProfileData
	if stored != nil {
		data := stored.Profile.Data()
		profile = &data
	}

	interests := []string(prefs.Interests)
	consulted := s.resolveTrends(ctx, userID, interests, req.Trends)

	candidates := s.registry.Candidates(prefs.LLMProvider, s.defaultProvider)
	if len(candidates) == 0 {
		return nil, models.NewUnavailableError("no LLM provider is configured")
	}

	in := generationInput{
		prompt: llm.PromptInput{
			Count:     count,
			Tone:      prefs.Tone,
			Interests: interests,
			Trends:    consulted,
			Profile:   profile,
		},
		trends:  consulted,
		profile: profile,
		tone:    prefs.Tone,
	}

	suggestions, used, err := s.firstSuccessful(ctx, candidates, in)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	suggestions = dedupeSuggestions(suggestions)

	if len(suggestions) < count {
		in.prompt.Count = count - len(suggestions)
		in.prompt.Avoid = contentsOf(suggestions)
		more, err := s.callProvider(ctx, used, in)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "follow-up generation failed",
				slog.String("provider", string(used.Name())),
				slog.String("error", err.Error()),
			)
		}
		suggestions = dedupeSuggestions(append(suggestions, more...))
	}

	rankSuggestions(suggestions)
	if len(suggestions) > count {
		suggestions = suggestions[:count]
	}

	observability.SuggestionsGenerated.WithLabelValues(string(used.Name())).Add(float64(len(suggestions)))
	span.AddAttributes(
		attribute.String("provider", string(used.Name())),
		attribute.Int("suggestions", len(suggestions)),
	)

	return &models.TweetGenerationResponse{
		Suggestions:      suggestions,
		StyleProfileUsed: profile != nil,
		TrendsUsed:       consulted,
	}, nil
}

func (s *GenerationService) resolveTrends(ctx context.Context, userID uuid.UUID, interests, override []string) []string {
	if override != nil {
		return trends.Override(override, maxOverrideTrends)
	}
	if s.trends == nil {
		return []string{}
	}
	out := s.trends.ForUser(ctx, userID, interests, maxConsultedTrends)
	if out == nil {
		out = []string{}
	}
	return out
}

// firstSuccessful tries providers in order until one yields usable suggestions.
func (s *GenerationService) firstSuccessful(ctx context.Context, providers []llm.Provider, in generationInput) ([]models.GeneratedTweet, llm.Provider, error) {
	var errs []error
	for _, p := range providers {
		suggestions, err := s.callProvider(ctx, p, in)
		if err == nil && len(suggestions) == 0 {
			err = errors.New("no usable suggestions")
		}
		if err != nil {
			middleware.Logger.WarnContext(ctx, "provider failed, trying next",
				slog.String("provider", string(p.Name())),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		return suggestions, p, nil
	}
	return nil, nil, models.NewUpstreamError("all LLM providers failed", errors.Join(errs...))
}

func (s *GenerationService) callProvider(ctx context.Context, p llm.Provider, in generationInput) ([]models.GeneratedTweet, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := p.Generate(ctx, llm.BuildRequest(in.prompt))
	if err != nil {
		return nil, err
	}
	raw, err := llm.ParseSuggestions(text)
	if err != nil {
		return nil, err
	}
	return scoreSuggestions(raw, in), nil
}

// scoreSuggestions drops unusable entries and computes the final confidence.
func scoreSuggestions(raw []llm.RawSuggestion, in generationInput) []models.GeneratedTweet {
	canonical := make(map[string]string, len(in.trends))
	for _, t := range in.trends {
		canonical[strings.ToLower(t)] = t
	}

	out := make([]models.GeneratedTweet, 0, len(raw))
	for _, r := range raw {
		content := strings.TrimSpace(r.Content)
		if content == "" || utf8.RuneCountInString(content) > models.MaxTweetLength {
			continue
		}

		confidence := missingConfidence
		if r.Confidence != nil {
			confidence = models.Clamp01(*r.Confidence)
		}
		if in.profile != nil {
			confidence = (confidence + analyzer.StyleMatch(content, *in.profile)) / 2
		}

		var trendUsed *string
		if r.TrendUsed != nil {
			if t, ok := canonical[strings.ToLower(strings.TrimSpace(*r.TrendUsed))]; ok {
				trendUsed = &t
			}
		}

		out = append(out, models.GeneratedTweet{
			Content:     content,
			Confidence:  math.Round(models.Clamp01(confidence)*1000) / 1000,
			TrendUsed:   trendUsed,
			ToneApplied: in.tone,
		})
	}
	return out
}

func dedupeSuggestions(in []models.GeneratedTweet) []models.GeneratedTweet {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		key := strings.ToLower(s.Content)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func rankSuggestions(s []models.GeneratedTweet) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Confidence > s[j].Confidence
	})
}

func contentsOf(s []models.GeneratedTweet) []string {
	out := make([]string, len(s))
	for i, g := range s {
		out[i] = g.Content
	}
	return out
}
