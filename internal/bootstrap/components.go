package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"vibetweet/internal/config"
	"vibetweet/internal/featureflags"
	"vibetweet/internal/llm"
	"vibetweet/internal/middleware"
	"vibetweet/internal/models"
	"vibetweet/internal/repository"
	"vibetweet/internal/seed"
	"vibetweet/internal/service"
	"vibetweet/internal/trends"

	"gorm.io/gorm"
)

// NewProviderRegistry registers every LLM provider that has credentials.
// Providers without an API key are skipped.
func NewProviderRegistry(cfg *config.Config) (*llm.Registry, error) {
	registry := llm.NewRegistry()

	claude, err := llm.NewClaudeProvider(llm.ClaudeConfig{
		APIKey:     cfg.AnthropicAPIKey,
		Model:      cfg.AnthropicModel,
		BaseURL:    cfg.AnthropicBaseURL,
		MaxRetries: cfg.LLMMaxRetries,
		Timeout:    cfg.LLMTimeout(),
	})
	switch {
	case err == nil:
		registry.Register(claude)
	case errors.Is(err, llm.ErrNotConfigured):
		middleware.Logger.Info("LLM provider disabled", slog.String("provider", string(models.ProviderClaude)))
	default:
		return nil, fmt.Errorf("claude provider: %w", err)
	}

	openaiProvider, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.OpenAIModel,
		BaseURL:    cfg.OpenAIBaseURL,
		MaxRetries: cfg.LLMMaxRetries,
		Timeout:    cfg.LLMTimeout(),
	})
	switch {
	case err == nil:
		registry.Register(openaiProvider)
	case errors.Is(err, llm.ErrNotConfigured):
		middleware.Logger.Info("LLM provider disabled", slog.String("provider", string(models.ProviderOpenAI)))
	default:
		return nil, fmt.Errorf("openai provider: %w", err)
	}

	return registry, nil
}

// NewTrendService builds the trend aggregator over the configured RSS feeds.
func NewTrendService(cfg *config.Config, flags *featureflags.Manager) *trends.Service {
	urls := cfg.FeedURLs()
	sources := make([]trends.Source, 0, len(urls))
	for _, u := range urls {
		sources = append(sources, trends.NewRSSSource(u))
	}
	return trends.NewService(sources, cfg.TrendCacheTTL(), flags)
}

// Deps are the optional collaborators of the service graph.
// Nil fields disable the matching feature.
type Deps struct {
	Registry  *llm.Registry
	Trends    service.TrendProvider
	Publisher service.ImportPublisher
	Fetcher   service.TweetFetcher
}

// Services is the assembled service graph.
type Services struct {
	Users       *service.UserService
	Preferences *service.PreferencesService
	Tweets      *service.TweetService
	Styles      *service.StyleService
	Generation  *service.GenerationService
}

// NewServices wires repositories and services over db.
func NewServices(cfg *config.Config, db *gorm.DB, deps Deps) *Services {
	defaultProvider := models.LLMProvider(cfg.DefaultLLMProvider)
	registry := deps.Registry
	if registry == nil {
		registry = llm.NewRegistry()
	}

	userRepo := repository.NewUserRepository(db)
	tweetRepo := repository.NewTweetRepository(db)

	users := service.NewUserService(userRepo, defaultProvider)
	prefs := service.NewPreferencesService(users, repository.NewPreferencesRepository(db), defaultProvider)
	styles := service.NewStyleService(users, tweetRepo, repository.NewStyleProfileRepository(db))

	return &Services{
		Users:       users,
		Preferences: prefs,
		Tweets:      service.NewTweetService(users, tweetRepo, deps.Publisher, deps.Fetcher),
		Styles:      styles,
		Generation:  service.NewGenerationService(prefs, styles, deps.Trends, registry, defaultProvider, cfg.LLMTimeout()),
	}
}

// SeedTargets exposes the write paths the seeder needs.
func (s *Services) SeedTargets() seed.Services {
	return seed.Services{
		Users:       s.Users,
		Preferences: s.Preferences,
		Tweets:      s.Tweets,
		Styles:      s.Styles,
	}
}
