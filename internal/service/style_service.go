package service

import (
	"context"
	"log/slog"

	"vibetweet/internal/analyzer"
	"vibetweet/internal/middleware"
	"vibetweet/internal/models"
	"vibetweet/internal/observability"
	"vibetweet/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
)

// Analysis triggers, used as metric labels.
const (
	TriggerEvent  = "event"
	TriggerManual = "manual"
	TriggerCLI    = "cli"
)

type StyleService struct {
	users    *UserService
	tweets   repository.TweetRepository
	profiles repository.StyleProfileRepository
}

func NewStyleService(users *UserService, tweets repository.TweetRepository, profiles repository.StyleProfileRepository) *StyleService {
	return &StyleService{users: users, tweets: tweets, profiles: profiles}
}

// Recompute analyzes every stored tweet of the user and replaces the profile.
// A user without tweets ends up with no profile, and nil is returned.
func (s *StyleService) Recompute(ctx context.Context, userID uuid.UUID, trigger string) (*models.StyleProfile, error) {
	span, ctx := observability.NewSpan(ctx, "style.recompute",
		attribute.String("user_id", userID.String()),
		attribute.String("trigger", trigger),
	)
	defer span.End()

	if err := s.users.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	contents, err := s.tweets.Contents(ctx, userID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("tweets", len(contents)))

	if len(contents) == 0 {
		if err := s.profiles.DeleteByUserID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	profile := &models.StyleProfile{
		UserID:     userID,
		Profile:    datatypes.NewJSONType(analyzer.Analyze(contents)),
		TweetCount: len(contents),
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		span.SetError(err)
		return nil, err
	}

	observability.StyleAnalyses.WithLabelValues(trigger).Inc()
	middleware.Logger.InfoContext(ctx, "style profile updated",
		slog.String("user_id", userID.String()),
		slog.String("trigger", trigger),
		slog.Int("tweet_count", len(contents)),
	)
	return profile, nil
}

// GetProfile returns the stored profile or NOT_FOUND.
func (s *StyleService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.StyleProfile, error) {
	if err := s.users.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.profiles.GetByUserID(ctx, userID)
}

// OptionalProfile returns nil, nil when the user has not been analyzed yet.
func (s *StyleService) OptionalProfile(ctx context.Context, userID uuid.UUID) (*models.StyleProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, nil
	}
	return profile, err
}

// GetSummary digests the profile; users without one get has_profile=false.
func (s *StyleService) GetSummary(ctx context.Context, userID uuid.UUID) (models.StyleProfileSummary, error) {
	if err := s.users.EnsureUser(ctx, userID); err != nil {
		return models.StyleProfileSummary{}, err
	}
	profile, err := s.OptionalProfile(ctx, userID)
	if err != nil {
		return models.StyleProfileSummary{}, err
	}
	if profile == nil {
		return models.EmptySummary(), nil
	}
	return profile.Summarize(), nil
}
