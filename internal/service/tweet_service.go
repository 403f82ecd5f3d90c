package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vibetweet/internal/events"
	"vibetweet/internal/middleware"
	"vibetweet/internal/models"
	"vibetweet/internal/observability"
	"vibetweet/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	maxImportBatch = 1000
	maxTweetIDLen  = 50
)

// ImportPublisher announces imports to the rest of the system.
type ImportPublisher interface {
	PublishTweetsImported(ctx context.Context, evt events.TweetsImported) error
}

// TweetFetcher pulls recent public tweets for an account handle.
type TweetFetcher interface {
	FetchTweets(ctx context.Context, handle string, limit int) ([]models.TweetCreate, error)
}

type TweetService struct {
	users     *UserService
	tweets    repository.TweetRepository
	publisher ImportPublisher
	fetcher   TweetFetcher
}

// NewTweetService builds the ingestor. publisher and fetcher may be nil.
func NewTweetService(users *UserService, tweets repository.TweetRepository, publisher ImportPublisher, fetcher TweetFetcher) *TweetService {
	return &TweetService{users: users, tweets: tweets, publisher: publisher, fetcher: fetcher}
}

// ImportTweets stores new tweets for the user. Blank tweets and tweet ids seen
// before, in this batch or already stored for any user, are skipped.
func (s *TweetService) ImportTweets(ctx context.Context, userID uuid.UUID, candidates []models.TweetCreate) (models.TweetImportResult, error) {
	result := models.TweetImportResult{Total: len(candidates)}
	if len(candidates) > maxImportBatch {
		return result, models.NewValidationError(fmt.Sprintf("at most %d tweets per import", maxImportBatch))
	}
	if err := s.users.EnsureUser(ctx, userID); err != nil {
		return result, err
	}

	rows := make([]models.TweetHistory, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for i, c := range candidates {
		row, ok, err := toRow(userID, c)
		if err != nil {
			return result, models.NewValidationError(fmt.Sprintf("tweets[%d]: %s", i, err.Error()))
		}
		if !ok {
			continue
		}
		if row.TweetID != nil {
			if seen[*row.TweetID] {
				continue
			}
			seen[*row.TweetID] = true
		}
		rows = append(rows, row)
	}

	imported, err := s.tweets.Insert(ctx, rows)
	if err != nil {
		return result, err
	}
	result.Imported = imported
	result.Skipped = result.Total - imported

	observability.TweetsImported.WithLabelValues("imported").Add(float64(result.Imported))
	observability.TweetsImported.WithLabelValues("skipped").Add(float64(result.Skipped))
	middleware.Logger.InfoContext(ctx, "tweets imported",
		slog.String("user_id", userID.String()),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)

	if imported > 0 {
		s.publish(ctx, userID, imported)
	}
	return result, nil
}

// CreateTweet stores a single tweet. A duplicate tweet_id is a conflict.
func (s *TweetService) CreateTweet(ctx context.Context, userID uuid.UUID, in models.TweetCreate) (*models.TweetHistory, error) {
	if err := s.users.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	row, ok, err := toRow(userID, in)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !ok {
		return nil, models.NewValidationError("content must not be blank")
	}

	rows := []models.TweetHistory{row}
	imported, err := s.tweets.Insert(ctx, rows)
	if err != nil {
		return nil, err
	}
	if imported == 0 {
		return nil, models.NewConflictError("tweet_id already imported")
	}

	observability.TweetsImported.WithLabelValues("imported").Inc()
	s.publish(ctx, userID, 1)
	return &rows[0], nil
}

// ListTweets returns one page of the user's tweets, newest first.
func (s *TweetService) ListTweets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TweetHistory, int64, error) {
	if err := s.users.EnsureUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.tweets.ListByUser(ctx, userID, limit, offset)
}

// ImportFromX fetches the account's recent tweets and imports them.
func (s *TweetService) ImportFromX(ctx context.Context, userID uuid.UUID, req models.XImportRequest) (models.TweetImportResult, error) {
	if s.fetcher == nil {
		return models.TweetImportResult{}, models.NewUnavailableError("X import is not configured")
	}
	handle, err := NormalizeHandle(req.Handle)
	if err != nil {
		return models.TweetImportResult{}, err
	}
	limit := req.Limit
	switch {
	case limit == 0:
		limit = 50
	case limit < 1 || limit > 100:
		return models.TweetImportResult{}, models.NewValidationError("limit must be between 1 and 100")
	}
	if err := s.users.EnsureUser(ctx, userID); err != nil {
		return models.TweetImportResult{}, err
	}

	candidates, err := s.fetcher.FetchTweets(ctx, handle, limit)
	if err != nil {
		return models.TweetImportResult{}, models.NewUpstreamError("failed to fetch tweets from X", err)
	}
	return s.ImportTweets(ctx, userID, candidates)
}

// NormalizeHandle strips a leading @ and validates the X username rules.
func NormalizeHandle(raw string) (string, error) {
	handle := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	if handle == "" || len(handle) > 15 {
		return "", models.NewValidationError("handle must be 1 to 15 characters")
	}
	for _, r := range handle {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "", models.NewValidationError("handle may contain only letters, digits and underscores")
		}
	}
	return handle, nil
}

func (s *TweetService) publish(ctx context.Context, userID uuid.UUID, imported int) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTweetsImported(ctx, events.TweetsImported{UserID: userID, Imported: imported}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish import event",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// toRow converts a candidate; ok is false for blank content.
func toRow(userID uuid.UUID, c models.TweetCreate) (models.TweetHistory, bool, error) {
	content := strings.TrimSpace(c.Content)
	if content == "" {
		return models.TweetHistory{}, false, nil
	}

	var tweetID *string
	if c.TweetID != nil {
		if id := strings.TrimSpace(*c.TweetID); id != "" {
			if len(id) > maxTweetIDLen {
				return models.TweetHistory{}, false, fmt.Errorf("tweet_id must be at most %d characters", maxTweetIDLen)
			}
			tweetID = &id
		}
	}

	var tweetedAt *time.Time
	if c.TweetedAt != nil && !c.TweetedAt.IsZero() {
		ts := c.TweetedAt.UTC()
		tweetedAt = &ts
	}

	meta := datatypes.JSONMap(c.Metadata)
	if meta == nil {
		meta = datatypes.JSONMap{}
	}

	return models.TweetHistory{
		UserID:    userID,
		Content:   content,
		TweetID:   tweetID,
		TweetedAt: tweetedAt,
		Metadata:  meta,
	}, true, nil
}
