package seed

import (
	"context"
	"fmt"
	"log/slog"

	"vibetweet/internal/middleware"
	"vibetweet/internal/service"

	"github.com/google/uuid"
)

// Options configuration for the seeder
type Options struct {
	NumUsers      int
	TweetsPerUser int
	Seed          int64
	MaxDays       int
	// Analyze computes a style profile for every seeded user.
	Analyze bool
}

// Services are the write paths the seeder goes through.
type Services struct {
	Users       *service.UserService
	Preferences *service.PreferencesService
	Tweets      *service.TweetService
	Styles      *service.StyleService
}

// Summary reports what a run created.
type Summary struct {
	UserIDs  []uuid.UUID
	Imported int
	Skipped  int
	Profiles int
}

// Run creates demo users with preferences and a tweet history.
func Run(ctx context.Context, svc Services, opts Options) (Summary, error) {
	var summary Summary
	if opts.NumUsers <= 0 {
		return summary, nil
	}
	if opts.TweetsPerUser <= 0 {
		opts.TweetsPerUser = 25
	}

	f := NewFactory(opts.Seed, opts.MaxDays)
	for i := range opts.NumUsers {
		user, err := svc.Users.CreateUser(ctx, f.BuildUser())
		if err != nil {
			return summary, fmt.Errorf("seed user %d: %w", i, err)
		}
		summary.UserIDs = append(summary.UserIDs, user.ID)

		if _, err := svc.Preferences.UpdatePreferences(ctx, user.ID, f.BuildPreferences()); err != nil {
			return summary, fmt.Errorf("seed preferences for %s: %w", user.Username, err)
		}

		res, err := svc.Tweets.ImportTweets(ctx, user.ID, f.BuildTweets(opts.TweetsPerUser))
		if err != nil {
			return summary, fmt.Errorf("seed tweets for %s: %w", user.Username, err)
		}
		summary.Imported += res.Imported
		summary.Skipped += res.Skipped

		if opts.Analyze && svc.Styles != nil {
			profile, err := svc.Styles.Recompute(ctx, user.ID, service.TriggerCLI)
			if err != nil {
				return summary, fmt.Errorf("analyze %s: %w", user.Username, err)
			}
			if profile != nil {
				summary.Profiles++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", len(summary.UserIDs)),
		slog.Int("imported", summary.Imported),
		slog.Int("profiles", summary.Profiles),
	)
	return summary, nil
}
