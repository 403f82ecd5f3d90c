package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"vibetweet/internal/events"
	"vibetweet/internal/llm"
	"vibetweet/internal/models"
	"vibetweet/internal/repository"
	"vibetweet/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type publisherStub struct {
	mu     sync.Mutex
	events []events.TweetsImported
	err    error
}

func (p *publisherStub) PublishTweetsImported(_ context.Context, evt events.TweetsImported) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *publisherStub) Published() []events.TweetsImported {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.TweetsImported(nil), p.events...)
}

type fetcherStub struct {
	fetchFn func(ctx context.Context, handle string, limit int) ([]models.TweetCreate, error)
}

func (f fetcherStub) FetchTweets(ctx context.Context, handle string, limit int) ([]models.TweetCreate, error) {
	return f.fetchFn(ctx, handle, limit)
}

type trendStub struct {
	trends []string
	calls  int
}

func (s *trendStub) ForUser(_ context.Context, _ uuid.UUID, _ []string, limit int) []string {
	s.calls++
	if len(s.trends) > limit {
		return s.trends[:limit]
	}
	return s.trends
}

type fixture struct {
	users     *UserService
	prefs     *PreferencesService
	styles    *StyleService
	tweets    *TweetService
	publisher *publisherStub
	trends    *trendStub
	registry  *llm.Registry
	gen       *GenerationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	f := &fixture{
		publisher: &publisherStub{},
		trends:    &trendStub{},
		registry:  llm.NewRegistry(),
	}
	f.users = NewUserService(repository.NewUserRepository(db), models.ProviderClaude)
	f.prefs = NewPreferencesService(f.users, repository.NewPreferencesRepository(db), models.ProviderClaude)
	tweetRepo := repository.NewTweetRepository(db)
	f.styles = NewStyleService(f.users, tweetRepo, repository.NewStyleProfileRepository(db))
	f.tweets = NewTweetService(f.users, tweetRepo, f.publisher, nil)
	f.gen = NewGenerationService(f.prefs, f.styles, f.trends, f.registry, models.ProviderClaude, 5*time.Second)
	return f
}

func (f *fixture) newUser(t *testing.T, name string) *models.User {
	t.Helper()
	user, err := f.users.CreateUser(context.Background(), models.UserCreate{Username: name})
	require.NoError(t, err)
	return user
}
