// Package seed provides helpers to create demo data: users with a tweet
// history and preferences. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"vibetweet/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds domain payloads from a seeded faker so runs are reproducible.
type Factory struct {
	faker   *gofakeit.Faker
	maxDays int
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(seed int64, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{faker: gofakeit.New(seed), maxDays: maxDays}
}

// BuildUser returns a user payload with a unique-looking username and email.
func (f *Factory) BuildUser() models.UserCreate {
	username := fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999))
	if len(username) > 50 {
		username = username[:50]
	}
	email := strings.ToLower(f.faker.Email())
	return models.UserCreate{Username: username, Email: &email}
}

// BuildPreferences returns random interests and a random tone.
func (f *Factory) BuildPreferences() models.PreferencesUpdate {
	interests := make([]string, 0, 3)
	for range f.faker.Number(1, 3) {
		interests = append(interests, f.faker.Noun())
	}
	tone := string(models.Tones[f.faker.Number(0, len(models.Tones)-1)])
	return models.PreferencesUpdate{Interests: &interests, Tone: &tone}
}

// BuildTweet returns one tweet in one of a handful of shapes so the analyzer
// sees a mix of questions, hashtags, emoji and plain statements.
func (f *Factory) BuildTweet() models.TweetCreate {
	var content string
	switch f.faker.Number(0, 4) {
	case 0:
		content = f.faker.Question()
	case 1:
		content = fmt.Sprintf("%s #%s", f.faker.Sentence(8), strings.ToLower(f.faker.Noun()))
	case 2:
		content = fmt.Sprintf("%s %s", f.faker.HackerPhrase(), f.faker.Emoji())
	case 3:
		content = strings.TrimSuffix(f.faker.Sentence(6), ".") + "!"
	default:
		content = f.faker.Sentence(f.faker.Number(5, 20))
	}
	if len([]rune(content)) > models.MaxTweetLength {
		content = string([]rune(content)[:models.MaxTweetLength])
	}

	id := f.faker.DigitN(19)
	daysBack := f.faker.Number(0, f.maxDays)
	at := models.Timestamp{Time: time.Now().UTC().Add(-time.Duration(daysBack) * 24 * time.Hour).Truncate(time.Second)}

	return models.TweetCreate{
		Content:   content,
		TweetID:   &id,
		TweetedAt: &at,
		Metadata:  map[string]any{"source": "seed", "likes": f.faker.Number(0, 500)},
	}
}

// BuildTweets returns n tweets.
func (f *Factory) BuildTweets(n int) []models.TweetCreate {
	out := make([]models.TweetCreate, 0, n)
	for range n {
		out = append(out, f.BuildTweet())
	}
	return out
}
