package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vibetweet/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportTweetsCountsAndDedup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t, "importer")

	ts := models.Timestamp{Time: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	result, err := f.tweets.ImportTweets(ctx, user.ID, []models.TweetCreate{
		{Content: "first", TweetID: ptr("1"), TweetedAt: &ts},
		{Content: "dup in batch", TweetID: ptr("1")},
		{Content: "   "},
		{Content: "no id"},
		{Content: "no id"},
		{Content: "blank id", TweetID: ptr(" ")},
		{Content: "with meta", TweetID: ptr("2"), Metadata: map[string]any{"likes": 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.TweetImportResult{Imported: 5, Skipped: 2, Total: 7}, result)
	assert.Equal(t, result.Total, result.Imported+result.Skipped)

	again, err := f.tweets.ImportTweets(ctx, user.ID, []models.TweetCreate{
		{Content: "first again", TweetID: ptr("1")},
		{Content: "third", TweetID: ptr("3")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.TweetImportResult{Imported: 1, Skipped: 1, Total: 2}, again)

	tweets, total, err := f.tweets.ListTweets(ctx, user.ID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, tweets, 6)

	published := f.publisher.Published()
	require.Len(t, published, 2)
	assert.Equal(t, user.ID, published[0].UserID)
	assert.Equal(t, 5, published[0].Imported)
	assert.Equal(t, 1, published[1].Imported)
}

func TestImportTweetsAcrossUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newUser(t, "a")
	b := f.newUser(t, "b")

	_, err := f.tweets.ImportTweets(ctx, a.ID, []models.TweetCreate{{Content: "x", TweetID: ptr("42")}})
	require.NoError(t, err)

	result, err := f.tweets.ImportTweets(ctx, b.ID, []models.TweetCreate{{Content: "x", TweetID: ptr("42")}})
	require.NoError(t, err)
	assert.Equal(t, models.TweetImportResult{Imported: 0, Skipped: 1, Total: 1}, result)
	assert.Len(t, f.publisher.Published(), 1)
}

func TestImportTweetsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tweets.ImportTweets(ctx, uuid.New(), []models.TweetCreate{{Content: "x"}})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	user := f.newUser(t, "bad-id")
	longID := "123456789012345678901234567890123456789012345678901"
	_, err = f.tweets.ImportTweets(ctx, user.ID, []models.TweetCreate{{Content: "x", TweetID: &longID}})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	result, err := f.tweets.ImportTweets(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TweetImportResult{}, result)
	assert.Empty(t, f.publisher.Published())
}

func TestImportTweetsPublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("bus closed")
	user := f.newUser(t, "pub")

	result, err := f.tweets.ImportTweets(context.Background(), user.ID, []models.TweetCreate{{Content: "still stored"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestCreateTweet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t, "single")

	tweet, err := f.tweets.CreateTweet(ctx, user.ID, models.TweetCreate{Content: " hi ", TweetID: ptr("77")})
	require.NoError(t, err)
	assert.Equal(t, "hi", tweet.Content)
	assert.NotEqual(t, uuid.Nil, tweet.ID)

	_, err = f.tweets.CreateTweet(ctx, user.ID, models.TweetCreate{Content: "again", TweetID: ptr("77")})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	_, err = f.tweets.CreateTweet(ctx, user.ID, models.TweetCreate{Content: ""})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestImportFromX(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t, "xfan")

	var gotHandle string
	var gotLimit int
	f.tweets.fetcher = fetcherStub{fetchFn: func(_ context.Context, handle string, limit int) ([]models.TweetCreate, error) {
		gotHandle, gotLimit = handle, limit
		return []models.TweetCreate{
			{Content: "from x", TweetID: ptr("9001")},
			{Content: "also from x", TweetID: ptr("9002")},
		}, nil
	}}

	result, err := f.tweets.ImportFromX(ctx, user.ID, models.XImportRequest{Handle: "@golang"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, "golang", gotHandle)
	assert.Equal(t, 50, gotLimit)

	_, err = f.tweets.ImportFromX(ctx, user.ID, models.XImportRequest{Handle: "bad handle!"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
	_, err = f.tweets.ImportFromX(ctx, user.ID, models.XImportRequest{Handle: "golang", Limit: 500})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	f.tweets.fetcher = fetcherStub{fetchFn: func(context.Context, string, int) ([]models.TweetCreate, error) {
		return nil, errors.New("rate limited")
	}}
	_, err = f.tweets.ImportFromX(ctx, user.ID, models.XImportRequest{Handle: "golang"})
	assert.True(t, models.IsCode(err, models.CodeUpstream))

	f.tweets.fetcher = nil
	_, err = f.tweets.ImportFromX(ctx, user.ID, models.XImportRequest{Handle: "golang"})
	assert.True(t, models.IsCode(err, models.CodeUnavailable))
}

func TestNormalizeHandle(t *testing.T) {
	t.Parallel()

	h, err := NormalizeHandle(" @Go_Lang ")
	require.NoError(t, err)
	assert.Equal(t, "Go_Lang", h)

	for _, bad := range []string{"", "@", "way_too_long_handle_name", "dash-y", "émile"} {
		_, err := NormalizeHandle(bad)
		assert.Error(t, err, bad)
	}
}
