package xsource

import (
	"context"
	"errors"
	"testing"
	"time"

	twitterscraper "github.com/n0madic/twitter-scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timelineStub struct {
	pages map[string][]*twitterscraper.Tweet
	next  map[string]string
	err   error
	block   chan struct{}
	cursors []string
}

func (s *timelineStub) FetchTweets(_ string, _ int, cursor string) ([]*twitterscraper.Tweet, string, error) {
	if s.block != nil {
		<-s.block
	}
	s.cursors = append(s.cursors, cursor)
	if s.err != nil {
		return nil, "", s.err
	}
	return s.pages[cursor], s.next[cursor], nil
}

func tweet(id, text string) *twitterscraper.Tweet {
	return &twitterscraper.Tweet{
		ID:         id,
		Text:       text,
		Likes:      2,
		TimeParsed: time.Date(2021, 12, 4, 19, 36, 27, 0, time.UTC),
	}
}

func TestFetchTweetsPaginatesAndSkipsRetweets(t *testing.T) {
	rt := tweet("3", "RT someone")
	rt.IsRetweet = true

	stub := &timelineStub{
		pages: map[string][]*twitterscraper.Tweet{
			"":   {tweet("1", "hello"), rt, tweet("4", "  ")},
			"c2": {tweet("5", "second page"), tweet("6", "more")},
		},
		next: map[string]string{"": "c2", "c2": "c3"},
	}
	c := &Client{scraper: stub}

	got, err := c.FetchTweets(context.Background(), "golang", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, "1", *got[0].TweetID)
	assert.Equal(t, "x", got[0].Metadata["source"])
	assert.Equal(t, 2, got[0].Metadata["likes"])
	require.NotNil(t, got[0].TweetedAt)
	assert.Equal(t, 2021, got[0].TweetedAt.Year())
	assert.Equal(t, "second page", got[1].Content)
	assert.Equal(t, []string{"", "c2"}, stub.cursors)
}

func TestFetchTweetsStopsWhenTimelineEnds(t *testing.T) {
	stub := &timelineStub{
		pages: map[string][]*twitterscraper.Tweet{"": {tweet("1", "only")}},
		next:  map[string]string{},
	}
	got, err := (&Client{scraper: stub}).FetchTweets(context.Background(), "golang", 50)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, stub.cursors, 1)
}

func TestFetchTweetsErrors(t *testing.T) {
	_, err := (&Client{scraper: &timelineStub{err: errors.New("429")}}).FetchTweets(context.Background(), "golang", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "golang")

	block := make(chan struct{})
	defer close(block)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Client{scraper: &timelineStub{block: block}}).FetchTweets(ctx, "golang", 5)
	require.ErrorIs(t, err, context.Canceled)
}
