// Package xsource pulls recent public tweets of an X account for import.
package xsource

import (
	"context"
	"fmt"
	"strings"

	"vibetweet/internal/models"

	twitterscraper "github.com/n0madic/twitter-scraper"
)

// timeline is the part of the scraper the client uses.
type timeline interface {
	FetchTweets(user string, maxTweetsNbr int, cursor string) ([]*twitterscraper.Tweet, string, error)
}

const maxPages = 10

// Client converts an account timeline into import candidates.
type Client struct {
	scraper timeline
}

// NewClient returns a client backed by the public timeline scraper.
func NewClient() *Client {
	return &Client{scraper: twitterscraper.New()}
}

type page struct {
	tweets []*twitterscraper.Tweet
	next   string
	err    error
}

// FetchTweets returns up to limit original tweets, newest first. Retweets are left out.
func (c *Client) FetchTweets(ctx context.Context, handle string, limit int) ([]models.TweetCreate, error) {
	out := make([]models.TweetCreate, 0, limit)
	cursor := ""
	for range maxPages {
		p, err := c.fetchPage(ctx, handle, limit, cursor)
		if err != nil {
			return nil, err
		}

		for _, t := range p.tweets {
			if len(out) >= limit {
				return out, nil
			}
			if cand, ok := toCandidate(t); ok {
				out = append(out, cand)
			}
		}
		if len(p.tweets) == 0 || p.next == "" || p.next == cursor || len(out) >= limit {
			break
		}
		cursor = p.next
	}
	return out, nil
}

// fetchPage runs one scraper call. The scraper has no context support, so the
// call is abandoned when ctx ends.
func (c *Client) fetchPage(ctx context.Context, handle string, limit int, cursor string) (page, error) {
	ch := make(chan page, 1)
	go func() {
		tweets, next, err := c.scraper.FetchTweets(handle, limit, cursor)
		ch <- page{tweets: tweets, next: next, err: err}
	}()

	select {
	case <-ctx.Done():
		return page{}, ctx.Err()
	case p := <-ch:
		if p.err != nil {
			return page{}, fmt.Errorf("fetch tweets for %s: %w", handle, p.err)
		}
		return p, nil
	}
}

func toCandidate(t *twitterscraper.Tweet) (models.TweetCreate, bool) {
	if t == nil || t.IsRetweet || strings.TrimSpace(t.Text) == "" {
		return models.TweetCreate{}, false
	}

	id := t.ID
	cand := models.TweetCreate{
		Content: t.Text,
		TweetID: &id,
		Metadata: map[string]any{
			"source":   "x",
			"likes":    t.Likes,
			"retweets": t.Retweets,
			"replies":  t.Replies,
		},
	}
	if t.PermanentURL != "" {
		cand.Metadata["url"] = t.PermanentURL
	}
	if !t.TimeParsed.IsZero() {
		cand.TweetedAt = &models.Timestamp{Time: t.TimeParsed.UTC()}
	}
	return cand, true
}
