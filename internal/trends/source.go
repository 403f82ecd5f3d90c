// Package trends collects short topic strings the generator can anchor tweets to.
package trends

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Source yields trend strings from one upstream.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]string, error)
}

const maxPerFeed = 20

// RSSSource turns the item titles of an RSS or Atom feed into trends.
type RSSSource struct {
	url    string
	name   string
	parser *gofeed.Parser
}

// NewRSSSource builds a feed source named after the feed host.
func NewRSSSource(feedURL string) *RSSSource {
	return &RSSSource{
		url:    feedURL,
		name:   sourceName(feedURL),
		parser: gofeed.NewParser(),
	}
}

func (s *RSSSource) Name() string { return s.name }

// Fetch parses the feed and returns up to maxPerFeed non-empty titles.
func (s *RSSSource) Fetch(ctx context.Context) ([]string, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.url, err)
	}

	out := make([]string, 0, min(len(feed.Items), maxPerFeed))
	for _, item := range feed.Items {
		if len(out) >= maxPerFeed {
			break
		}
		title := strings.Join(strings.Fields(item.Title), " ")
		if title == "" {
			continue
		}
		out = append(out, title)
	}
	return out, nil
}

func sourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return "rss"
	}
	return "rss:" + strings.TrimPrefix(u.Host, "www.")
}

// StaticSource returns a fixed list. Used for seeding and tests.
type StaticSource struct {
	Label  string
	Topics []string
}

func (s StaticSource) Name() string { return s.Label }

func (s StaticSource) Fetch(context.Context) ([]string, error) {
	return append([]string(nil), s.Topics...), nil
}
