package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TweetHistory is a tweet a user has previously published.
type TweetHistory struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Content   string            `gorm:"type:text;not null" json:"content"`
	TweetID   *string           `gorm:"size:50;uniqueIndex" json:"tweet_id"`
	TweetedAt *time.Time        `json:"tweeted_at"`
	Metadata  datatypes.JSONMap `gorm:"not null" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (TweetHistory) TableName() string {
	return "tweet_history"
}

// Timestamp decodes the date layouts found in tweet exports: RFC3339, the
// classic "Wed Oct 10 20:19:24 +0000 2018" form and epoch seconds.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts a date string, epoch seconds, or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && len(raw) <= 11 {
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}

	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return fmt.Errorf("unrecognised timestamp %q: %w", raw, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// MarshalJSON writes RFC3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// TweetCreate is one tweet to import.
type TweetCreate struct {
	Content   string         `json:"content"`
	TweetID   *string        `json:"tweet_id,omitempty"`
	TweetedAt *Timestamp     `json:"tweeted_at,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TweetBulkImport is a batch of tweets to import for one user.
type TweetBulkImport struct {
	Tweets []TweetCreate `json:"tweets"`
}

// TweetImportResult counts the outcome of an import; Imported+Skipped == Total.
type TweetImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// TweetResponse is the public representation of a stored tweet.
type TweetResponse struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Content   string         `json:"content"`
	TweetID   *string        `json:"tweet_id"`
	TweetedAt *time.Time     `json:"tweeted_at"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToResponse converts a stored tweet to its public shape.
func (t *TweetHistory) ToResponse() TweetResponse {
	meta := map[string]any(t.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	return TweetResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Content:   t.Content,
		TweetID:   t.TweetID,
		TweetedAt: t.TweetedAt,
		Metadata:  meta,
		CreatedAt: t.CreatedAt,
	}
}

// XImportRequest asks the server to pull recent tweets from a public X account.
type XImportRequest struct {
	Handle string `json:"handle"`
	Limit  int    `json:"limit"`
}
