package models

// Generation request bounds.
const (
	DefaultSuggestionCount = 5
	MinSuggestionCount     = 1
	MaxSuggestionCount     = 10
	MaxTweetLength         = 280
)

// TweetGenerationRequest asks for count suggestions, optionally anchored to trends.
type TweetGenerationRequest struct {
	Count  *int     `json:"count,omitempty"`
	Trends []string `json:"trends,omitempty"`
}

// ResolvedCount applies the default and validates the [1,10] bound.
func (r TweetGenerationRequest) ResolvedCount() (int, error) {
	if r.Count == nil {
		return DefaultSuggestionCount, nil
	}
	n := *r.Count
	if n < MinSuggestionCount || n > MaxSuggestionCount {
		return 0, NewValidationError("count must be between 1 and 10")
	}
	return n, nil
}

// GeneratedTweet is one suggestion.
type GeneratedTweet struct {
	Content     string  `json:"content"`
	Confidence  float64 `json:"confidence"`
	TrendUsed   *string `json:"trend_used"`
	ToneApplied Tone    `json:"tone_applied"`
}

// TweetGenerationResponse holds ranked suggestions and what informed them.
type TweetGenerationResponse struct {
	Suggestions      []GeneratedTweet `json:"suggestions"`
	StyleProfileUsed bool             `json:"style_profile_used"`
	TrendsUsed       []string         `json:"trends_used"`
}

// TrendsResponse lists the currently merged trends.
type TrendsResponse struct {
	Trends []string `json:"trends"`
}
