package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VocabularyProfile captures word choice.
type VocabularyProfile struct {
	CommonWords      []string `json:"common_words"`
	HashtagFrequency float64  `json:"hashtag_frequency"`
	MentionFrequency float64  `json:"mention_frequency"`
}

// StructureProfile captures how tweets are put together.
type StructureProfile struct {
	AvgSentences float64 `json:"avg_sentences"`
	UsesThreads  bool    `json:"uses_threads"`
	UsesLists    bool    `json:"uses_lists"`
}

// ToneMarkers are heuristic scores in [0,1].
type ToneMarkers struct {
	EmojiUsage     float64 `json:"emoji_usage"`
	HumorScore     float64 `json:"humor_score"`
	FormalityScore float64 `json:"formality_score"`
}

// StyleProfileData is the derived writing-style summary of a user's tweets.
type StyleProfileData struct {
	AvgLength   float64           `json:"avg_length"`
	Vocabulary  VocabularyProfile `json:"vocabulary"`
	Structure   StructureProfile  `json:"structure"`
	ToneMarkers ToneMarkers       `json:"tone_markers"`
	Themes      []string          `json:"themes"`
}

// DefaultStyleProfileData is the profile of a user with no usable tweets.
func DefaultStyleProfileData() StyleProfileData {
	return StyleProfileData{
		Vocabulary:  VocabularyProfile{CommonWords: []string{}},
		Structure:   StructureProfile{AvgSentences: 1.0},
		ToneMarkers: ToneMarkers{FormalityScore: 0.5},
		Themes:      []string{},
	}
}

// Clamp forces every frequency and score into [0,1] and the averages to be non-negative.
func (d StyleProfileData) Clamp() StyleProfileData {
	d.AvgLength = nonNegative(d.AvgLength)
	d.Structure.AvgSentences = nonNegative(d.Structure.AvgSentences)
	d.Vocabulary.HashtagFrequency = Clamp01(d.Vocabulary.HashtagFrequency)
	d.Vocabulary.MentionFrequency = Clamp01(d.Vocabulary.MentionFrequency)
	d.ToneMarkers.EmojiUsage = Clamp01(d.ToneMarkers.EmojiUsage)
	d.ToneMarkers.HumorScore = Clamp01(d.ToneMarkers.HumorScore)
	d.ToneMarkers.FormalityScore = Clamp01(d.ToneMarkers.FormalityScore)
	if d.Vocabulary.CommonWords == nil {
		d.Vocabulary.CommonWords = []string{}
	}
	if d.Themes == nil {
		d.Themes = []string{}
	}
	return d
}

// Clamp01 bounds v to [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// StyleProfile stores the latest analysis for a user.
type StyleProfile struct {
	ID         uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID                            `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Profile    datatypes.JSONType[StyleProfileData] `gorm:"not null" json:"profile"`
	TweetCount int                                  `gorm:"not null;default:0" json:"tweet_count"`
	UpdatedAt  time.Time                            `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (StyleProfile) TableName() string {
	return "style_profiles"
}

// StyleProfileResponse is the public representation of a stored profile.
type StyleProfileResponse struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	Profile    StyleProfileData `json:"profile"`
	TweetCount int              `json:"tweet_count"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ToResponse converts a stored profile to its public shape.
func (s *StyleProfile) ToResponse() StyleProfileResponse {
	return StyleProfileResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		Profile:    s.Profile.Data(),
		TweetCount: s.TweetCount,
		UpdatedAt:  s.UpdatedAt,
	}
}

// StyleProfileSummary is a human-friendly digest of a profile.
type StyleProfileSummary struct {
	HasProfile     bool     `json:"has_profile"`
	TweetCount     int      `json:"tweet_count"`
	TopThemes      []string `json:"top_themes"`
	AvgTweetLength float64  `json:"avg_tweet_length"`
	EmojiUsage     string   `json:"emoji_usage"`
	HumorLevel     string   `json:"humor_level"`
}

// EmptySummary is returned for users that have never been analyzed.
func EmptySummary() StyleProfileSummary {
	return StyleProfileSummary{
		TopThemes:  []string{},
		EmojiUsage: "none",
		HumorLevel: "neutral",
	}
}

// Summarize buckets a stored profile into a StyleProfileSummary.
func (s *StyleProfile) Summarize() StyleProfileSummary {
	data := s.Profile.Data()
	themes := data.Themes
	if len(themes) > 3 {
		themes = themes[:3]
	}
	if themes == nil {
		themes = []string{}
	}
	return StyleProfileSummary{
		HasProfile:     true,
		TweetCount:     s.TweetCount,
		TopThemes:      themes,
		AvgTweetLength: math.Round(data.AvgLength*10) / 10,
		EmojiUsage:     EmojiBucket(data.ToneMarkers.EmojiUsage),
		HumorLevel:     HumorBucket(data.ToneMarkers.HumorScore),
	}
}

// EmojiBucket maps an emoji usage fraction to none, low, medium or high.
func EmojiBucket(v float64) string {
	switch {
	case v <= 0:
		return "none"
	case v < 0.15:
		return "low"
	case v < 0.40:
		return "medium"
	default:
		return "high"
	}
}

// HumorBucket maps a humor score to serious, neutral, playful or very_playful.
func HumorBucket(v float64) string {
	switch {
	case v < 0.20:
		return "serious"
	case v < 0.50:
		return "neutral"
	case v < 0.75:
		return "playful"
	default:
		return "very_playful"
	}
}
