package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Tone is the voice a generated tweet should carry.
type Tone string

const (
	ToneCasual        Tone = "casual"
	ToneSarcastic     Tone = "sarcastic"
	ToneSerious       Tone = "serious"
	ToneHumorous      Tone = "humorous"
	ToneControversial Tone = "controversial"
	ToneInformative   Tone = "informative"
)

// Tones lists every supported tone.
var Tones = []Tone{ToneCasual, ToneSarcastic, ToneSerious, ToneHumorous, ToneControversial, ToneInformative}

// ParseTone validates a tone name.
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tones {
		if t == known {
			return t, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("tone must be one of %v", Tones))
}

// LLMProvider names a text generation backend.
type LLMProvider string

const (
	ProviderClaude LLMProvider = "claude"
	ProviderOpenAI LLMProvider = "openai"
)

// ParseProvider validates a provider name.
func ParseProvider(s string) (LLMProvider, error) {
	switch p := LLMProvider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderClaude, ProviderOpenAI:
		return p, nil
	}
	return "", NewValidationError(`llm_provider must be "claude" or "openai"`)
}

// Preferences are the per-user generation settings.
type Preferences struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Interests   datatypes.JSONSlice[string] `gorm:"not null" json:"interests"`
	Tone        Tone                        `gorm:"size:50;not null;default:'casual'" json:"tone"`
	LLMProvider LLMProvider                 `gorm:"column:llm_provider;size:20;not null;default:'claude'" json:"llm_provider"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Preferences) TableName() string {
	return "preferences"
}

// PreferencesUpdate is a partial update; nil fields are left untouched.
type PreferencesUpdate struct {
	Interests   *[]string `json:"interests,omitempty"`
	Tone        *string   `json:"tone,omitempty"`
	LLMProvider *string   `json:"llm_provider,omitempty"`
}

// PreferencesResponse is the public representation of preferences.
type PreferencesResponse struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Interests   []string    `json:"interests"`
	Tone        Tone        `json:"tone"`
	LLMProvider LLMProvider `json:"llm_provider"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ToResponse converts preferences to their public shape.
func (p *Preferences) ToResponse() PreferencesResponse {
	interests := []string(p.Interests)
	if interests == nil {
		interests = []string{}
	}
	return PreferencesResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Interests:   interests,
		Tone:        p.Tone,
		LLMProvider: p.LLMProvider,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// DefaultPreferences returns the settings a new user starts with.
func DefaultPreferences(userID uuid.UUID, provider LLMProvider) *Preferences {
	if provider == "" {
		provider = ProviderClaude
	}
	return &Preferences{
		UserID:      userID,
		Interests:   datatypes.JSONSlice[string]{},
		Tone:        ToneCasual,
		LLMProvider: provider,
	}
}
