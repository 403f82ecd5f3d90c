package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"vibetweet/internal/models"
	"vibetweet/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	maxInterests      = 20
	maxInterestLength = 50
)

type PreferencesService struct {
	users           *UserService
	prefs           repository.PreferencesRepository
	defaultProvider models.LLMProvider
}

func NewPreferencesService(users *UserService, prefs repository.PreferencesRepository, defaultProvider models.LLMProvider) *PreferencesService {
	if defaultProvider == "" {
		defaultProvider = models.ProviderClaude
	}
	return &PreferencesService{users: users, prefs: prefs, defaultProvider: defaultProvider}
}

// GetPreferences returns the user's preferences, creating the defaults if the row is missing.
func (s *PreferencesService) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.Preferences, error) {
	if err := s.users.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	prefs, err := s.prefs.GetByUserID(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}

	prefs = models.DefaultPreferences(userID, s.defaultProvider)
	if err := s.prefs.Save(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// UpdatePreferences applies a partial update; fields left nil keep their value.
func (s *PreferencesService) UpdatePreferences(ctx context.Context, userID uuid.UUID, in models.PreferencesUpdate) (*models.Preferences, error) {
	var (
		interests []string
		tone      models.Tone
		provider  models.LLMProvider
		err       error
	)
	if in.Interests != nil {
		if interests, err = NormalizeInterests(*in.Interests); err != nil {
			return nil, err
		}
	}
	if in.Tone != nil {
		if tone, err = models.ParseTone(*in.Tone); err != nil {
			return nil, err
		}
	}
	if in.LLMProvider != nil {
		if provider, err = models.ParseProvider(*in.LLMProvider); err != nil {
			return nil, err
		}
	}

	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Interests != nil {
		prefs.Interests = datatypes.JSONSlice[string](interests)
	}
	if tone != "" {
		prefs.Tone = tone
	}
	if provider != "" {
		prefs.LLMProvider = provider
	}

	if err := s.prefs.Save(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// NormalizeInterests trims entries, drops blanks and case-insensitive duplicates,
// and enforces the count and length limits.
func NormalizeInterests(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, in := range raw {
		in = strings.Join(strings.Fields(in), " ")
		if in == "" {
			continue
		}
		if utf8.RuneCountInString(in) > maxInterestLength {
			return nil, models.NewValidationError("each interest must be at most 50 characters")
		}
		key := strings.ToLower(in)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, in)
	}
	if len(out) > maxInterests {
		return nil, models.NewValidationError("at most 20 interests are allowed")
	}
	return out, nil
}
