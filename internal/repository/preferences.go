package repository

import (
	"context"

	"vibetweet/internal/cache"
	"vibetweet/internal/models"
	"vibetweet/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferencesRepository defines persistence operations for per-user preferences.
type PreferencesRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Preferences, error)
	Save(ctx context.Context, prefs *models.Preferences) error
}

type preferencesRepository struct {
	db *gorm.DB
}

// NewPreferencesRepository returns a new PreferencesRepository implementation.
func NewPreferencesRepository(db *gorm.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Preferences, error) {
	var prefs models.Preferences
	err := cache.Aside(ctx, cache.PreferencesKey(userID), &prefs, cache.PreferencesTTL, func() error {
		defer observability.TrackQuery("get", "preferences")()
		if err := r.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error; err != nil {
			return notFoundOr(err, "Preferences for user", userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Save updates existing preferences in place, or inserts them keyed by user_id.
func (r *preferencesRepository) Save(ctx context.Context, prefs *models.Preferences) error {
	defer observability.TrackQuery("save", "preferences")()

	db := r.db.WithContext(ctx)
	var err error
	if prefs.ID != uuid.Nil {
		err = db.Model(prefs).
			Select("interests", "tone", "llm_provider", "updated_at").
			Updates(prefs).Error
	} else {
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"interests", "tone", "llm_provider", "updated_at"}),
		}).Create(prefs).Error
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePreferences(ctx, prefs.UserID)
	return nil
}
