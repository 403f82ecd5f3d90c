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

// StyleProfileRepository defines persistence operations for style profiles.
type StyleProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.StyleProfile, error)
	Upsert(ctx context.Context, profile *models.StyleProfile) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type styleProfileRepository struct {
	db *gorm.DB
}

// NewStyleProfileRepository returns a new StyleProfileRepository implementation.
func NewStyleProfileRepository(db *gorm.DB) StyleProfileRepository {
	return &styleProfileRepository{db: db}
}

func (r *styleProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.StyleProfile, error) {
	var profile models.StyleProfile
	err := cache.Aside(ctx, cache.StyleProfileKey(userID), &profile, cache.StyleProfileTTL, func() error {
		defer observability.TrackQuery("get", "style_profiles")()
		if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
			return notFoundOr(err, "Style profile for user", userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert replaces the user's profile, keeping at most one row per user.
func (r *styleProfileRepository) Upsert(ctx context.Context, profile *models.StyleProfile) error {
	defer observability.TrackQuery("upsert", "style_profiles")()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"profile", "tweet_count", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateStyleProfile(ctx, profile.UserID)

	// On conflict the stored row keeps its original id.
	var stored models.StyleProfile
	if err := r.db.WithContext(ctx).First(&stored, "user_id = ?", profile.UserID).Error; err != nil {
		return models.NewInternalError(err)
	}
	*profile = stored
	return nil
}

func (r *styleProfileRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	defer observability.TrackQuery("delete", "style_profiles")()

	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.StyleProfile{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateStyleProfile(ctx, userID)
	return nil
}
