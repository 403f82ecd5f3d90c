package repository

import (
	"context"

	"vibetweet/internal/models"
	"vibetweet/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 100

// TweetRepository defines persistence operations for tweet history.
type TweetRepository interface {
	Insert(ctx context.Context, tweets []models.TweetHistory) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TweetHistory, int64, error)
	Contents(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository returns a new TweetRepository implementation.
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

// Insert stores tweets in one transaction and reports how many rows were written.
// Rows whose tweet_id already exists are skipped by the database, not rejected.
func (r *tweetRepository) Insert(ctx context.Context, tweets []models.TweetHistory) (int, error) {
	if len(tweets) == 0 {
		return 0, nil
	}
	defer observability.TrackQuery("insert", "tweet_history")()

	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(tweets); start += importBatchSize {
			batch := tweets[start:min(start+importBatchSize, len(tweets))]
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tweet_id"}},
				DoNothing: true,
			}).Create(&batch)
			if res.Error != nil {
				return res.Error
			}
			inserted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return int(inserted), nil
}

// ListByUser returns one page of a user's tweets, newest first, and the user's total.
func (r *tweetRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TweetHistory, int64, error) {
	defer observability.TrackQuery("list", "tweet_history")()

	limit, offset = clampPage(limit, offset)
	q := r.db.WithContext(ctx).Model(&models.TweetHistory{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var tweets []models.TweetHistory
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&tweets).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return tweets, total, nil
}

// Contents returns the text of every tweet the user has.
func (r *tweetRepository) Contents(ctx context.Context, userID uuid.UUID) ([]string, error) {
	defer observability.TrackQuery("contents", "tweet_history")()

	var contents []string
	if err := r.db.WithContext(ctx).
		Model(&models.TweetHistory{}).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Pluck("content", &contents).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return contents, nil
}
