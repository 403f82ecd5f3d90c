package database

import "vibetweet/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Parents come before children so foreign keys resolve during AutoMigrate.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Preferences{},
		&models.TweetHistory{},
		&models.StyleProfile{},
	}
}
