// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"strings"
	"testing"

	"vibetweet/internal/config"
	"vibetweet/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a private in-memory SQLite database with the full schema applied.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	cfg := &config.Config{
		Env:         "test",
		DatabaseURL: "sqlite://file:" + name + "?mode=memory&cache=shared",
	}

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
