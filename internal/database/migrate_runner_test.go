package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var draftMigrations = []Migration{
	{
		Version:    1,
		Name:       "tweet_drafts",
		UpScript:   `CREATE TABLE tweet_drafts (id INTEGER PRIMARY KEY, user_id TEXT NOT NULL, content TEXT NOT NULL)`,
		DownScript: `DROP TABLE tweet_drafts`,
	},
	{
		Version:    2,
		Name:       "tweet_drafts_user_index",
		UpScript:   `CREATE INDEX idx_tweet_drafts_user ON tweet_drafts (user_id)`,
		DownScript: `DROP INDEX idx_tweet_drafts_user`,
	},
}

func newMigratorDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newMigratorDB(t)
	m := NewMigrator(db, draftMigrations)

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied, "fresh database has no log table yet")

	got, err := m.Up(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, db.Migrator().HasTable("tweet_drafts"))
	assert.True(t, db.Migrator().HasIndex("tweet_drafts", "idx_tweet_drafts_user"))

	var logs []MigrationLog
	require.NoError(t, db.Order("version").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "tweet_drafts_user_index", logs[1].Name)
	assert.False(t, logs[0].AppliedAt.IsZero())

	got, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrator_FailedScriptLeavesNoLogRow(t *testing.T) {
	ctx := context.Background()
	db := newMigratorDB(t)

	broken := append([]Migration{}, draftMigrations[0], Migration{
		Version:    2,
		Name:       "broken",
		UpScript:   `CREATE INDEX idx_missing ON no_such_table (user_id)`,
		DownScript: `SELECT 1`,
	})
	m := NewMigrator(db, broken)

	got, err := m.Up(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2 (broken)")
	require.Len(t, got, 1)

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)
}

func TestMigrator_Down(t *testing.T) {
	ctx := context.Background()
	db := newMigratorDB(t)
	m := NewMigrator(db, draftMigrations)
	_, err := m.Up(ctx)
	require.NoError(t, err)

	assert.ErrorContains(t, m.Down(ctx, 1), "not the latest applied")
	assert.ErrorContains(t, m.Down(ctx, 9), "not found")

	require.NoError(t, m.Down(ctx, 2))
	assert.False(t, db.Migrator().HasIndex("tweet_drafts", "idx_tweet_drafts_user"))
	assert.ErrorContains(t, m.Down(ctx, 2), "has not been applied")

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)
}

func TestMigrator_UnknownAppliedVersion(t *testing.T) {
	ctx := context.Background()
	db := newMigratorDB(t)
	_, err := NewMigrator(db, draftMigrations).Up(ctx)
	require.NoError(t, err)

	_, err = NewMigrator(db, draftMigrations[:1]).Pending(ctx)
	assert.ErrorContains(t, err, "000002")
}
