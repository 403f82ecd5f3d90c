package database

import (
	"context"
	"testing"

	"vibetweet/internal/config"
	"vibetweet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestOpen_SQLiteAppliesSchema(t *testing.T) {
	cfg := &config.Config{
		Env:         "test",
		DatabaseURL: "sqlite://file::memory:?cache=shared",
	}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Ping(context.Background(), db))
	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, table := range []string{"users", "preferences", "tweet_history", "style_profiles"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		mode        string
		destructive bool
		wantSQL     bool
		wantAuto    bool
		wantErr     bool
	}{
		{"hybrid development", "development", "", false, true, true, false},
		{"hybrid production", "production", "hybrid", false, true, false, false},
		{"sql only", "development", "sql", false, true, false, false},
		{"auto development", "development", "auto", false, false, true, false},
		{"auto production refused", "production", "auto", false, false, false, true},
		{"auto production allowed", "production", "auto", true, false, true, false},
		{"unknown mode", "development", "magic", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Env: tt.env, DBSchemaMode: tt.mode, DBAutoMigrateAllowDestructive: tt.destructive}
			runSQL, runAuto, err := schemaPolicy(nil, cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestSchemaPolicy_SQLiteAlwaysAutoMigrates(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	runSQL, runAuto, err := schemaPolicy(db, &config.Config{Env: "production", DBSchemaMode: "sql"})
	require.NoError(t, err)
	assert.False(t, runSQL)
	assert.True(t, runAuto)
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)

	for i, m := range all {
		assert.NotEmpty(t, m.UpScript, m.String())
		assert.NotEmpty(t, m.DownScript, m.String())
		if i > 0 {
			assert.Greater(t, m.Version, all[i-1].Version)
		}
	}

	first := GetMigrationByVersion(1)
	require.NotNil(t, first)
	assert.Equal(t, "000001_init_schema", first.String())
	for _, table := range []string{"users", "preferences", "tweet_history", "style_profiles"} {
		assert.Contains(t, first.UpScript, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, first.UpScript, "ON DELETE CASCADE")
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))
	assert.ErrorContains(t, validateAppliedVersions([]int{1, 7}, registered), "000007")
}

func TestPersistentModels_ParentFirst(t *testing.T) {
	all := PersistentModels()
	require.Len(t, all, 4)
	_, ok := all[0].(*models.User)
	assert.True(t, ok, "users must migrate before tables that reference them")
}
