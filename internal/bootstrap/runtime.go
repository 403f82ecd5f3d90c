// Package bootstrap assembles the runtime: connections, providers, services
// and background subscribers shared by the server and the CLIs.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vibetweet/internal/cache"
	"vibetweet/internal/config"
	"vibetweet/internal/database"
	"vibetweet/internal/middleware"
	"vibetweet/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoUsers creates this many demo users in development when the
	// users table is empty.
	SeedDemoUsers int
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoUsers > 0 {
		if err := seedDemo(cfg, db, opts.SeedDemoUsers); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedDemo(cfg *config.Config, db *gorm.DB, n int) error {
	if cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var existing int64
	if err := db.Table("users").Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		middleware.Logger.Info("skipping demo seed, users already present", slog.Int64("users", existing))
		return nil
	}

	svc := NewServices(cfg, db, Deps{})
	_, err := seed.Run(context.Background(), svc.SeedTargets(), seed.Options{
		NumUsers:      n,
		TweetsPerUser: 25,
		Analyze:       true,
	})
	return err
}
