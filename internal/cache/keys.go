package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	StyleProfileKeyPrefix = "style_profile:%s"
	PreferencesKeyPrefix  = "preferences:%s"
	TrendsKey             = "trends:global"
)

const (
	StyleProfileTTL = 10 * time.Minute
	PreferencesTTL  = 5 * time.Minute
)

func StyleProfileKey(userID uuid.UUID) string {
	return fmt.Sprintf(StyleProfileKeyPrefix, userID)
}

func PreferencesKey(userID uuid.UUID) string {
	return fmt.Sprintf(PreferencesKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateStyleProfile(ctx context.Context, userID uuid.UUID) {
	Invalidate(ctx, StyleProfileKey(userID))
}

func InvalidatePreferences(ctx context.Context, userID uuid.UUID) {
	Invalidate(ctx, PreferencesKey(userID))
}

// InvalidateUser drops every cached entry derived from the user.
func InvalidateUser(ctx context.Context, userID uuid.UUID) {
	Invalidate(ctx, StyleProfileKey(userID), PreferencesKey(userID))
}
