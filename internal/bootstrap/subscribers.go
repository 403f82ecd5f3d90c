package bootstrap

import (
	"context"
	"time"

	"vibetweet/internal/events"
	"vibetweet/internal/featureflags"
	"vibetweet/internal/service"
)

// WireReanalysis recomputes a user's style profile after each import while
// the auto_reanalyze flag is on for that user. The returned channel closes
// once the subscriber stops.
func WireReanalysis(ctx context.Context, bus *events.Bus, flags *featureflags.Manager, styles *service.StyleService, timeout time.Duration) (<-chan struct{}, error) {
	return bus.SubscribeTweetsImported(ctx, timeout, func(ctx context.Context, evt events.TweetsImported) error {
		if !flags.Enabled(featureflags.AutoReanalyze, evt.UserID) {
			return nil
		}
		_, err := styles.Recompute(ctx, evt.UserID, service.TriggerEvent)
		return err
	})
}
