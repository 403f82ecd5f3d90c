// Package events is the in-process bus between the tweet ingestor and the style analyzer.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"vibetweet/internal/middleware"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// TopicTweetsImported fires after an import stored at least one tweet.
const TopicTweetsImported = "tweets.imported"

// TweetsImported is the payload of TopicTweetsImported.
type TweetsImported struct {
	UserID   uuid.UUID `json:"user_id"`
	Imported int       `json:"imported"`
}

// TweetsImportedHandler reacts to one import event.
type TweetsImportedHandler func(ctx context.Context, evt TweetsImported) error

// Bus wraps a watermill in-memory pub/sub.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a bus with a buffered output channel so publishers never block on analysis.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            64,
				BlockPublishUntilSubscriberAck: false,
			},
			newSlogAdapter(),
		),
	}
}

// PublishTweetsImported emits an import event.
func (b *Bus) PublishTweetsImported(ctx context.Context, evt TweetsImported) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if rid, ok := ctx.Value(middleware.RequestIDKey).(string); ok && rid != "" {
		msg.Metadata.Set("request_id", rid)
	}
	return b.pubsub.Publish(TopicTweetsImported, msg)
}

// SubscribeTweetsImported runs handler for each event on its own goroutine until ctx is done.
// Messages are handled one at a time, each bounded by timeout. The returned channel closes
// when the loop exits.
func (b *Bus) SubscribeTweetsImported(ctx context.Context, timeout time.Duration, handler TweetsImportedHandler) (<-chan struct{}, error) {
	messages, err := b.pubsub.Subscribe(ctx, TopicTweetsImported)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", TopicTweetsImported, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range messages {
			handle(ctx, msg, timeout, handler)
		}
	}()
	return done, nil
}

func handle(ctx context.Context, msg *message.Message, timeout time.Duration, handler TweetsImportedHandler) {
	// Failed analyses are not redelivered; the next import or a manual refresh recomputes.
	defer msg.Ack()

	var evt TweetsImported
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		middleware.Logger.Error("discarding malformed event",
			slog.String("topic", TopicTweetsImported),
			slog.String("error", err.Error()),
		)
		return
	}

	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if rid := msg.Metadata.Get("request_id"); rid != "" {
		hctx = context.WithValue(hctx, middleware.RequestIDKey, rid)
	}
	hctx = middleware.WithUserID(hctx, evt.UserID.String())

	if err := handler(hctx, evt); err != nil {
		middleware.Logger.ErrorContext(hctx, "event handler failed",
			slog.String("topic", TopicTweetsImported),
			slog.String("error", err.Error()),
		)
	}
}

// Close shuts the bus down; subscriber loops drain and exit.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
