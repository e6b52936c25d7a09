package redis

import (
	"context"

	"github.com/rs/zerolog"

	"training-enrichment/internal/domain/ports/adapter"
)

var _ adapter.SessionFeed = (*StatusFeed)(nil)

// StatusFeed propagates session row updates over Redis pub/sub, one channel
// per session. Each Subscribe call owns its own PubSub connection, so
// independent subscriptions for the same session do not interfere and
// unsubscribing one leaves the others running.
type StatusFeed struct {
	client *Client
	log    *zerolog.Logger
}

func NewStatusFeed(client *Client, log *zerolog.Logger) *StatusFeed {
	return &StatusFeed{client: client, log: log}
}

func channelFor(sessionID string) string {
	return "enrichment:session:" + sessionID
}

func (f *StatusFeed) Publish(ctx context.Context, sessionID string) error {
	return f.client.Publish(ctx, channelFor(sessionID), sessionID)
}

func (f *StatusFeed) Subscribe(ctx context.Context, sessionID string, onEvent func()) (func(), error) {
	sub := f.client.Subscribe(ctx, channelFor(sessionID))

	// Force the subscription onto the wire before returning, so an update
	// published right after Subscribe is not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	go func() {
		for range sub.Channel() {
			onEvent()
		}
	}()

	return func() {
		if err := sub.Close(); err != nil {
			f.log.Warn().Err(err).Str("session_id", sessionID).Msg("close subscription")
		}
	}, nil
}
