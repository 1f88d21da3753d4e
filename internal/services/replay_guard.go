package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard suppresses duplicate gateway event deliveries by remembering
// event ids in redis. The database's payment_reference unique index remains
// the backstop, so the guard is allowed to degrade: with no redis client
// every event is treated as unseen.
type ReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReplayGuard creates a replay guard. A nil client disables suppression.
func NewReplayGuard(client *redis.Client) *ReplayGuard {
	return &ReplayGuard{
		client: client,
		// Providers retry webhooks for up to about three days.
		ttl: 72 * time.Hour,
	}
}

// Seen reports whether the event id was already fully processed. The check
// is read-only: recording happens in Mark, after processing succeeds, so a
// delivery that failed with a 5xx stays unseen and the provider's retry is
// processed instead of suppressed.
func (g *ReplayGuard) Seen(ctx context.Context, eventID string) bool {
	if g.client == nil || eventID == "" {
		return false
	}

	n, err := g.client.Exists(ctx, g.key(eventID)).Result()
	if err != nil {
		// Redis trouble must not block fulfillment.
		logging.Warnf("Replay guard unavailable, processing event %s anyway: %v", eventID, err)
		return false
	}
	return n > 0
}

// Mark records the event id once its processing finished. Two concurrent
// deliveries of one event can both pass Seen before either marks; the
// payment_reference unique index absorbs that race.
func (g *ReplayGuard) Mark(ctx context.Context, eventID string) {
	if g.client == nil || eventID == "" {
		return
	}
	if err := g.client.Set(ctx, g.key(eventID), "1", g.ttl).Err(); err != nil {
		logging.Warnf("Replay guard failed to record event %s: %v", eventID, err)
	}
}

func (g *ReplayGuard) key(eventID string) string {
	return fmt.Sprintf("gateway_event:%s", eventID)
}
