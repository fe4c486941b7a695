package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/walletgate/vas-catalog/internal/models"
)

// Notifier receives catalog lifecycle events after the database work has
// committed. Delivery is best effort; a failed publish never fails the sweep.
type Notifier interface {
	// CatalogChanged fires after a sweep that added or decommissioned
	// products has fully committed.
	CatalogChanged(ctx context.Context, stats models.SweepStats)

	// SyncError fires when a run fails at the top level.
	SyncError(ctx context.Context, runID string, cause error)
}

// publisher is the slice of the Redis client the notifier needs.
type publisher interface {
	Publish(ctx context.Context, channel string, payload string) error
}

// catalogEvent is the wire shape published to the event channel.
type catalogEvent struct {
	Event                  string    `json:"event"`
	RunID                  string    `json:"runId"`
	At                     time.Time `json:"at"`
	NewProducts            int       `json:"newProducts,omitempty"`
	DecommissionedProducts int       `json:"decommissionedProducts,omitempty"`
	Error                  string    `json:"error,omitempty"`
}

// RedisNotifier publishes catalog events to a Redis pub/sub channel so
// downstream services (wallet storefront, pricing) can react without polling.
type RedisNotifier struct {
	pub     publisher
	channel string
}

// NewRedisNotifier constructs a RedisNotifier for the given channel.
func NewRedisNotifier(pub publisher, channel string) *RedisNotifier {
	return &RedisNotifier{pub: pub, channel: channel}
}

// CatalogChanged publishes a catalog.changed event.
func (n *RedisNotifier) CatalogChanged(ctx context.Context, stats models.SweepStats) {
	n.publish(ctx, catalogEvent{
		Event:                  "catalog.changed",
		RunID:                  stats.RunID,
		At:                     time.Now().UTC(),
		NewProducts:            stats.NewProducts,
		DecommissionedProducts: stats.DecommissionedProducts,
	})
}

// SyncError publishes a catalog.sync_error event.
func (n *RedisNotifier) SyncError(ctx context.Context, runID string, cause error) {
	n.publish(ctx, catalogEvent{
		Event: "catalog.sync_error",
		RunID: runID,
		At:    time.Now().UTC(),
		Error: cause.Error(),
	})
}

func (n *RedisNotifier) publish(ctx context.Context, ev catalogEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Event).Msg("Failed to marshal catalog event")
		return
	}
	if err := n.pub.Publish(ctx, n.channel, string(payload)); err != nil {
		log.Warn().Err(err).
			Str("event", ev.Event).
			Str("channel", n.channel).
			Msg("Failed to publish catalog event")
		return
	}
	log.Debug().Str("event", ev.Event).Str("run_id", ev.RunID).Msg("Catalog event published")
}
