package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/walletgate/vas-catalog/internal/models"
)

const (
	offerKeyPrefix = "best_offers:"
	offerTTL       = 10 * time.Minute
)

// BestOfferCache caches best-offer list responses per VAS type. Entries are
// invalidated wholesale whenever the table is rebuilt; the TTL is only a
// backstop.
type BestOfferCache struct {
	redis *RedisClient
}

// NewBestOfferCache constructs a BestOfferCache.
func NewBestOfferCache(redis *RedisClient) *BestOfferCache {
	return &BestOfferCache{redis: redis}
}

func offerKey(vasType models.VasType) string {
	if vasType == "" {
		return offerKeyPrefix + "all"
	}
	return offerKeyPrefix + string(vasType)
}

// Get returns the cached offer list for a VAS type, or nil on miss.
func (c *BestOfferCache) Get(ctx context.Context, vasType models.VasType) ([]models.BestOffer, error) {
	raw, err := c.redis.Get(ctx, offerKey(vasType))
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var offers []models.BestOffer
	if err := json.Unmarshal([]byte(raw), &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// Set stores the offer list for a VAS type.
func (c *BestOfferCache) Set(ctx context.Context, vasType models.VasType, offers []models.BestOffer) error {
	payload, err := json.Marshal(offers)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, offerKey(vasType), string(payload), offerTTL)
}

// Invalidate drops every cached offer list. Called after each rebuild.
func (c *BestOfferCache) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, len(models.AllVasTypes)+1)
	keys = append(keys, offerKey(""))
	for _, vt := range models.AllVasTypes {
		keys = append(keys, offerKey(vt))
	}
	return c.redis.Delete(ctx, keys...)
}
