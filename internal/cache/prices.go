// Package cache keeps catalog prices in Redis for cart previews. Posting an
// invoice never reads from here; the engine always prices from the database.
package cache

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 10 * time.Minute

// Source loads prices on a cache miss.
type Source interface {
	Prices(ctx context.Context, ids []int64) (map[int64]float64, error)
}

// PriceCache is a read-through cache of active medicine prices. A nil client
// turns it into a pass-through to the source.
type PriceCache struct {
	client *redis.Client
	source Source
	ttl    time.Duration
}

func NewPriceCache(client *redis.Client, source Source, ttl time.Duration) *PriceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PriceCache{client: client, source: source, ttl: ttl}
}

// NewClient returns nil when addr is empty, so callers can pass the result
// straight to NewPriceCache.
func NewClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func priceKey(id int64) string {
	return "dispensary:price:" + strconv.FormatInt(id, 10)
}

func (c *PriceCache) Prices(ctx context.Context, ids []int64) (map[int64]float64, error) {
	if c.client == nil || len(ids) == 0 {
		return c.source.Prices(ctx, ids)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = priceKey(id)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("price cache unavailable, reading catalog: %v", err)
		return c.source.Prices(ctx, ids)
	}

	prices := make(map[int64]float64, len(ids))
	var misses []int64
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			misses = append(misses, ids[i])
			continue
		}
		prices[ids[i]] = p
	}
	if len(misses) == 0 {
		return prices, nil
	}

	loaded, err := c.source.Prices(ctx, misses)
	if err != nil {
		return nil, err
	}
	pipe := c.client.Pipeline()
	for id, p := range loaded {
		prices[id] = p
		pipe.Set(ctx, priceKey(id), strconv.FormatFloat(p, 'f', -1, 64), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("price cache write failed: %v", err)
	}
	return prices, nil
}

// Invalidate drops cached prices after a catalog change.
func (c *PriceCache) Invalidate(ctx context.Context, ids ...int64) {
	if c.client == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = priceKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("price cache invalidate %v: %v", ids, err)
	}
}

func (c *PriceCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
