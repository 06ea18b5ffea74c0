package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache is a short-TTL Redis read-through cache for per-URI view counts.
// Every failure is reported to the caller, which falls back to the stats
// service; the cache is never load-bearing.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Client: client, TTL: ttl}
}

func cacheKey(uri string, unique bool) string {
	return fmt.Sprintf("views:%s:unique=%t", uri, unique)
}

// Get returns the cached counts for the uris that were found and the list of
// uris that were not.
func (c *Cache) Get(ctx context.Context, uris []string, unique bool) (map[string]int64, []string, error) {
	keys := make([]string, len(uris))
	for i, uri := range uris {
		keys[i] = cacheKey(uri, unique)
	}

	values, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, uris, err
	}

	found := make(map[string]int64)
	var missing []string
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, uris[i])
			continue
		}
		hits, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			missing = append(missing, uris[i])
			continue
		}
		found[uris[i]] = hits
	}
	return found, missing, nil
}

// Set stores the given counts with the cache TTL.
func (c *Cache) Set(ctx context.Context, views map[string]int64, unique bool) error {
	pipe := c.Client.Pipeline()
	for uri, hits := range views {
		pipe.Set(ctx, cacheKey(uri, unique), strconv.FormatInt(hits, 10), c.TTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}
