package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/straye-as/progress-api/internal/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const urlCachePrefix = "storage:url:"

// resolveConcurrency bounds concurrent URL signing calls per request
const resolveConcurrency = 8

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// URLCache keeps resolved download URLs in redis. A nil cache is a no-op.
type URLCache struct {
	client *redis.Client
}

func NewURLCache(client *redis.Client) *URLCache {
	if client == nil {
		return nil
	}
	return &URLCache{client: client}
}

func (c *URLCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	u, err := c.client.Get(ctx, urlCachePrefix+key).Result()
	if err != nil {
		return "", false
	}
	return u, true
}

func (c *URLCache) Set(ctx context.Context, key, url string, ttl time.Duration) error {
	if c == nil || ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, urlCachePrefix+key, url, ttl).Err()
}

func (c *URLCache) Forget(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = urlCachePrefix + k
	}
	return c.client.Del(ctx, full...).Err()
}

// Resolver turns storage keys into fresh download URLs.
// Cached URLs are kept for half of their lifetime so a served URL always has
// at least half of its validity left.
type Resolver struct {
	store  Storage
	cache  *URLCache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewResolver(store Storage, cache *URLCache, ttl time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Forget drops cached URLs for keys whose objects were removed
func (r *Resolver) Forget(ctx context.Context, keys ...string) error {
	return r.cache.Forget(ctx, keys...)
}

// URL resolves a single key
func (r *Resolver) URL(ctx context.Context, key string) (string, error) {
	if u, ok := r.cache.Get(ctx, key); ok {
		return u, nil
	}

	u, err := r.store.DownloadURL(ctx, key, r.now().Add(r.ttl))
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, key, u, r.ttl/2); err != nil {
		r.logger.Warn("failed to cache download url", zap.String("key", key), zap.Error(err))
	}
	return u, nil
}

// URLs resolves keys concurrently. Duplicate and empty keys are skipped.
func (r *Resolver) URLs(ctx context.Context, keys []string) (map[string]string, error) {
	unique := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, k)
	}

	urls := make([]string, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, key := range unique {
		g.Go(func() error {
			u, err := r.URL(gctx, key)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", key, err)
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(unique))
	for i, k := range unique {
		out[k] = urls[i]
	}
	return out, nil
}
