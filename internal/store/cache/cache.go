package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/geodrop-server/internal/metrics"
	"github.com/vovakirdan/geodrop-server/internal/store"
)

// DefaultTTL is used when no positive TTL is configured.
const DefaultTTL = 5 * time.Minute

// PostCache is a read-through Redis cache in front of a post store.
// Redis failures never fail a request; the cache is skipped and the store answers.
type PostCache struct {
	next store.Store
	rdb  *redis.Client
	ttl  time.Duration
	log  *zerolog.Logger
}

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// New wraps next with a cache stored in rdb.
func New(next store.Store, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *PostCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostCache{next: next, rdb: rdb, ttl: ttl, log: logger}
}

func postKey(id string) string {
	return fmt.Sprintf("post:%s", id)
}

// CreatePost stores the post and primes the cache.
func (c *PostCache) CreatePost(ctx context.Context, post *store.Post) error {
	if err := c.next.CreatePost(ctx, post); err != nil {
		return err
	}
	c.put(ctx, post)
	return nil
}

// GetPost answers from Redis when possible.
func (c *PostCache) GetPost(ctx context.Context, id string) (*store.Post, error) {
	raw, err := c.rdb.Get(ctx, postKey(id)).Bytes()
	switch {
	case err == nil:
		var post store.Post
		if jsonErr := json.Unmarshal(raw, &post); jsonErr == nil {
			metrics.PostCacheResults.WithLabelValues("hit").Inc()
			return &post, nil
		}
		c.log.Warn().Str("post_id", id).Msg("discarding undecodable cached post")
		metrics.PostCacheResults.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.PostCacheResults.WithLabelValues("miss").Inc()
	default:
		c.log.Warn().Err(err).Str("post_id", id).Msg("post cache read failed")
		metrics.PostCacheResults.WithLabelValues("error").Inc()
	}

	post, err := c.next.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, post)
	return post, nil
}

// ListPosts is not cached; the list changes on every new post.
func (c *PostCache) ListPosts(ctx context.Context) ([]*store.Post, error) {
	return c.next.ListPosts(ctx)
}

// IncrementLoves updates the store and refreshes the cached copy.
func (c *PostCache) IncrementLoves(ctx context.Context, id string) (*store.Post, error) {
	post, err := c.next.IncrementLoves(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, post)
	return post, nil
}

// Close closes Redis and the wrapped store.
func (c *PostCache) Close() error {
	redisErr := c.rdb.Close()
	if err := c.next.Close(); err != nil {
		return err
	}
	return redisErr
}

func (c *PostCache) put(ctx context.Context, post *store.Post) {
	raw, err := json.Marshal(post)
	if err != nil {
		c.log.Warn().Err(err).Str("post_id", post.ID).Msg("encode post for cache")
		return
	}
	if err := c.rdb.Set(ctx, postKey(post.ID), raw, c.ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("post_id", post.ID).Msg("post cache write failed")
	}
}
