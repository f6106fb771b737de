// Package rediscache is a read-through cache in front of a metadata provider.
// Resolving the same url twice within the TTL hits redis instead of the
// upstream endpoint. Cache failures degrade to a direct lookup.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/watchroom/server/internal/provider"
)

type iProvider interface {
	Resolve(ctx context.Context, videoURL string) (provider.VideoData, error)
}

type Cache struct {
	rc     *redis.Client
	inner  iProvider
	ttl    time.Duration
	logger *slog.Logger
}

func New(rc *redis.Client, inner iProvider, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		rc:     rc,
		inner:  inner,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *Cache) getVideoKey(videoURL string) string {
	return "video-data:" + videoURL
}

func (c *Cache) Resolve(ctx context.Context, videoURL string) (provider.VideoData, error) {
	key := c.getVideoKey(videoURL)

	cached, err := c.rc.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var data provider.VideoData
		if err := json.Unmarshal(cached, &data); err == nil {
			c.logger.DebugContext(ctx, "video data cache hit", "url", videoURL)
			return data, nil
		}
		c.logger.InfoContext(ctx, "failed to decode cached video data", "url", videoURL, "error", err)
	case !errors.Is(err, redis.Nil):
		c.logger.InfoContext(ctx, "failed to read video data cache", "url", videoURL, "error", err)
	}

	data, err := c.inner.Resolve(ctx, videoURL)
	if err != nil {
		return provider.VideoData{}, err
	}

	encoded, err := json.Marshal(data)
	if err == nil {
		if err := c.rc.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.InfoContext(ctx, "failed to write video data cache", "url", videoURL, "error", err)
		}
	}

	return data, nil
}
