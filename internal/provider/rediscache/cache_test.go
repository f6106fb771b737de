package rediscache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/provider"
)

type stubProvider struct {
	data  provider.VideoData
	err   error
	calls int
}

func (s *stubProvider) Resolve(ctx context.Context, videoURL string) (provider.VideoData, error) {
	s.calls++
	if s.err != nil {
		return provider.VideoData{}, s.err
	}
	return s.data, nil
}

func TestResolveCachesUpstreamResult(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})

	inner := &stubProvider{data: provider.VideoData{URL: "http://v1", Title: "first"}}
	cache := New(rc, inner, time.Minute, slog.Default())

	ctx := context.Background()

	got, err := cache.Resolve(ctx, "http://v1")
	require.NoError(t, err)
	assert.Equal(t, inner.data, got)
	assert.Equal(t, 1, inner.calls)

	got, err = cache.Resolve(ctx, "http://v1")
	require.NoError(t, err)
	assert.Equal(t, inner.data, got)
	assert.Equal(t, 1, inner.calls, "second resolve must be served from cache")
}

func TestResolveExpiredEntryHitsUpstream(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})

	inner := &stubProvider{data: provider.VideoData{URL: "http://v1", Title: "first"}}
	cache := New(rc, inner, time.Minute, slog.Default())

	ctx := context.Background()

	_, err = cache.Resolve(ctx, "http://v1")
	require.NoError(t, err)

	s.FastForward(2 * time.Minute)

	_, err = cache.Resolve(ctx, "http://v1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestResolveUpstreamErrorNotCached(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})

	inner := &stubProvider{err: provider.ErrVideoNotFound}
	cache := New(rc, inner, time.Minute, slog.Default())

	_, err = cache.Resolve(context.Background(), "http://missing")
	assert.ErrorIs(t, err, provider.ErrVideoNotFound)
	assert.False(t, s.Exists("video-data:http://missing"))
}

func TestResolveDegradesWhenRedisDown(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	s.Close()

	inner := &stubProvider{data: provider.VideoData{URL: "http://v1", Title: "first"}}
	cache := New(rc, inner, time.Minute, slog.Default())

	got, err := cache.Resolve(context.Background(), "http://v1")
	require.NoError(t, err)
	assert.Equal(t, inner.data, got)
	assert.Equal(t, 1, inner.calls)
}
