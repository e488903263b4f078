package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/redis/go-redis/v9"
)

func setupCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	tracks := []models.Track{
		{ID: "yt_1", Title: "Şımarık", Artist: "Tarkan", Platform: models.PlatformYouTube, ImageURL: models.Ptr("http://img")},
		{ID: "yt_2", Title: "Kuzu Kuzu", Artist: "Tarkan", Platform: models.PlatformYouTube},
	}

	t.Run("Get returns a miss for unknown keys", func(t *testing.T) {
		c, _ := setupCache(t)
		got, ok, err := c.Get(ctx, "melodi:search:youtube:none")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok || got != nil {
			t.Errorf("expected miss, got %v (%v)", got, ok)
		}
	})

	t.Run("Set then Get round-trips tracks", func(t *testing.T) {
		c, mr := setupCache(t)
		key := "melodi:search:youtube:tarkan"
		if err := c.Set(ctx, key, tracks, time.Minute); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, ok, err := c.Get(ctx, key)
		if err != nil || !ok {
			t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
		}
		if len(got) != 2 || got[0].ID != "yt_1" || got[0].ImageURL == nil || *got[0].ImageURL != "http://img" {
			t.Errorf("unexpected cached tracks: %+v", got)
		}
		if ttl := mr.TTL(key); ttl != time.Minute {
			t.Errorf("expected TTL 1m, got %v", ttl)
		}
	})

	t.Run("Entries expire", func(t *testing.T) {
		c, mr := setupCache(t)
		key := "melodi:search:spotify:x"
		if err := c.Set(ctx, key, tracks, time.Second); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		mr.FastForward(2 * time.Second)

		if _, ok, _ := c.Get(ctx, key); ok {
			t.Error("expected entry to expire")
		}
	})

	t.Run("Get fails on corrupt entries", func(t *testing.T) {
		c, mr := setupCache(t)
		mr.Set("bad", "{not json")
		if _, _, err := c.Get(ctx, "bad"); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("Errors surface when the server is gone", func(t *testing.T) {
		c, mr := setupCache(t)
		mr.Close()
		if _, _, err := c.Get(ctx, "k"); err == nil {
			t.Error("expected error from closed server")
		}
		if err := c.Ping(ctx); err == nil {
			t.Error("expected ping error from closed server")
		}
	})

	t.Run("NewRedisCache", func(t *testing.T) {
		_, mr := setupCache(t)
		c, err := NewRedisCache("redis://" + mr.Addr() + "/0")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer c.Close()
		if err := c.Ping(ctx); err != nil {
			t.Errorf("expected ping to succeed, got %v", err)
		}

		if _, err := NewRedisCache("http://nope"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
