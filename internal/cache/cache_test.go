package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pranzo/pricing-api/internal/cache"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c := cache.New(rdb, time.Minute)
	ctx := context.Background()
	key := cache.KeyDeliverySettings("org-1")

	var got payload
	found, err := c.GetJSON(ctx, key, &got)
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if found {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.SetJSON(ctx, key, payload{Name: "zones", Count: 3}); err != nil {
		t.Fatalf("set: %v", err)
	}
	found, err = c.GetJSON(ctx, key, &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || got.Name != "zones" || got.Count != 3 {
		t.Fatalf("unexpected payload %+v found=%v", got, found)
	}

	mr.FastForward(2 * time.Minute)
	found, err = c.GetJSON(ctx, key, &got)
	if err != nil {
		t.Fatalf("get expired: %v", err)
	}
	if found {
		t.Fatal("expected miss after TTL")
	}
}

func TestNoopWhenUnconfigured(t *testing.T) {
	var c *cache.Cache
	ctx := context.Background()
	if err := c.SetJSON(ctx, "k", payload{}); err != nil {
		t.Fatalf("nil cache set: %v", err)
	}
	found, err := c.GetJSON(ctx, "k", &payload{})
	if err != nil || found {
		t.Fatalf("nil cache get found=%v err=%v", found, err)
	}

	disabled := cache.New(nil, 0)
	if err := disabled.SetJSON(ctx, "k", payload{}); err != nil {
		t.Fatalf("disabled cache set: %v", err)
	}
}
