package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"inventory/internal/log"
)

// Runs only against a real server, e.g. REDIS_ADDR=localhost:6379.
func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := NewRedisClient(ctx, addr, os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	type payload struct {
		Name string `json:"name"`
	}
	c := NewRedisCache[[]payload](client, "inventory-test", time.Minute, log.Discard())
	c.Purge(ctx)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss on empty namespace")
	}
	c.Set(ctx, "k", []payload{{Name: "Office"}})
	got, ok := c.Get(ctx, "k")
	if !ok || len(got) != 1 || got[0].Name != "Office" {
		t.Fatalf("unexpected cached value %+v %v", got, ok)
	}

	c.Set(ctx, "k2", nil)
	c.Purge(ctx)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after purge")
	}
}
