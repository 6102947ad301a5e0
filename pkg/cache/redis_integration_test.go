package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testRedis(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("APISCOUT_REDIS_ADDR")
	if addr == "" {
		t.Skip("APISCOUT_REDIS_ADDR not set")
	}
	c, err := NewRedisCache(context.Background(), RedisOptions{
		Addr:   addr,
		Prefix: "apiscout-test:" + uuid.NewString() + ":",
	})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() {
		_, _ = c.Clear(context.Background())
		c.Close()
	})
	return c
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := testRedis(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get after Delete = %v, %v; want miss", hit, err)
	}
}

func TestRedisCacheClear(t *testing.T) {
	ctx := context.Background()
	c := testRedis(t)

	for _, k := range []string{"a", "b"} {
		if err := c.Set(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 2 {
		t.Errorf("Clear removed %d keys, want 2", n)
	}
}

func TestNewRedisCacheEmptyAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisOptions{}); err == nil {
		t.Error("NewRedisCache with empty addr should fail")
	}
}
