//go:build integration

package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("KAWAII_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("KAWAII_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}

	exerciseCache(t, NewRedisCache(rdb, fmt.Sprintf("kawaii:test:%d:", time.Now().UnixNano())))
}
