package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/kawaiicounter/pkg/counter"
)

// DefaultRedisKey is the key holding the snapshot when none is configured.
const DefaultRedisKey = "kawaii:counters"

// Redis persists snapshots as a JSON string under one key.
type Redis struct {
	rdb       *redis.Client
	key       string
	ownClient bool
}

// RedisOption configures a Redis persister.
type RedisOption func(*Redis)

// WithRedisKey overrides DefaultRedisKey.
func WithRedisKey(key string) RedisOption {
	return func(r *Redis) {
		if k := strings.TrimSpace(key); k != "" {
			r.key = k
		}
	}
}

// NewRedis wraps an existing client. The caller keeps ownership of rdb.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, key: DefaultRedisKey}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DialRedis connects to addr and verifies the connection with PING.
// Close on the returned persister closes the client.
func DialRedis(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	r := NewRedis(rdb, opts...)
	r.ownClient = true
	return r, nil
}

// Key returns the redis key holding the snapshot.
func (r *Redis) Key() string { return r.key }

func (r *Redis) Load(ctx context.Context) (*counter.Snapshot, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, counter.ErrNoSnapshot
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	snap, err := counter.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("redis key %s: %w", r.key, err)
	}
	return snap, nil
}

func (r *Redis) Save(ctx context.Context, snap *counter.Snapshot) error {
	data, err := counter.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r.ownClient {
		return r.rdb.Close()
	}
	return nil
}

var _ counter.Persister = (*Redis)(nil)
