package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach a Redis server.
type RedisConfig struct {
	// Mode is "single" or "sentinel".
	Mode       string
	Address    string // comma-separated sentinel addresses in sentinel mode
	Password   string
	DB         int
	MasterName string

	// Prefix namespaces every key, e.g. "invitations:".
	Prefix string

	// TTL bounds how long an entry lives. Zero keeps entries until evicted.
	TTL time.Duration

	DialTimeout time.Duration
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (redis.UniversalClient, error) {
	var client redis.UniversalClient
	switch cfg.Mode {
	case "", "single":
		client = redis.NewClient(&redis.Options{
			Addr:        cfg.Address,
			Password:    cfg.Password,
			DB:          cfg.DB,
			DialTimeout: cfg.DialTimeout,
		})
	case "sentinel":
		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    cfg.MasterName,
			SentinelAddrs: strings.Split(cfg.Address, ","),
			Password:      cfg.Password,
			DB:            cfg.DB,
			DialTimeout:   cfg.DialTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown redis mode %q", cfg.Mode)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return client, nil
}

// Redis is a shared cache backed by a Redis server.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis wraps client. prefix and ttl come from cfg.
func NewRedis(client redis.UniversalClient, cfg RedisConfig) *Redis {
	return &Redis{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
}

func (r *Redis) key(k Key) string {
	return r.prefix + k.String()
}

// Get returns the value for the given key. redis.Nil is a miss.
func (r *Redis) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set stores value under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key Key, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
}

// Delete removes keys in one DEL.
func (r *Redis) Delete(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = r.key(k)
	}
	return r.client.Del(ctx, names...).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
