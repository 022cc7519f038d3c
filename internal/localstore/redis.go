package localstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// maxUpdateRetries bounds optimistic WATCH retries of Update.
const maxUpdateRetries = 8

// unlockScript deletes the lock only while it still carries our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions configures the Redis store.
type RedisOptions struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys (e.g., "vitrine:device:")
	Prefix string

	// TTL expires device keys after inactivity. Zero keeps them forever.
	TTL time.Duration

	PoolSize       int
	ConnectTimeout time.Duration
}

// Redis is a Store shared by every instance behind the same Redis.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects and pings Redis.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}

	client := redis.NewClient(redisOpts)

	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("[LocalStore] Connected to Redis", "addr", redisOpts.Addr, "prefix", opts.Prefix)
	return &Redis{client: client, prefix: opts.Prefix, ttl: opts.TTL}, nil
}

// Scope returns the storage of deviceID.
func (r *Redis) Scope(deviceID string) Storage {
	return &redisScope{r: r, base: r.prefix + deviceID + ":"}
}

// Ping reports whether Redis answers.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

type redisScope struct {
	r    *Redis
	base string
}

func (s *redisScope) Get(ctx context.Context, key string) (string, error) {
	value, err := s.r.client.Get(ctx, s.base+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, nil
}

func (s *redisScope) Set(ctx context.Context, key, value string) error {
	if err := s.r.client.Set(ctx, s.base+key, value, s.r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *redisScope) Remove(ctx context.Context, key string) error {
	if err := s.r.client.Del(ctx, s.base+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Update runs fn inside WATCH/MULTI and retries when another writer got in between.
func (s *redisScope) Update(ctx context.Context, key string, fn UpdateFunc) error {
	fullKey := s.base + key

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Result()
		exists := true
		if errors.Is(err, redis.Nil) {
			exists = false
			err = nil
		}
		if err != nil {
			return err
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, next, s.r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.r.client.Watch(ctx, txf, fullKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: too much contention", key)
}

func (s *redisScope) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	lockKey := s.base + "lock:" + name
	token := uuid.NewString()

	acquired, err := s.r.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !acquired {
		return nil, false, nil
	}

	unlock := func() {
		// The caller's context may already be done.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(releaseCtx, s.r.client, []string{lockKey}, token).Err(); err != nil {
			slog.Warn("[LocalStore] Failed to release lock", "lock", name, "error", err)
		}
	}
	return unlock, true, nil
}
