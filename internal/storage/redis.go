package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"prepdeck/internal/logger"
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string        // ex: "localhost:6379"
	Username string        // optional
	Password string        // optional
	DB       int           // Redis DB number
	Timeout  time.Duration // dial/read/write and ping timeout
}

// Redis stores each blob as a plain string key.
type Redis struct {
	client  *redis.Client
	timeout time.Duration
}

// OpenRedis connects and pings once; an unreachable server is an error.
func OpenRedis(opts RedisOptions, log logger.Logger) (*Redis, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis addr is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable at %s: %w", opts.Addr, err)
	}
	log.Info("connected to redis", logger.String("addr", opts.Addr))
	return &Redis{client: client, timeout: opts.Timeout}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}
