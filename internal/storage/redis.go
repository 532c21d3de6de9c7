package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/yourname/nutritracker/internal"
)

type RedisStorage struct {
	client *redis.Client
	prefix string
	logger internal.Logger
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func NewRedisStorage(ctx context.Context, opts RedisOptions, logger internal.Logger) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Errorf("failed to connect to redis at %s: %v", opts.Addr, err)
		_ = client.Close()
		return nil, err
	}
	return &RedisStorage{client: client, prefix: opts.Prefix, logger: logger}, nil
}

func (r *RedisStorage) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		r.logger.Errorf("failed to read key %s: %v", key, err)
		return false, err
	}
	return true, decode(raw, dst)
}

func (r *RedisStorage) Set(ctx context.Context, key string, value any) error {
	b, err := encode(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+key, b, 0).Err(); err != nil {
		r.logger.Errorf("failed to write key %s: %v", key, err)
		return err
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.logger.Errorf("failed to delete key %s: %v", key, err)
		return err
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

var _ Store = (*RedisStorage)(nil)
