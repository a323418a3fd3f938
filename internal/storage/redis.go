package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter stores each namespace as a hash: field = record id,
// value = JSON record.
type RedisAdapter struct {
	client *redis.Client
	prefix string
}

func NewRedisAdapter(client *redis.Client, prefix string) (*RedisAdapter, error) {
	if client == nil {
		return nil, errors.New("storage: nil redis client")
	}
	if prefix == "" {
		prefix = "todos"
	}
	return &RedisAdapter{client: client, prefix: prefix}, nil
}

func OpenRedis(ctx context.Context, url string) (*RedisAdapter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisAdapter(client, "")
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}

func (r *RedisAdapter) key(namespace string) string {
	return r.prefix + ":" + namespace
}

func (r *RedisAdapter) ReadAll(ctx context.Context, namespace string) ([]Record, error) {
	values, err := r.client.HGetAll(ctx, r.key(namespace)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(values))
	for id, raw := range values {
		rec, decodeErr := decodeRecord([]byte(raw))
		if decodeErr != nil {
			return nil, fmt.Errorf("decode record %s: %w", id, decodeErr)
		}
		rec.ID = id
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (r *RedisAdapter) WriteOne(ctx context.Context, namespace, id string, rec Record) error {
	rec.ID = id
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.key(namespace), id, payload).Err()
}

func (r *RedisAdapter) DeleteOne(ctx context.Context, namespace, id string) error {
	n, err := r.client.HDel(ctx, r.key(namespace), id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
