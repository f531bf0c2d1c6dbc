package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "blob:"

// Redis stores each blob as a hash with an expiry.
type Redis struct {
	rc  redis.UniversalClient
	ttl time.Duration
}

func NewRedis(rc redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{rc: rc, ttl: ttl}
}

func (s *Redis) Put(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := newKey(filename)
	k := redisPrefix + key
	_, err := s.rc.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, "filename", filename, "content_type", contentType, "data", data)
		if s.ttl > 0 {
			p.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return key, nil
}

func (s *Redis) Get(ctx context.Context, key string) (Blob, error) {
	vals, err := s.rc.HGetAll(ctx, redisPrefix+key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(vals) == 0) {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, fmt.Errorf("load blob: %w", err)
	}
	return Blob{
		Key:         key,
		Filename:    vals["filename"],
		ContentType: vals["content_type"],
		Data:        []byte(vals["data"]),
	}, nil
}
