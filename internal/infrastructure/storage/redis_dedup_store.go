package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizfeed/internal/config"
	"quizfeed/internal/domain"
	"quizfeed/internal/ports"
)

const (
	redisConnectTimeout = 5 * time.Second
	defaultKeyPrefix    = "quizfeed:processed"
)

// ErrEmptyAddress is returned when the Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// NewRedisClient builds a client and verifies it with a ping.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisDedupStore keeps one hash per processed identifier.
type RedisDedupStore struct {
	client redis.Cmdable
	prefix string
}

var _ ports.DedupStore = (*RedisDedupStore)(nil)

// NewRedisDedupStore wraps a Redis client; an empty prefix falls back to the default.
func NewRedisDedupStore(client redis.Cmdable, prefix string) *RedisDedupStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisDedupStore{client: client, prefix: prefix}
}

func (s *RedisDedupStore) key(identifier string) string {
	return s.prefix + ":" + identifier
}

// Contains reports whether identifier has a processed marker.
func (s *RedisDedupStore) Contains(ctx context.Context, identifier string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(identifier)).Result()
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", identifier, err)
	}
	return n > 0, nil
}

// MarkProcessed writes the marker for identifier.
func (s *RedisDedupStore) MarkProcessed(ctx context.Context, marker domain.ProcessedMarker) error {
	err := s.client.HSet(ctx, s.key(marker.Identifier),
		"url", marker.Identifier,
		"processed_at", marker.ProcessedAt.UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		return fmt.Errorf("mark %s: %w", marker.Identifier, err)
	}
	return nil
}

// Marker loads a stored marker, reporting false when none exists.
func (s *RedisDedupStore) Marker(ctx context.Context, identifier string) (domain.ProcessedMarker, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(identifier)).Result()
	if err != nil {
		return domain.ProcessedMarker{}, false, fmt.Errorf("load %s: %w", identifier, err)
	}
	if len(fields) == 0 {
		return domain.ProcessedMarker{}, false, nil
	}

	processedAt, err := time.Parse(time.RFC3339, fields["processed_at"])
	if err != nil {
		return domain.ProcessedMarker{}, false, fmt.Errorf("parse processed_at for %s: %w", identifier, err)
	}
	return domain.ProcessedMarker{Identifier: fields["url"], ProcessedAt: processedAt}, true, nil
}
