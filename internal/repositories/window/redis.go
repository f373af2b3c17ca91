package window

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each set in a sorted set scored by Unix milliseconds.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore namespaces every key under prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if client == nil {
		panic("redis client is required")
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(set string) string {
	return s.prefix + set
}

func (s *RedisStore) Write(ctx context.Context, writes ...Write) error {
	if err := validate(writes); err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			z := redis.Z{Score: float64(w.At.UnixMilli()), Member: w.Member}
			if w.Overwrite {
				pipe.ZAdd(ctx, s.key(w.Set), z)
			} else {
				pipe.ZAddNX(ctx, s.key(w.Set), z)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("window write: %w", err)
	}
	return nil
}

func (s *RedisStore) Prune(ctx context.Context, set string, cutoff time.Time) error {
	upper := strconv.FormatInt(cutoff.UnixMilli(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.key(set), "-inf", upper).Err(); err != nil {
		return fmt.Errorf("window prune %s: %w", set, err)
	}
	return nil
}

func (s *RedisStore) Range(ctx context.Context, set string, after, upTo time.Time) ([]Entry, error) {
	by := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if !after.IsZero() {
		by.Min = "(" + strconv.FormatInt(after.UnixMilli(), 10)
	}
	if !upTo.IsZero() {
		by.Max = strconv.FormatInt(upTo.UnixMilli(), 10)
	}

	zs, err := s.client.ZRangeByScoreWithScores(ctx, s.key(set), by).Result()
	if err != nil {
		return nil, fmt.Errorf("window range %s: %w", set, err)
	}

	entries := make([]Entry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Member: member, At: time.UnixMilli(int64(z.Score)).UTC()})
	}
	return entries, nil
}
