package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// WatchlistKey is the Redis set holding watchlisted IBANs.
const WatchlistKey = "watchlist:ibans"

// Watchlist is the operator-maintained set of flagged destination IBANs.
// IBANs are stored upper-cased.
type Watchlist interface {
	Add(ctx context.Context, iban string) error
	Remove(ctx context.Context, iban string) error
	List(ctx context.Context) ([]string, error)
	Contains(ctx context.Context, iban string) (bool, error)
}

func normalizeIBAN(iban string) string {
	return strings.ToUpper(strings.TrimSpace(iban))
}

type redisWatchlist struct {
	client redis.UniversalClient
}

func NewRedisWatchlist(client redis.UniversalClient) Watchlist {
	if client == nil {
		panic("redis client is required")
	}
	return &redisWatchlist{client: client}
}

func (w *redisWatchlist) Add(ctx context.Context, iban string) error {
	return w.client.SAdd(ctx, WatchlistKey, normalizeIBAN(iban)).Err()
}

func (w *redisWatchlist) Remove(ctx context.Context, iban string) error {
	return w.client.SRem(ctx, WatchlistKey, normalizeIBAN(iban)).Err()
}

func (w *redisWatchlist) List(ctx context.Context) ([]string, error) {
	ibans, err := w.client.SMembers(ctx, WatchlistKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ibans)
	return ibans, nil
}

func (w *redisWatchlist) Contains(ctx context.Context, iban string) (bool, error) {
	return w.client.SIsMember(ctx, WatchlistKey, normalizeIBAN(iban)).Result()
}

// MemoryWatchlist is used when Redis is unavailable.
type MemoryWatchlist struct {
	mu    sync.RWMutex
	ibans map[string]struct{}
}

func NewMemoryWatchlist(seed ...string) *MemoryWatchlist {
	w := &MemoryWatchlist{ibans: make(map[string]struct{}, len(seed))}
	for _, iban := range seed {
		w.ibans[normalizeIBAN(iban)] = struct{}{}
	}
	return w
}

func (w *MemoryWatchlist) Add(_ context.Context, iban string) error {
	w.mu.Lock()
	w.ibans[normalizeIBAN(iban)] = struct{}{}
	w.mu.Unlock()
	return nil
}

func (w *MemoryWatchlist) Remove(_ context.Context, iban string) error {
	w.mu.Lock()
	delete(w.ibans, normalizeIBAN(iban))
	w.mu.Unlock()
	return nil
}

func (w *MemoryWatchlist) List(_ context.Context) ([]string, error) {
	w.mu.RLock()
	out := make([]string, 0, len(w.ibans))
	for iban := range w.ibans {
		out = append(out, iban)
	}
	w.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (w *MemoryWatchlist) Contains(_ context.Context, iban string) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.ibans[normalizeIBAN(iban)]
	return ok, nil
}
