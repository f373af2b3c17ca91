// Package window stores timestamped set members for the sliding-window
// trackers. A set maps a member to the time it was last written; ranges are
// read in ascending time order.
package window

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidWrite = errors.New("window write needs a set and a member")

// Entry is one member of a set with its timestamp.
type Entry struct {
	Member string
	At     time.Time
}

// Write inserts a member. Overwrite moves an existing member to the new
// time; otherwise an existing member keeps its original time.
type Write struct {
	Set       string
	Member    string
	At        time.Time
	Overwrite bool
}

// Store is implemented by MemoryStore and RedisStore. Times are kept at
// millisecond precision.
type Store interface {
	// Write applies all writes or none of them.
	Write(ctx context.Context, writes ...Write) error
	// Prune removes members with At <= cutoff.
	Prune(ctx context.Context, set string, cutoff time.Time) error
	// Range returns members with after < At <= upTo, oldest first. A zero
	// bound is unbounded on that side.
	Range(ctx context.Context, set string, after, upTo time.Time) ([]Entry, error)
}

func validate(writes []Write) error {
	for _, w := range writes {
		if w.Set == "" || w.Member == "" {
			return ErrInvalidWrite
		}
	}
	return nil
}

func truncate(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
