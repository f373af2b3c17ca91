package risk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"scamshield/internal/repositories/window"
	"scamshield/internal/syncutil"

	"github.com/shopspring/decimal"
)

// VelocityTracker keeps a sliding window of each source account's recent
// payees and amounts and turns bursts into extra risk.
type VelocityTracker struct {
	cfg   VelocityConfig
	store window.Store
	locks *syncutil.ShardedMutex
	now   func() time.Time
}

func NewVelocityTracker(cfg VelocityConfig, store window.Store, locks *syncutil.ShardedMutex, now func() time.Time) *VelocityTracker {
	if store == nil {
		panic("window store is required")
	}
	if locks == nil {
		locks = &syncutil.ShardedMutex{}
	}
	if now == nil {
		now = time.Now
	}
	return &VelocityTracker{cfg: cfg, store: store, locks: locks, now: now}
}

// Observe records the event and returns the window stats as of the event's
// timestamp, the current event included. A store error on the write path
// still returns whatever stats could be read.
func (t *VelocityTracker) Observe(ctx context.Context, f Features) (VelocityStats, error) {
	if f.Source == "" {
		return VelocityStats{}, ErrEmptyAccount
	}

	unlock := t.locks.Lock("vel:" + f.Source)
	defer unlock()

	payees := fmt.Sprintf(velocityPayeesSet, f.Source)
	amounts := fmt.Sprintf(velocityAmountsSet, f.Source)

	writes := []window.Write{{
		Set:    amounts,
		Member: f.EventID + "|" + decimal.NewFromFloat(f.scorableAmount()).String(),
		At:     f.At,
	}}
	if f.Destination != "" {
		writes = append(writes, window.Write{Set: payees, Member: f.Destination, At: f.At, Overwrite: true})
	}

	var errs []error
	if err := t.store.Write(ctx, writes...); err != nil {
		errs = append(errs, fmt.Errorf("record velocity: %w", err))
	}

	cutoff := earliest(t.now(), f.At).Add(-t.cfg.Retention)
	for _, set := range []string{payees, amounts} {
		if err := t.store.Prune(ctx, set, cutoff); err != nil {
			errs = append(errs, err)
		}
	}

	stats, err := t.statsAt(ctx, f.Source, f.At)
	if err != nil {
		errs = append(errs, err)
	}
	return stats, errors.Join(errs...)
}

// Stats reads the window ending at `at` without recording anything.
func (t *VelocityTracker) Stats(ctx context.Context, source string, at time.Time) (VelocityStats, error) {
	if source == "" {
		return VelocityStats{}, ErrEmptyAccount
	}
	unlock := t.locks.Lock("vel:" + source)
	defer unlock()
	return t.statsAt(ctx, source, at)
}

func (t *VelocityTracker) statsAt(ctx context.Context, source string, at time.Time) (VelocityStats, error) {
	after := at.Add(-t.cfg.Window)

	payees, err := t.store.Range(ctx, fmt.Sprintf(velocityPayeesSet, source), after, at)
	if err != nil {
		return VelocityStats{}, err
	}
	amounts, err := t.store.Range(ctx, fmt.Sprintf(velocityAmountsSet, source), after, at)
	if err != nil {
		return VelocityStats{DistinctPayees: len(payees)}, err
	}

	total := decimal.Zero
	for _, e := range amounts {
		i := strings.LastIndexByte(e.Member, '|')
		if i < 0 {
			continue
		}
		amt, err := decimal.NewFromString(e.Member[i+1:])
		if err != nil {
			continue
		}
		total = total.Add(amt)
	}

	return VelocityStats{
		DistinctPayees: len(payees),
		TotalAmount:    total.InexactFloat64(),
	}, nil
}

// Score converts window stats into a capped contribution.
func (t *VelocityTracker) Score(stats VelocityStats, firstToPayee bool) Contribution {
	var c Contribution
	span := humanDuration(t.cfg.Window)

	tooManyPayees := stats.DistinctPayees > t.cfg.MaxNewPayees
	if tooManyPayees {
		excess := float64(stats.DistinctPayees - t.cfg.MaxNewPayees)
		bump := math.Min(t.cfg.PayeeBasePenalty+t.cfg.PayeeStepPenalty*excess, t.cfg.PayeePenaltyCap)
		c.add(bump, fmt.Sprintf("Velocity: %d new payees in %s (+%s)", stats.DistinctPayees, span, points(bump)))
	}

	if stats.TotalAmount > t.cfg.MaxTotalAmount {
		over := stats.TotalAmount - t.cfg.MaxTotalAmount
		steps := math.Min(math.Floor(over/t.cfg.AmountStepSize), t.cfg.AmountMaxSteps)
		bump := t.cfg.AmountBasePenalty + steps
		c.add(bump, fmt.Sprintf("Velocity: %.0f total in %s (+%s)", stats.TotalAmount, span, points(bump)))
	}

	heavyLoad := stats.TotalAmount > t.cfg.MaxTotalAmount*t.cfg.FirstToPayeeLoadRatio
	if firstToPayee && (tooManyPayees || heavyLoad) {
		c.add(t.cfg.FirstToPayeePenalty, fmt.Sprintf("Velocity: first-to-payee context (+%s)", points(t.cfg.FirstToPayeePenalty)))
	}

	c.Score = math.Min(c.Score, t.cfg.Cap)
	return c
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func points(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// humanDuration renders whole hours as "1h" and anything else in minutes.
func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return fmt.Sprintf("%dm", int(d/time.Minute))
}
