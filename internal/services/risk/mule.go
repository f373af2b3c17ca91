package risk

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"scamshield/internal/repositories/window"
	"scamshield/internal/syncutil"
)

// MuleGraphAnalyzer tracks inbound and outbound payment edges per account
// and scores fan-in patterns typical of money mules.
type MuleGraphAnalyzer struct {
	cfg   MuleConfig
	store window.Store
	locks *syncutil.ShardedMutex
	now   func() time.Time
}

func NewMuleGraphAnalyzer(cfg MuleConfig, store window.Store, locks *syncutil.ShardedMutex, now func() time.Time) *MuleGraphAnalyzer {
	if store == nil {
		panic("window store is required")
	}
	if locks == nil {
		locks = &syncutil.ShardedMutex{}
	}
	if now == nil {
		now = time.Now
	}
	return &MuleGraphAnalyzer{cfg: cfg, store: store, locks: locks, now: now}
}

func muleLockKey(iban string) string { return "mule:" + iban }

// Record adds one source-to-destination edge at the event time. Recording
// the same event ID again does not add another raw event.
func (m *MuleGraphAnalyzer) Record(ctx context.Context, f Features) error {
	if f.Source == "" || f.Destination == "" {
		return ErrEmptyAccount
	}

	unlock := m.locks.LockAll(muleLockKey(f.Source), muleLockKey(f.Destination))
	defer unlock()

	err := m.store.Write(ctx,
		window.Write{Set: fmt.Sprintf(muleInSourcesSet, f.Destination), Member: f.Source, At: f.At, Overwrite: true},
		window.Write{Set: fmt.Sprintf(muleInEventsSet, f.Destination), Member: f.EventID + ":" + f.Source, At: f.At},
		window.Write{Set: fmt.Sprintf(muleOutDestsSet, f.Source), Member: f.Destination, At: f.At, Overwrite: true},
		window.Write{Set: fmt.Sprintf(muleOutEventsSet, f.Source), Member: f.EventID + ":" + f.Destination, At: f.At},
		window.Write{Set: muleKnownDestsSet, Member: f.Destination, At: f.At},
	)
	if err != nil {
		return fmt.Errorf("record mule edge: %w", err)
	}

	cutoff := earliest(m.now(), f.At).Add(-m.cfg.Retention)
	return errors.Join(m.prune(ctx, f.Destination, cutoff), m.prune(ctx, f.Source, cutoff))
}

func (m *MuleGraphAnalyzer) prune(ctx context.Context, iban string, cutoff time.Time) error {
	var errs []error
	for _, set := range accountSets(iban) {
		if err := m.store.Prune(ctx, set, cutoff); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func accountSets(iban string) []string {
	return []string{
		fmt.Sprintf(muleInSourcesSet, iban),
		fmt.Sprintf(muleInEventsSet, iban),
		fmt.Sprintf(muleOutDestsSet, iban),
		fmt.Sprintf(muleOutEventsSet, iban),
	}
}

// Stats returns the account's activity over the last `hours` hours.
func (m *MuleGraphAnalyzer) Stats(ctx context.Context, iban string, hours int) (MuleStats, error) {
	span := time.Duration(hours) * time.Hour
	if span < MinStatsWindow || span > MaxStatsWindow {
		return MuleStats{}, ErrInvalidWindow
	}
	if iban == "" {
		return MuleStats{}, ErrEmptyAccount
	}
	return m.StatsAt(ctx, iban, span, m.now())
}

// StatsAt returns the account's activity in (at-span, at].
func (m *MuleGraphAnalyzer) StatsAt(ctx context.Context, iban string, span time.Duration, at time.Time) (MuleStats, error) {
	unlock := m.locks.Lock(muleLockKey(iban))
	defer unlock()

	_ = m.prune(ctx, iban, earliest(m.now(), at).Add(-m.cfg.Retention))

	after := at.Add(-span)
	sets := accountSets(iban)
	entries := make([][]window.Entry, len(sets))
	for i, set := range sets {
		got, err := m.store.Range(ctx, set, after, at)
		if err != nil {
			return MuleStats{IBAN: iban, Hours: int(span / time.Hour)}, err
		}
		entries[i] = got
	}

	stats := MuleStats{
		IBAN:               iban,
		Hours:              int(span / time.Hour),
		FanInUnique:        len(entries[0]),
		TxInCount:          len(entries[1]),
		FanOutUnique:       len(entries[2]),
		TxOutCount:         len(entries[3]),
		RecentSources:      mostRecent(entries[0], m.cfg.RecentLimit),
		RecentDestinations: mostRecent(entries[2], m.cfg.RecentLimit),
	}
	stats.MuleScore = m.Score(stats)
	return stats, nil
}

// Score is a pure function of the counts: capped sub-scores for distinct
// sources, inbound volume and fan-out, capped again at 100.
func (m *MuleGraphAnalyzer) Score(s MuleStats) int {
	score := min(m.cfg.SourceCap, s.FanInUnique*m.cfg.SourceWeight) +
		min(m.cfg.InboundCap, s.TxInCount*m.cfg.InboundWeight) +
		min(m.cfg.FanOutCap, s.FanOutUnique*m.cfg.FanOutWeight)
	return max(0, min(100, score))
}

// TopSuspects ranks every destination seen so far by its current score.
// Zero scores are skipped; ties keep discovery order.
func (m *MuleGraphAnalyzer) TopSuspects(ctx context.Context, hours, limit int) ([]MuleStats, error) {
	span := time.Duration(hours) * time.Hour
	if span < MinStatsWindow || span > MaxStatsWindow {
		return nil, ErrInvalidWindow
	}
	if limit < 1 || limit > MaxTopSuspects {
		return nil, ErrInvalidLimit
	}

	known, err := m.store.Range(ctx, muleKnownDestsSet, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	now := m.now()
	suspects := make([]MuleStats, 0, len(known))
	for _, e := range known {
		stats, err := m.StatsAt(ctx, e.Member, span, now)
		if err != nil {
			return nil, err
		}
		if stats.MuleScore > 0 {
			suspects = append(suspects, stats)
		}
	}

	sort.SliceStable(suspects, func(i, j int) bool {
		return suspects[i].MuleScore > suspects[j].MuleScore
	})
	if len(suspects) > limit {
		suspects = suspects[:limit]
	}
	return suspects, nil
}

func mostRecent(entries []window.Entry, limit int) []string {
	out := make([]string, 0, min(limit, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i].Member)
	}
	return out
}
