package risk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"scamshield/internal/logging"
	"scamshield/internal/repositories/window"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWatchlist struct {
	mock.Mock
}

func (m *MockWatchlist) Contains(ctx context.Context, iban string) (bool, error) {
	args := m.Called(ctx, iban)
	return args.Bool(0), args.Error(1)
}

type stubPayee struct {
	res PayeeCheck
	err error
}

func (s stubPayee) CheckPayee(context.Context, string, string) (PayeeCheck, error) {
	return s.res, s.err
}

type stubModel struct {
	p  float64
	ok bool
}

func (s stubModel) Predict(context.Context, Features) (float64, bool) {
	return s.p, s.ok
}

type countingMetrics struct {
	NoopMetricsCollector
	mu        sync.Mutex
	fallbacks map[string]int
	actions   map[Action]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{fallbacks: map[string]int{}, actions: map[Action]int{}}
}

func (c *countingMetrics) RecordFallback(name string) {
	c.mu.Lock()
	c.fallbacks[name]++
	c.mu.Unlock()
}

func (c *countingMetrics) RecordAssessment(a Action, _ time.Duration) {
	c.mu.Lock()
	c.actions[a]++
	c.mu.Unlock()
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock(base)), WithLogger(logging.Discard())}, opts...)
	e, err := NewEngine(DefaultConfig(), window.NewMemoryStore(), opts...)
	require.NoError(t, err)
	return e
}

func event(id, src, dst string, amount float64, at time.Time) PaymentEvent {
	return PaymentEvent{
		ID:              id,
		Timestamp:       at,
		SourceIBAN:      src,
		DestinationIBAN: dst,
		Amount:          amount,
		Currency:        "RON",
		Channel:         ChannelMobile,
	}
}

// seedInbound sends n small payments from distinct sources to dst.
func seedInbound(t *testing.T, e *Engine, dst string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		at := base.Add(-time.Duration(n-i) * time.Minute)
		e.Score(context.Background(), event(fmt.Sprintf("seed-%s-%d", dst, i), fmt.Sprintf("RO%02dSEED", i), dst, 100, at))
	}
}

func TestEngine_Score_MuleDestinationHeld(t *testing.T) {
	e := newTestEngine(t)
	seedInbound(t, e, "RO49MULE", 6)

	ev := event("final", "RO11CUSTOMER", "RO49MULE", 15000, base)
	ev.FirstToPayee = true
	ev.Memo = "urgent transfer to crypto exchange"

	a := e.Score(context.Background(), ev)

	assert.Equal(t, ActionHold, a.Action)
	assert.InDelta(t, 80, a.Score, 1e-9)
	assert.Equal(t, 30, a.CooloffMinutes)
	assert.Equal(t, []string{
		"Very high amount",
		"First payment to beneficiary",
		"Keyword: 'crypto exchange'",
		"Keyword: 'urgent transfer'",
		"Keyword: 'crypto'",
		"Keyword: 'urgent'",
		"Keyword: 'exchange'",
		"MuleRadar risk=74",
	}, a.Reasons)
	assert.Equal(t, 74, a.Signals.MuleScore)
	assert.False(t, a.Signals.OnWatchlist)
	assert.Equal(t, 1, a.Signals.Velocity.DistinctPayees)
	assert.Empty(t, a.Signals.Degraded)
	assert.Equal(t, "final", a.EventID)
}

func TestEngine_Score_BenignPaymentAllowed(t *testing.T) {
	e := newTestEngine(t)

	a := e.Score(context.Background(), event("", "RO11A", "RO22B", 42.5, base))

	assert.Equal(t, ActionAllow, a.Action)
	assert.Zero(t, a.Score)
	assert.Zero(t, a.CooloffMinutes)
	assert.Empty(t, a.Reasons)
	assert.NotEmpty(t, a.EventID, "missing IDs are generated")
}

func TestEngine_Score_ModelBlend(t *testing.T) {
	e := newTestEngine(t, WithModel(stubModel{p: 0.9, ok: true}))

	ev := event("e1", "RO11A", "RO22B", 12000, base)
	ev.FirstToPayee = true
	a := e.Score(context.Background(), ev)

	// rule score 50, blended 0.6*50 + 0.4*90
	assert.InDelta(t, 66, a.Score, 1e-9)
	assert.Equal(t, ActionHold, a.Action)
	assert.Contains(t, a.Reasons, "ML: p_scam=0.90 (+36.0)")
	assert.True(t, a.Signals.HasProbability)
	assert.InDelta(t, 50, a.Signals.RuleScore, 1e-9)
}

func TestEngine_Score_PayeeMismatch(t *testing.T) {
	e := newTestEngine(t, WithPayeeChecker(stubPayee{res: PayeeCheck{Status: PayeeMismatch, Message: "Mismatch vs 'John Doe Investments SRL'"}}))

	a := e.Score(context.Background(), event("e1", "RO11A", "RO22B", 100, base))

	assert.InDelta(t, 20, a.Score, 1e-9)
	assert.Equal(t, ActionAllow, a.Action)
	assert.Equal(t, []string{
		"Name/IBAN mismatch (simulated CoP)",
		"CoP: Mismatch vs 'John Doe Investments SRL'",
	}, a.Reasons)
}

func TestEngine_Score_WatchlistReasonAppearsOnce(t *testing.T) {
	wl := new(MockWatchlist)
	wl.On("Contains", mock.Anything, "RO49MULE").Return(true, nil)

	e := newTestEngine(t, WithWatchlist(wl))
	seedInbound(t, e, "RO49MULE", 9)

	a := e.Score(context.Background(), event("final", "RO11A", "RO49MULE", 100, base))

	// ten distinct senders push the mule score to 80 as well
	assert.Equal(t, 80, a.Signals.MuleScore)
	assert.True(t, a.Signals.Watchlisted)
	count := 0
	for _, r := range a.Reasons {
		if r == ReasonWatchlist {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, ActionWarn, a.Action)
	wl.AssertExpectations(t)
}

func TestEngine_Score_CollaboratorFailuresDegrade(t *testing.T) {
	wl := new(MockWatchlist)
	wl.On("Contains", mock.Anything, mock.Anything).Return(false, errors.New("redis timeout"))
	metrics := newCountingMetrics()

	e := newTestEngine(t,
		WithWatchlist(wl),
		WithPayeeChecker(stubPayee{err: errors.New("registry offline")}),
		WithModel(stubModel{ok: false}),
		WithMetrics(metrics),
	)

	ev := event("e1", "RO11A", "RO22B", 6000, base)
	a := e.Score(context.Background(), ev)

	assert.Equal(t, ActionAllow, a.Action)
	assert.InDelta(t, 25, a.Score, 1e-9)
	assert.Equal(t, []string{"High amount"}, a.Reasons)
	assert.Equal(t, []string{CollaboratorModel, CollaboratorPayeeCheck, CollaboratorWatchlist}, a.Signals.Degraded)
	assert.Equal(t, PayeeUnknown, a.Signals.PayeeCheck.Status)
	assert.Equal(t, 1, metrics.fallbacks[CollaboratorWatchlist])
	assert.Equal(t, 1, metrics.actions[ActionAllow])
}

func TestEngine_Score_StoreFailureStillDecides(t *testing.T) {
	e, err := NewEngine(DefaultConfig(), brokenStore{}, WithClock(fixedClock(base)), WithLogger(logging.Discard()))
	require.NoError(t, err)

	ev := event("e1", "RO11A", "RO22B", 11000, base)
	ev.FirstToPayee = true
	a := e.Score(context.Background(), ev)

	assert.Equal(t, ActionWarn, a.Action)
	assert.InDelta(t, 50, a.Score, 1e-9)
	assert.Contains(t, a.Signals.Degraded, CollaboratorVelocity)
	assert.Contains(t, a.Signals.Degraded, CollaboratorMule)
}

func TestEngine_Score_ClampedToHundred(t *testing.T) {
	wl := new(MockWatchlist)
	wl.On("Contains", mock.Anything, mock.Anything).Return(true, nil)
	e := newTestEngine(t,
		WithWatchlist(wl),
		WithPayeeChecker(stubPayee{res: PayeeCheck{Status: PayeeMismatch, Message: "Mismatch vs 'X'"}}),
	)

	ev := event("e1", "RO11A", "RO22B", 50000, base)
	ev.FirstToPayee = true
	ev.Memo = "urgent crypto investment opportunity"
	a := e.Score(context.Background(), ev)

	assert.Equal(t, 100.0, a.Score)
	assert.Greater(t, a.Signals.RuleScore, 100.0)
	assert.Equal(t, ActionHold, a.Action)
}

func TestEngine_Score_MissingTimestampUsesClock(t *testing.T) {
	e := newTestEngine(t)

	ev := event("e1", "RO11A", "RO22B", 10, time.Time{})
	e.Score(context.Background(), ev)

	stats, err := e.VelocityStats(context.Background(), "RO11A")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DistinctPayees)
}

func TestEngine_Score_ConcurrentSendersToOneDestination(t *testing.T) {
	e := newTestEngine(t)
	const senders = 50

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := e.Score(context.Background(), event(fmt.Sprintf("c%d", i), fmt.Sprintf("RO%03dSRC", i), "RO99DST", 10, base))
			assert.NotEmpty(t, a.Action)
		}(i)
	}
	wg.Wait()

	stats, err := e.MuleStats(context.Background(), "RO99DST", 24)
	require.NoError(t, err)
	assert.Equal(t, senders, stats.FanInUnique)
	assert.Equal(t, senders, stats.TxInCount)
	assert.Equal(t, 90, stats.MuleScore)
}

func TestEngine_Score_ConcurrentBurstFromOneSource(t *testing.T) {
	e := newTestEngine(t)
	const payments = 20

	var wg sync.WaitGroup
	for i := 0; i < payments; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.Score(context.Background(), event(fmt.Sprintf("b%d", i), "RO11BURST", fmt.Sprintf("RO%02dDST", i), 1000, base))
		}(i)
	}
	wg.Wait()

	stats, err := e.VelocityStats(context.Background(), "RO11BURST")
	require.NoError(t, err)
	assert.Equal(t, payments, stats.DistinctPayees)
	assert.InDelta(t, 20000, stats.TotalAmount, 1e-9)
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Velocity.Window = 0

	_, err := NewEngine(cfg, window.NewMemoryStore())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
