package alerts

import (
	"bytes"
	"context"
	"encoding/csv"
	"sync"
	"testing"
	"time"

	"scamshield/internal/logging"
	"scamshield/internal/repositories"
	"scamshield/internal/repositories/window"
	"scamshield/internal/services/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC)

type published struct {
	key  string
	body interface{}
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *recordingPublisher) Publish(_ context.Context, key string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{key, body})
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.msgs {
		out = append(out, m.key)
	}
	return out
}

type overrideMetrics struct {
	risk.NoopMetricsCollector
	overrides []string
}

func (m *overrideMetrics) RecordOverride(s risk.OverrideSource, a risk.Action) {
	m.overrides = append(m.overrides, string(s)+":"+string(a))
}

type fixture struct {
	svc     *Service
	repo    *repositories.MemoryAssessmentRepository
	pub     *recordingPublisher
	metrics *overrideMetrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	engine, err := risk.NewEngine(risk.DefaultConfig(), window.NewMemoryStore(), risk.WithLogger(logging.Discard()))
	require.NoError(t, err)

	f := fixture{
		repo:    repositories.NewMemoryAssessmentRepository(),
		pub:     &recordingPublisher{},
		metrics: &overrideMetrics{},
	}
	f.svc = NewService(f.repo, engine, f.pub, f.metrics, logging.Discard())
	f.svc.now = func() time.Time { return base }
	return f
}

func event(dst string, amount float64, at time.Time) risk.PaymentEvent {
	return risk.PaymentEvent{
		ID:              "ev-" + dst,
		Timestamp:       at,
		SourceIBAN:      "RO11SRC",
		DestinationIBAN: dst,
		Amount:          amount,
		Currency:        "ron",
		Channel:         risk.ChannelWeb,
	}
}

func assessment(action risk.Action, score float64, reasons ...string) *risk.Assessment {
	return &risk.Assessment{EventID: "e", Action: action, Score: score, Reasons: reasons, EvaluatedAt: base}
}

func (f fixture) record(t *testing.T, dst string, amount float64, at time.Time, a *risk.Assessment) uint {
	t.Helper()
	id, err := f.svc.Record(context.Background(), event(dst, amount, at), a)
	require.NoError(t, err)
	return id
}

func TestService_Record(t *testing.T) {
	f := newFixture(t)

	id := f.record(t, "RO49MULE", 15000.5, base, assessment(risk.ActionHold, 80, "Very high amount", "MuleRadar risk=74"))
	f.record(t, "RO22OK", 10, base, assessment(risk.ActionAllow, 0))

	tx, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(1500050), tx.AmountCents)
	assert.Equal(t, "RON", tx.Currency)
	assert.Equal(t, "hold", tx.Action)
	assert.Equal(t, "RO11SRC", tx.SrcIBAN())
	assert.Equal(t, []string{"Very high amount", "MuleRadar risk=74"}, []string(tx.RiskReasons))

	assert.Equal(t, []string{"risk.assessment.hold"}, f.pub.keys(), "allow verdicts are not published")
}

func TestService_Record_RejectsUnknownAction(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Record(context.Background(), event("RO22", 1, base), assessment("block", 99))
	assert.ErrorIs(t, err, risk.ErrUnknownAction)
}

func TestService_Record_MissingTimestampUsesEvaluation(t *testing.T) {
	f := newFixture(t)
	id := f.record(t, "RO22", 1, time.Time{}, assessment(risk.ActionWarn, 30))

	tx, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, base, tx.Ts)
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	f.record(t, "RO49MULE01", 100, base.Add(-2*time.Hour), assessment(risk.ActionHold, 70))
	f.record(t, "RO22OK", 100, base, assessment(risk.ActionAllow, 0))
	f.record(t, "RO49MULE02", 100, base, assessment(risk.ActionWarn, 40))

	tests := []struct {
		name   string
		filter Filter
		want   []string
		err    error
	}{
		{name: "defaults", filter: Filter{}, want: []string{"RO49MULE02", "RO49MULE01"}},
		{name: "action is case-insensitive", filter: Filter{Action: "HOLD"}, want: []string{"RO49MULE01"}},
		{name: "since", filter: Filter{Since: "2025-09-06T11:00:00Z"}, want: []string{"RO49MULE02"}},
		{name: "unparseable since is ignored", filter: Filter{Since: "yesterday"}, want: []string{"RO49MULE02", "RO49MULE01"}},
		{name: "destination substring", filter: Filter{DstIBAN: "mule01"}, want: []string{"RO49MULE01"}},
		{name: "allow is not an alert action", filter: Filter{Action: "allow"}, err: ErrInvalidFilter},
		{name: "limit too large", filter: Filter{Limit: 501}, err: ErrInvalidFilter},
		{name: "negative limit", filter: Filter{Limit: -1}, err: ErrInvalidFilter},
		{name: "negative offset", filter: Filter{Offset: -1}, err: ErrInvalidFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.List(context.Background(), tt.filter)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.True(t, IsClientError(err))
				return
			}
			require.NoError(t, err)
			var dsts []string
			for _, a := range got {
				dsts = append(dsts, a.DestinationIBAN)
				assert.Equal(t, "RO11SRC", a.SourceIBAN)
			}
			assert.Equal(t, tt.want, dsts)
		})
	}
}

func TestService_Export(t *testing.T) {
	f := newFixture(t)
	f.record(t, "RO49MULE", 15000, base, assessment(risk.ActionHold, 80, "Very high amount", "Keyword: 'crypto'"))
	f.record(t, "RO22OK", 10, base, assessment(risk.ActionAllow, 0))

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(context.Background(), &buf, Filter{Limit: 1, Offset: 5}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{
		"1", "2025-09-06T12:00:00", "RO11SRC", "RO49MULE", "15000.00", "RON", "web", "hold",
		"Very high amount; Keyword: 'crypto'",
	}, records[1])
}

func TestService_Export_InvalidFilter(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, f.svc.Export(context.Background(), &buf, Filter{Action: "nope"}), ErrInvalidFilter)
	assert.Zero(t, buf.Len())
}

func TestService_Decide(t *testing.T) {
	f := newFixture(t)
	id := f.record(t, "RO49MULE", 100, base, assessment(risk.ActionHold, 80))

	out, err := f.svc.Decide(context.Background(), id, "release")
	require.NoError(t, err)
	assert.Equal(t, Override{ID: id, PreviousAction: risk.ActionHold, NewAction: risk.ActionAllow}, out)

	out, err = f.svc.Decide(context.Background(), id, "Cancel")
	require.NoError(t, err)
	assert.Equal(t, risk.ActionHold, out.NewAction)

	assert.Equal(t, []string{"operator:allow", "operator:hold"}, f.metrics.overrides)
	assert.Contains(t, f.pub.keys(), "risk.override.operator")
}

func TestService_Decide_Errors(t *testing.T) {
	f := newFixture(t)
	id := f.record(t, "RO49MULE", 100, base, assessment(risk.ActionWarn, 40))

	_, err := f.svc.Decide(context.Background(), id, "approve")
	assert.ErrorIs(t, err, risk.ErrInvalidDecision)

	_, err = f.svc.Decide(context.Background(), 999, "release")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	tx, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "warn", tx.Action, "failed decisions leave the action untouched")
	assert.Empty(t, f.metrics.overrides)
}

func TestService_ApplyQuiz(t *testing.T) {
	tests := []struct {
		name    string
		answers risk.QuizAnswers
		score   int
		next    risk.Action
	}{
		{"verified and calm releases", risk.QuizAnswers{VerifiedBeneficiary: true}, 0, risk.ActionAllow},
		{"called by bank warns", risk.QuizAnswers{CalledByBank: true, VerifiedBeneficiary: true}, 20, risk.ActionWarn},
		{"remote access and unverified cancels", risk.QuizAnswers{RemoteAccess: true}, 40, risk.ActionHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := f.record(t, "RO49MULE", 100, base, assessment(risk.ActionHold, 80))

			out, err := f.svc.ApplyQuiz(context.Background(), id, tt.answers)
			require.NoError(t, err)
			assert.Equal(t, risk.ActionHold, out.PreviousAction)
			assert.Equal(t, tt.next, out.NewAction)
			assert.Equal(t, tt.score, out.Score)

			tx, err := f.repo.GetByID(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, string(tt.next), tx.Action)
		})
	}
}

func TestService_ApplyQuiz_UnknownAlert(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ApplyQuiz(context.Background(), 7, risk.QuizAnswers{})
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestService_Stats(t *testing.T) {
	f := newFixture(t)

	empty, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, empty.TotalTx)
	assert.Empty(t, empty.ByAction)

	f.record(t, "A", 1000, base, assessment(risk.ActionHold, 80))
	f.record(t, "B", 250.25, base, assessment(risk.ActionHold, 70))
	f.record(t, "C", 5, base, assessment(risk.ActionAllow, 0))
	f.record(t, "D", 5, base, assessment(risk.ActionWarn, 35))

	st, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.TotalTx)
	assert.Equal(t, map[string]int64{"hold": 2, "allow": 1, "warn": 1}, st.ByAction)
	assert.InDelta(t, 50, st.Percent["hold"], 1e-9)
	assert.InDelta(t, 25, st.Percent["warn"], 1e-9)
	assert.InDelta(t, 1250.25, st.LossesPrevented, 1e-9)
}
