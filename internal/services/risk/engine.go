package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"scamshield/internal/repositories/window"
	"scamshield/internal/syncutil"

	"github.com/sourcegraph/conc"
)

const defaultCollaboratorTimeout = 300 * time.Millisecond

// Engine runs the full scoring pipeline for one payment at a time and can
// be shared by any number of concurrent callers.
type Engine struct {
	cfg      Config
	rules    *RuleScorer
	text     *TextSignalScorer
	velocity *VelocityTracker
	mule     *MuleGraphAnalyzer
	blender  *ScoreBlender
	quiz     *QuizReScorer

	payee     PayeeChecker
	watchlist WatchlistLookup
	model     ProbabilityModel
	metrics   MetricsCollector
	logger    *slog.Logger
	now       func() time.Time
	timeout   time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

func WithPayeeChecker(p PayeeChecker) Option {
	return func(e *Engine) { e.payee = p }
}

func WithWatchlist(w WatchlistLookup) Option {
	return func(e *Engine) { e.watchlist = w }
}

func WithModel(m ProbabilityModel) Option {
	return func(e *Engine) { e.model = m }
}

func WithMetrics(m MetricsCollector) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithCollaboratorTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// NewEngine wires the scorers over a shared window store. Collaborators are
// optional; a missing one behaves as "no signal".
func NewEngine(cfg Config, store window.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		panic("window store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		metrics: &NoopMetricsCollector{},
		logger:  slog.Default(),
		now:     time.Now,
		timeout: defaultCollaboratorTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = &NoopMetricsCollector{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	locks := &syncutil.ShardedMutex{}
	e.rules = NewRuleScorer(cfg.Rules)
	e.text = NewTextSignalScorer(cfg.Text)
	e.velocity = NewVelocityTracker(cfg.Velocity, store, locks, e.now)
	e.mule = NewMuleGraphAnalyzer(cfg.Mule, store, locks, e.now)
	e.blender = NewScoreBlender(cfg.Blend)
	e.quiz = NewQuizReScorer(cfg.Quiz)
	return e, nil
}

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// degradations collects the collaborators that fell back during one run.
type degradations struct {
	mu    sync.Mutex
	names []string
}

func (d *degradations) add(name string) {
	d.mu.Lock()
	d.names = append(d.names, name)
	d.mu.Unlock()
}

func (d *degradations) sorted() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := append([]string(nil), d.names...)
	sort.Strings(out)
	return out
}

// Score evaluates a payment. It always returns an assessment: a failing
// collaborator or store degrades to "no signal" and is logged.
func (e *Engine) Score(ctx context.Context, ev PaymentEvent) *Assessment {
	start := e.now()
	f := NewFeatures(ev, start)
	log := e.logger.With("event_id", f.EventID, "dst_iban", f.Destination)

	var (
		deg      degradations
		text     Contribution
		velStats VelocityStats
		mule     MuleStats
		payee    PayeeCheck
		listed   bool
		prob     float64
		probOK   bool
	)
	fallback := func(name string, err error) {
		deg.add(name)
		e.metrics.RecordFallback(name)
		if err != nil {
			log.Warn("collaborator failed, continuing without its signal", "collaborator", name, "error", err)
		}
	}

	var wg conc.WaitGroup
	wg.Go(func() { text = e.text.Score(f.Memo) })
	wg.Go(func() { velStats = e.observeVelocity(ctx, f, fallback) })
	wg.Go(func() { mule = e.observeMule(ctx, f, fallback) })
	wg.Go(func() { payee = e.checkPayee(ctx, f, fallback) })
	wg.Go(func() { listed = e.lookupWatchlist(ctx, f, fallback) })
	wg.Go(func() { prob, probOK = e.predict(ctx, f, fallback) })
	if r := wg.WaitAndRecover(); r != nil {
		log.Error("scoring stage panicked", "panic", r.String())
	}

	onWatchlist := listed || mule.MuleScore >= e.cfg.Mule.WatchlistThreshold
	rules := e.rules.Score(RuleInput{
		Amount:        f.scorableAmount(),
		FirstToPayee:  f.FirstToPayee,
		PayeeMismatch: !payee.Passed(),
		OnWatchlist:   onWatchlist,
	})
	vel := e.velocity.Score(velStats, f.FirstToPayee)

	ruleScore := rules.Score + text.Score + vel.Score
	reasons := make([]string, 0, len(rules.Reasons)+len(text.Reasons)+len(vel.Reasons)+3)
	reasons = append(reasons, rules.Reasons...)
	reasons = append(reasons, text.Reasons...)
	reasons = append(reasons, vel.Reasons...)
	if !payee.Passed() {
		reasons = append(reasons, "CoP: "+payee.Message)
	}
	if mule.MuleScore >= e.cfg.Mule.ReasonThreshold {
		reasons = append(reasons, fmt.Sprintf("MuleRadar risk=%d", mule.MuleScore))
	}

	final, mlReason := e.blender.Blend(ruleScore, prob, probOK)
	if mlReason != "" {
		reasons = append(reasons, mlReason)
	}
	final = clamp(final, 0, 100)
	action, cooloff := e.blender.Action(final)

	a := &Assessment{
		EventID:        f.EventID,
		Score:          final,
		Action:         action,
		Reasons:        dedupe(reasons),
		CooloffMinutes: cooloff,
		EvaluatedAt:    start,
		Signals: Signals{
			PayeeCheck:     payee,
			Watchlisted:    listed,
			OnWatchlist:    onWatchlist,
			MuleScore:      mule.MuleScore,
			Velocity:       velStats,
			RuleScore:      ruleScore,
			TextScore:      text.Score,
			VelocityScore:  vel.Score,
			Probability:    prob,
			HasProbability: probOK,
			Degraded:       deg.sorted(),
		},
	}

	e.metrics.RecordAssessment(action, e.now().Sub(start))
	e.metrics.RecordMuleScore(mule.MuleScore)
	log.Info("payment scored", "action", action, "score", final, "reasons", len(a.Reasons))
	return a
}

func (e *Engine) observeVelocity(ctx context.Context, f Features, fallback func(string, error)) VelocityStats {
	stats, err := e.velocity.Observe(ctx, f)
	if err != nil {
		fallback(CollaboratorVelocity, err)
	}
	return stats
}

func (e *Engine) observeMule(ctx context.Context, f Features, fallback func(string, error)) MuleStats {
	if f.Destination == "" {
		return MuleStats{}
	}
	if f.Source != "" {
		if err := e.mule.Record(ctx, f); err != nil {
			fallback(CollaboratorMule, err)
		}
	}
	stats, err := e.mule.StatsAt(ctx, f.Destination, e.cfg.Mule.ScoringWindow, f.At)
	if err != nil {
		fallback(CollaboratorMule, err)
		return MuleStats{IBAN: f.Destination}
	}
	return stats
}

func (e *Engine) checkPayee(ctx context.Context, f Features, fallback func(string, error)) PayeeCheck {
	unknown := PayeeCheck{Status: PayeeUnknown, Message: "No data"}
	if e.payee == nil {
		return unknown
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	res, err := e.payee.CheckPayee(ctx, f.Destination, f.Memo)
	if err != nil {
		fallback(CollaboratorPayeeCheck, err)
		return PayeeCheck{Status: PayeeUnknown, Message: "Unavailable"}
	}
	return res
}

func (e *Engine) lookupWatchlist(ctx context.Context, f Features, fallback func(string, error)) bool {
	if e.watchlist == nil || f.Destination == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	listed, err := e.watchlist.Contains(ctx, f.Destination)
	if err != nil {
		fallback(CollaboratorWatchlist, err)
		return false
	}
	return listed
}

func (e *Engine) predict(ctx context.Context, f Features, fallback func(string, error)) (float64, bool) {
	if e.model == nil {
		return 0, false
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	p, ok := e.model.Predict(ctx, f)
	if !ok {
		fallback(CollaboratorModel, nil)
		return 0, false
	}
	return p, true
}

// MuleStats returns an on-demand snapshot for one account.
func (e *Engine) MuleStats(ctx context.Context, iban string, hours int) (MuleStats, error) {
	return e.mule.Stats(ctx, iban, hours)
}

// TopSuspects ranks known destinations by mule score.
func (e *Engine) TopSuspects(ctx context.Context, hours, limit int) ([]MuleStats, error) {
	return e.mule.TopSuspects(ctx, hours, limit)
}

// VelocityStats reads a source account's current window without recording.
func (e *Engine) VelocityStats(ctx context.Context, source string) (VelocityStats, error) {
	return e.velocity.Stats(ctx, source, e.now())
}

// ScoreQuiz scores questionnaire answers.
func (e *Engine) ScoreQuiz(a QuizAnswers) QuizResult {
	return e.quiz.Score(a)
}

func dedupe(reasons []string) []string {
	seen := make(map[string]struct{}, len(reasons))
	out := reasons[:0]
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
