// Package alerts owns the audit trail of scored payments: it persists every
// assessment, lets operators list and export alerts, and applies operator
// and questionnaire overrides through the decision state machine.
package alerts

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"scamshield/internal/models"
	"scamshield/internal/repositories"
	"scamshield/internal/services/events"
	"scamshield/internal/services/risk"
)

type Service struct {
	repo      repositories.AssessmentRepository
	quiz      QuizScorer
	publisher events.Publisher
	metrics   risk.MetricsCollector
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	repo repositories.AssessmentRepository,
	quiz QuizScorer,
	publisher events.Publisher,
	metrics risk.MetricsCollector,
	logger *slog.Logger,
) *Service {
	if repo == nil {
		panic("assessment repository is required")
	}
	if quiz == nil {
		panic("quiz scorer is required")
	}
	if publisher == nil {
		publisher = &events.Fallback{Logger: logger}
	}
	if metrics == nil {
		metrics = &risk.NoopMetricsCollector{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		quiz:      quiz,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Record persists the audit record of a scored payment and announces warn
// and hold verdicts.
func (s *Service) Record(ctx context.Context, ev risk.PaymentEvent, a *risk.Assessment) (uint, error) {
	action, err := risk.Transition(risk.ActionPending, a.Action, risk.OverrideInitial)
	if err != nil {
		return 0, err
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = a.EvaluatedAt
	}
	tx := &models.Transaction{
		EventID:      a.EventID,
		Ts:           ts.UTC(),
		DstIBAN:      strings.TrimSpace(ev.DestinationIBAN),
		AmountCents:  models.ToMinorUnits(ev.Amount),
		Currency:     strings.ToUpper(ev.Currency),
		Channel:      string(ev.Channel),
		FirstToPayee: ev.FirstToPayee,
		DeviceFP:     ev.DeviceFingerprint,
		RiskScore:    a.Score,
		RiskReasons:  append([]string(nil), a.Reasons...),
		Action:       string(action),
		Signals:      models.SignalsJSON(a.Signals),
	}
	if err := s.repo.Create(ctx, tx, strings.TrimSpace(ev.SourceIBAN)); err != nil {
		return 0, fmt.Errorf("record assessment: %w", err)
	}

	if action != risk.ActionAllow {
		s.publish(ctx, events.AssessmentRoutingKey(action), events.AssessmentEvent{
			AlertID:         tx.ID,
			EventID:         a.EventID,
			Action:          action,
			RiskScore:       a.Score,
			Reasons:         tx.RiskReasons,
			DestinationIBAN: tx.DstIBAN,
			OccurredAt:      s.now().UTC(),
		})
	}
	return tx.ID, nil
}

func (s *Service) resolve(f Filter) (repositories.AlertFilter, error) {
	out := repositories.AlertFilter{
		DstIBAN: strings.TrimSpace(f.DstIBAN),
		Limit:   f.Limit,
		Offset:  f.Offset,
	}

	switch a := risk.Action(strings.ToLower(strings.TrimSpace(f.Action))); a {
	case "":
	case risk.ActionWarn, risk.ActionHold:
		out.Action = string(a)
	default:
		return out, fmt.Errorf("%w: action must be warn or hold", ErrInvalidFilter)
	}

	if out.Limit == 0 {
		out.Limit = DefaultLimit
	}
	if out.Limit < 1 || out.Limit > MaxLimit {
		return out, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidFilter, MaxLimit)
	}
	if out.Offset < 0 {
		return out, fmt.Errorf("%w: offset must not be negative", ErrInvalidFilter)
	}

	if since, ok := risk.ParseTimestamp(f.Since); ok {
		out.Since = &since
	}
	return out, nil
}

// List returns alerts matching f, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Alert, error) {
	filter, err := s.resolve(f)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAlerts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	out := make([]Alert, 0, len(rows))
	for i := range rows {
		out = append(out, toAlert(&rows[i]))
	}
	return out, nil
}

func toAlert(tx *models.Transaction) Alert {
	reasons := []string(tx.RiskReasons)
	if reasons == nil {
		reasons = []string{}
	}
	return Alert{
		ID:              tx.ID,
		Ts:              tx.Ts,
		SourceIBAN:      tx.SrcIBAN(),
		DestinationIBAN: tx.DestinationIBAN(),
		Amount:          tx.Amount(),
		Currency:        tx.Currency,
		Channel:         tx.Channel,
		Action:          risk.Action(tx.Action),
		Reasons:         reasons,
	}
}

var exportHeader = []string{"id", "ts", "src_iban", "dst_iban", "amount_RON", "currency", "channel", "action", "reasons"}

// Export writes the filtered alerts as CSV. Limit and offset are ignored;
// at most MaxExportRows rows are written.
func (s *Service) Export(ctx context.Context, w io.Writer, f Filter) error {
	f.Limit, f.Offset = 0, 0
	filter, err := s.resolve(f)
	if err != nil {
		return err
	}
	filter.Limit = MaxExportRows

	rows, err := s.repo.ListAlerts(ctx, filter)
	if err != nil {
		return fmt.Errorf("export alerts: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for i := range rows {
		tx := &rows[i]
		record := []string{
			strconv.FormatUint(uint64(tx.ID), 10),
			risk.FormatTimestamp(tx.Ts),
			tx.SrcIBAN(),
			tx.DestinationIBAN(),
			fmt.Sprintf("%.2f", tx.Amount()),
			tx.Currency,
			tx.Channel,
			tx.Action,
			strings.Join(tx.RiskReasons, reasonSeparator),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decide applies an operator release or cancel.
func (s *Service) Decide(ctx context.Context, id uint, decision string) (Override, error) {
	d, err := risk.ParseOperatorDecision(decision)
	if err != nil {
		return Override{}, err
	}
	prev, next, err := s.override(ctx, id, d.Action(), risk.OverrideOperator)
	if err != nil {
		return Override{}, err
	}
	return Override{ID: id, PreviousAction: prev, NewAction: next}, nil
}

// ApplyQuiz re-scores an alert from the customer's questionnaire answers.
func (s *Service) ApplyQuiz(ctx context.Context, id uint, answers risk.QuizAnswers) (QuizOutcome, error) {
	res := s.quiz.ScoreQuiz(answers)
	prev, next, err := s.override(ctx, id, res.Decision.Action(), risk.OverrideQuiz)
	if err != nil {
		return QuizOutcome{}, err
	}
	return QuizOutcome{
		ID:             id,
		PreviousAction: prev,
		NewAction:      next,
		Score:          res.Score,
		Reasons:        res.Reasons,
	}, nil
}

func (s *Service) override(ctx context.Context, id uint, to risk.Action, source risk.OverrideSource) (risk.Action, risk.Action, error) {
	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	prev := risk.Action(tx.Action)
	next, err := risk.Transition(prev, to, source)
	if err != nil {
		return "", "", err
	}

	if next != prev {
		if err := s.repo.UpdateAction(ctx, id, string(prev), string(next)); err != nil {
			return "", "", err
		}
	}
	s.metrics.RecordOverride(source, next)
	s.logger.Info("alert action overridden", "alert_id", id, "source", source, "from", prev, "to", next)

	s.publish(ctx, events.OverrideRoutingKey(source), events.OverrideEvent{
		AlertID:        id,
		Source:         source,
		PreviousAction: prev,
		NewAction:      next,
		OccurredAt:     s.now().UTC(),
	})
	return prev, next, nil
}

// Stats counts assessments per action and sums the amounts held.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	out := Stats{
		TotalTx:         totals.TotalTxs,
		ByAction:        totals.Count,
		Percent:         make(map[string]float64, len(totals.Count)),
		LossesPrevented: models.FromMinorUnits(totals.HeldCents),
	}
	if out.ByAction == nil {
		out.ByAction = map[string]int64{}
	}
	for action, n := range out.ByAction {
		if out.TotalTx > 0 {
			out.Percent[action] = float64(n) / float64(out.TotalTx) * 100
		} else {
			out.Percent[action] = 0
		}
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, key string, body interface{}) {
	if err := s.publisher.Publish(ctx, key, body); err != nil {
		s.logger.Warn("event publish failed", "routing_key", key, "error", err)
	}
}

// IsClientError reports whether err should be reported as a 4xx.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidFilter) ||
		errors.Is(err, risk.ErrInvalidDecision) ||
		errors.Is(err, risk.ErrInvalidTransition) ||
		errors.Is(err, risk.ErrUnknownAction)
}
