package handlers

import (
	"context"
	"io"

	"scamshield/internal/models"
	"scamshield/internal/services/alerts"
	"scamshield/internal/services/ml"
	"scamshield/internal/services/risk"
)

// RiskEngine is the scoring surface the handlers depend on.
type RiskEngine interface {
	Score(ctx context.Context, ev risk.PaymentEvent) *risk.Assessment
	MuleStats(ctx context.Context, iban string, hours int) (risk.MuleStats, error)
	TopSuspects(ctx context.Context, hours, limit int) ([]risk.MuleStats, error)
	ScoreQuiz(a risk.QuizAnswers) risk.QuizResult
}

// AlertService persists assessments and applies overrides.
type AlertService interface {
	Record(ctx context.Context, ev risk.PaymentEvent, a *risk.Assessment) (uint, error)
	List(ctx context.Context, f alerts.Filter) ([]alerts.Alert, error)
	Export(ctx context.Context, w io.Writer, f alerts.Filter) error
	Decide(ctx context.Context, id uint, decision string) (alerts.Override, error)
	ApplyQuiz(ctx context.Context, id uint, answers risk.QuizAnswers) (alerts.QuizOutcome, error)
	Stats(ctx context.Context) (alerts.Stats, error)
}

type ModelStatus interface {
	Status() ml.Status
}

// Authenticator issues operator sessions.
type Authenticator interface {
	Enabled() bool
	Login(ctx context.Context, email, password string) (*models.Operator, string, error)
}
