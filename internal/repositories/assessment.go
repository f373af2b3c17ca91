package repositories

import (
	"context"
	"errors"
	"time"

	"scamshield/internal/models"
)

var (
	ErrAssessmentNotFound = errors.New("alert not found")
	ErrStaleAction        = errors.New("action changed concurrently")
)

// AlertFilter selects non-allow transactions, newest first.
type AlertFilter struct {
	Action  string
	DstIBAN string
	Since   *time.Time
	Limit   int
	Offset  int
}

// ActionTotals aggregates transactions per action.
type ActionTotals struct {
	Count     map[string]int64
	HeldCents int64
	TotalTxs  int64
}

// AssessmentRepository persists the audit trail of scored payments.
type AssessmentRepository interface {
	// Create stores tx, creating the source account under the demo
	// customer on first sight and linking the destination when known.
	Create(ctx context.Context, tx *models.Transaction, srcIBAN string) error

	// GetByID loads a transaction with its accounts.
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)

	// UpdateAction sets the action only if it is still from.
	UpdateAction(ctx context.Context, id uint, from, to string) error

	// ListAlerts returns non-allow transactions matching the filter.
	ListAlerts(ctx context.Context, f AlertFilter) ([]models.Transaction, error)

	// Totals counts transactions per action and sums held amounts.
	Totals(ctx context.Context) (ActionTotals, error)
}
