package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"scamshield/internal/models"
)

// MemoryAssessmentRepository keeps the audit trail in process. It backs
// local runs without Postgres and the service tests.
type MemoryAssessmentRepository struct {
	mu       sync.RWMutex
	nextID   uint
	nextAcct uint
	accounts map[string]*models.Account
	rows     []*models.Transaction
	now      func() time.Time
}

func NewMemoryAssessmentRepository() *MemoryAssessmentRepository {
	return &MemoryAssessmentRepository{
		accounts: make(map[string]*models.Account),
		now:      time.Now,
	}
}

func (r *MemoryAssessmentRepository) account(iban string) *models.Account {
	if a, ok := r.accounts[iban]; ok {
		return a
	}
	r.nextAcct++
	a := &models.Account{ID: r.nextAcct, CustomerID: 1, IBAN: iban}
	r.accounts[iban] = a
	return a
}

func (r *MemoryAssessmentRepository) Create(ctx context.Context, tx *models.Transaction, srcIBAN string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if srcIBAN != "" {
		src := r.account(srcIBAN)
		tx.SrcAccountID = &src.ID
		tx.SrcAccount = src
	}
	if dst, ok := r.accounts[tx.DstIBAN]; ok && tx.DstIBAN != "" {
		tx.DstAccountID = &dst.ID
		tx.DstAccount = dst
	}

	r.nextID++
	tx.ID = r.nextID
	now := r.now()
	tx.CreatedAt, tx.UpdatedAt = now, now
	stored := *tx
	stored.RiskReasons = append([]string(nil), tx.RiskReasons...)
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *MemoryAssessmentRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id == 0 || int(id) > len(r.rows) {
		return nil, ErrAssessmentNotFound
	}
	tx := *r.rows[id-1]
	return &tx, nil
}

func (r *MemoryAssessmentRepository) UpdateAction(ctx context.Context, id uint, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == 0 || int(id) > len(r.rows) {
		return ErrAssessmentNotFound
	}
	row := r.rows[id-1]
	if row.Action != from {
		return ErrStaleAction
	}
	row.Action = to
	row.UpdatedAt = r.now()
	return nil
}

func (r *MemoryAssessmentRepository) ListAlerts(ctx context.Context, f AlertFilter) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(f.DstIBAN)
	var out []models.Transaction
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		switch {
		case row.Action == "allow":
			continue
		case f.Action != "" && row.Action != f.Action:
			continue
		case needle != "" && !strings.Contains(strings.ToLower(row.DstIBAN), needle):
			continue
		case f.Since != nil && row.Ts.Before(*f.Since):
			continue
		}
		out = append(out, *row)
	}

	if f.Offset >= len(out) {
		return []models.Transaction{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemoryAssessmentRepository) Totals(ctx context.Context) (ActionTotals, error) {
	if err := ctx.Err(); err != nil {
		return ActionTotals{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := ActionTotals{Count: make(map[string]int64)}
	for _, row := range r.rows {
		totals.Count[row.Action]++
		totals.TotalTxs++
		if row.Action == "hold" {
			totals.HeldCents += row.AmountCents
		}
	}
	return totals, nil
}
