package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scamshield/internal/models"

	"gorm.io/gorm"
)

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	if db == nil {
		panic("database is required")
	}
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, tx *models.Transaction, srcIBAN string) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if srcIBAN != "" {
			var customer models.Customer
			if err := db.Where(models.Customer{ExternalID: models.DemoCustomerExternalID}).
				Attrs(models.Customer{Name: "Demo User"}).
				FirstOrCreate(&customer).Error; err != nil {
				return fmt.Errorf("upsert customer: %w", err)
			}

			var src models.Account
			if err := db.Where(models.Account{IBAN: srcIBAN}).
				Attrs(models.Account{CustomerID: customer.ID}).
				FirstOrCreate(&src).Error; err != nil {
				return fmt.Errorf("upsert source account: %w", err)
			}
			tx.SrcAccountID = &src.ID
			tx.SrcAccount = &src
		}

		if tx.DstIBAN != "" {
			var dst models.Account
			err := db.Where("iban = ?", tx.DstIBAN).First(&dst).Error
			switch {
			case err == nil:
				tx.DstAccountID = &dst.ID
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("lookup destination account: %w", err)
			}
		}

		if err := db.Omit("SrcAccount", "DstAccount").Create(tx).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return nil
	})
}

func (r *assessmentRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).Preload("SrcAccount").Preload("DstAccount").First(&tx, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *assessmentRepository) UpdateAction(ctx context.Context, id uint, from, to string) error {
	res := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND action = ?", id, from).
		Update("action", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAssessmentNotFound
		}
		return ErrStaleAction
	}
	return nil
}

func (r *assessmentRepository) ListAlerts(ctx context.Context, f AlertFilter) ([]models.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Preload("SrcAccount").Preload("DstAccount").
		Where("action <> ?", "allow")
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.DstIBAN != "" {
		q = q.Where(`dst_iban ILIKE ? ESCAPE '\'`, "%"+escapeLike(f.DstIBAN)+"%")
	}
	if f.Since != nil {
		q = q.Where("ts >= ?", *f.Since)
	}

	var rows []models.Transaction
	err := q.Order("id DESC").Offset(f.Offset).Limit(f.Limit).Find(&rows).Error
	return rows, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *assessmentRepository) Totals(ctx context.Context) (ActionTotals, error) {
	type row struct {
		Action string
		Count  int64
		Cents  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("action, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS cents").
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return ActionTotals{}, err
	}

	totals := ActionTotals{Count: make(map[string]int64, len(rows))}
	for _, r := range rows {
		totals.Count[r.Action] = r.Count
		totals.TotalTxs += r.Count
		if r.Action == "hold" {
			totals.HeldCents = r.Cents
		}
	}
	return totals, nil
}
