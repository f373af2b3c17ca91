package repositories

import (
	"context"
	"errors"
	"strings"
	"sync"

	"scamshield/internal/models"

	"gorm.io/gorm"
)

var (
	ErrOperatorNotFound = errors.New("operator not found")
	ErrEmailTaken       = errors.New("email already taken")
)

// OperatorRepository stores analyst accounts.
type OperatorRepository interface {
	Create(ctx context.Context, op *models.Operator) error
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
	GetByID(ctx context.Context, id uint) (*models.Operator, error)
}

type operatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) OperatorRepository {
	if db == nil {
		panic("database is required")
	}
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Create(ctx context.Context, op *models.Operator) error {
	op.Email = strings.ToLower(strings.TrimSpace(op.Email))
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Operator{}).Where("email = ?", op.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return r.db.WithContext(ctx).Create(op).Error
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var op models.Operator
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOperatorNotFound
	}
	return &op, err
}

func (r *operatorRepository) GetByID(ctx context.Context, id uint) (*models.Operator, error) {
	var op models.Operator
	err := r.db.WithContext(ctx).First(&op, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOperatorNotFound
	}
	return &op, err
}

// MemoryOperatorRepository is the in-process operator store.
type MemoryOperatorRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.Operator
	byID    map[uint]*models.Operator
}

func NewMemoryOperatorRepository() *MemoryOperatorRepository {
	return &MemoryOperatorRepository{
		byEmail: make(map[string]*models.Operator),
		byID:    make(map[uint]*models.Operator),
	}
}

func (r *MemoryOperatorRepository) Create(_ context.Context, op *models.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	op.Email = strings.ToLower(strings.TrimSpace(op.Email))
	if _, ok := r.byEmail[op.Email]; ok {
		return ErrEmailTaken
	}
	op.ID = uint(len(r.byID) + 1)
	if op.TokenVersion == 0 {
		op.TokenVersion = 1
	}
	stored := *op
	r.byEmail[op.Email] = &stored
	r.byID[op.ID] = &stored
	return nil
}

func (r *MemoryOperatorRepository) GetByEmail(_ context.Context, email string) (*models.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrOperatorNotFound
	}
	cp := *op
	return &cp, nil
}

func (r *MemoryOperatorRepository) GetByID(_ context.Context, id uint) (*models.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.byID[id]
	if !ok {
		return nil, ErrOperatorNotFound
	}
	cp := *op
	return &cp, nil
}
