package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scamshield/internal/logging"
	"scamshield/internal/services/risk"
	"scamshield/internal/utils/pagination"
	"scamshield/internal/utils/response"
	"scamshield/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultMuleHours = 24
	maxMuleHours     = 168
	suspectsCacheTTL = 15 * time.Second
)

// SuspectCache holds recent top-suspect scans. Implemented by
// cache.CacheService.
type SuspectCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GenerateKey(entityType, keyType string, value interface{}) string
}

type MuleHandler struct {
	engine RiskEngine
	cache  SuspectCache
}

// NewMuleHandler builds the handler; cache may be nil.
func NewMuleHandler(engine RiskEngine, cache SuspectCache) *MuleHandler {
	if engine == nil {
		panic("risk engine is required")
	}
	return &MuleHandler{engine: engine, cache: cache}
}

// Account returns the mule statistics of one account.
func (h *MuleHandler) Account(c *fiber.Ctx) error {
	iban := normalizeIBAN(c.Params("iban"))
	if err := validation.Var("iban", iban, "required,iban"); err != nil {
		return response.ValidationError(c, err)
	}
	hours, err := pagination.IntInRange(c, "hours", defaultMuleHours, 1, maxMuleHours)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	stats, err := h.engine.MuleStats(c.UserContext(), iban, hours)
	if err != nil {
		return muleError(c, err)
	}
	return response.Success(c, stats)
}

// TopSuspects ranks known destination accounts by current mule score.
func (h *MuleHandler) TopSuspects(c *fiber.Ctx) error {
	hours, err := pagination.IntInRange(c, "hours", defaultMuleHours, 1, maxMuleHours)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	limit, err := pagination.IntInRange(c, "limit", risk.DefaultTopSuspects, 1, risk.MaxTopSuspects)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx := c.UserContext()
	var key string
	if h.cache != nil {
		key = h.cache.GenerateKey("mule", "top", fmt.Sprintf("%d:%d", hours, limit))
		var cached []risk.MuleStats
		found, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			logging.L(ctx).Warn("suspect cache read failed", "error", err)
		} else if found {
			return response.Success(c, cached)
		}
	}

	top, err := h.engine.TopSuspects(ctx, hours, limit)
	if err != nil {
		return muleError(c, err)
	}
	if top == nil {
		top = []risk.MuleStats{}
	}
	if h.cache != nil {
		if err := h.cache.SetWithTTL(ctx, key, top, suspectsCacheTTL); err != nil {
			logging.L(ctx).Warn("suspect cache write failed", "error", err)
		}
	}
	return response.Success(c, top)
}

func muleError(c *fiber.Ctx, err error) error {
	if errors.Is(err, risk.ErrInvalidWindow) ||
		errors.Is(err, risk.ErrInvalidLimit) ||
		errors.Is(err, risk.ErrEmptyAccount) {
		return response.BadRequest(c, err.Error())
	}
	logging.L(c.UserContext()).Error("mule query failed", "error", err)
	return response.ServerError(c, "internal error")
}
