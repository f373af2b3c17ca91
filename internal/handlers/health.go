package handlers

import (
	"context"
	"sort"
	"time"

	"scamshield/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const healthTimeout = 2 * time.Second

// Check pings one backing service.
type Check func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]Check
	model   ModelStatus
}

// NewHealthHandler reports the named checks. A nil check marks a service
// that runs in-memory.
func NewHealthHandler(version string, checks map[string]Check, model ModelStatus) *HealthHandler {
	return &HealthHandler{version: version, checks: checks, model: model}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	services := fiber.Map{}
	for _, name := range names {
		check := h.checks[name]
		switch {
		case check == nil:
			services[name] = "in-memory"
		case check(ctx) != nil:
			services[name] = "unavailable"
			status = "degraded"
		default:
			services[name] = "connected"
		}
	}

	body := fiber.Map{
		"status":   status,
		"version":  h.version,
		"ts":       time.Now().UTC().Format(time.RFC3339),
		"services": services,
	}
	if h.model != nil {
		body["model_loaded"] = h.model.Status().Loaded
	}
	return response.Success(c, body)
}

// ModelStatus reports whether a probability model is loaded.
func (h *HealthHandler) ModelStatus(c *fiber.Ctx) error {
	if h.model == nil {
		return response.Success(c, fiber.Map{"loaded": false})
	}
	return response.Success(c, h.model.Status())
}
