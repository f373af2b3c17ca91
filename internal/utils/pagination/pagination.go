package pagination

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Pagination struct {
	Limit  int
	Offset int
}

// ParseFromRequest reads limit and offset query parameters. A missing limit
// falls back to defaultLimit; both must be integers within bounds.
func ParseFromRequest(c *fiber.Ctx, defaultLimit, maxLimit int) (Pagination, error) {
	p := Pagination{Limit: defaultLimit}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			return p, fmt.Errorf("limit must be an integer between 1 and %d", maxLimit)
		}
		p.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return p, fmt.Errorf("offset must be a non-negative integer")
		}
		p.Offset = offset
	}
	return p, nil
}

// IntInRange reads an integer query parameter bounded to [lo, hi].
func IntInRange(c *fiber.Ctx, key string, def, lo, hi int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}
