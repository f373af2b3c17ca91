// Package middleware provides HTTP middleware components for the application.
// It includes operator authentication, permission checks and request-scoped
// logging for the fiber web framework.
package middleware

import (
	"context"
	"errors"
	"strings"

	"scamshield/internal/logging"
	"scamshield/internal/models"
	"scamshield/internal/services/auth"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// TokenParser validates operator tokens. *auth.Service implements it.
type TokenParser interface {
	Enabled() bool
	ParseToken(ctx context.Context, raw string) (*models.OperatorClaims, error)
}

// OperatorAuth validates the Bearer token and stores the operator claims
// in the request context. When no JWT secret is configured every request
// passes through.
func OperatorAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !parser.Enabled() {
			return c.Next()
		}
		log := logging.L(c.UserContext())

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := parser.ParseToken(c.UserContext(), strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Info("operator token rejected", "error", err)
			if errors.Is(err, auth.ErrSessionExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session expired"})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals(claimsKey, claims)
		operatorLog := logging.FromContext(c.UserContext()).With("operator_id", claims.OperatorID)
		c.SetUserContext(logging.WithLogger(c.UserContext(), operatorLog))
		return c.Next()
	}
}

// HasPermission returns a middleware that checks for a specific permission.
// Admins hold every permission.
func HasPermission(parser TokenParser, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !parser.Enabled() {
			return c.Next()
		}
		claims, ok := Claims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if claims.Role == models.RoleAdmin || claims.HasPermission(permission) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}
}

// Claims returns the authenticated operator, if any.
func Claims(c *fiber.Ctx) (*models.OperatorClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*models.OperatorClaims)
	return claims, ok && claims != nil
}
