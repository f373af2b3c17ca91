package middleware

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"scamshield/internal/logging"
	"scamshield/internal/models"
	"scamshield/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct {
	enabled bool
	claims  *models.OperatorClaims
	err     error
}

func (s stubParser) Enabled() bool { return s.enabled }

func (s stubParser) ParseToken(context.Context, string) (*models.OperatorClaims, error) {
	return s.claims, s.err
}

func protectedApp(p TokenParser, permission string) *fiber.App {
	app := fiber.New()
	app.Post("/decide", OperatorAuth(p), HasPermission(p, permission), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestOperatorAuth(t *testing.T) {
	analyst := &models.OperatorClaims{OperatorID: 1, Role: models.RoleAnalyst, Permissions: models.GetDefaultPermissions(models.RoleAnalyst)}
	admin := &models.OperatorClaims{OperatorID: 2, Role: models.RoleAdmin}

	tests := []struct {
		name       string
		parser     stubParser
		header     string
		permission string
		want       int
	}{
		{"disabled auth lets everything through", stubParser{}, "", models.PermissionWatchlistWrite, fiber.StatusOK},
		{"missing header", stubParser{enabled: true}, "", models.PermissionAlertsDecide, fiber.StatusUnauthorized},
		{"not a bearer token", stubParser{enabled: true}, "Basic abc", models.PermissionAlertsDecide, fiber.StatusUnauthorized},
		{"invalid token", stubParser{enabled: true, err: auth.ErrInvalidToken}, "Bearer x", models.PermissionAlertsDecide, fiber.StatusUnauthorized},
		{"expired session", stubParser{enabled: true, err: auth.ErrSessionExpired}, "Bearer x", models.PermissionAlertsDecide, fiber.StatusUnauthorized},
		{"analyst may decide", stubParser{enabled: true, claims: analyst}, "Bearer x", models.PermissionAlertsDecide, fiber.StatusOK},
		{"analyst may not edit watchlist", stubParser{enabled: true, claims: analyst}, "Bearer x", models.PermissionWatchlistWrite, fiber.StatusForbidden},
		{"admin may do anything", stubParser{enabled: true, claims: admin}, "Bearer x", models.PermissionWatchlistWrite, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/decide", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := protectedApp(tt.parser, tt.permission).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New(), RequestLogger(logging.Discard()))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(logging.RequestID(c.UserContext()))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "req-123", string(body))
}
