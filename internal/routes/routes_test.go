package routes

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"scamshield/internal/handlers"
	"scamshield/internal/logging"
	"scamshield/internal/metrics"
	"scamshield/internal/models"
	"scamshield/internal/repositories"
	"scamshield/internal/repositories/window"
	"scamshield/internal/services/alerts"
	"scamshield/internal/services/auth"
	"scamshield/internal/services/ml"
	"scamshield/internal/services/risk"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app    *fiber.App
	tokens map[string]string
}

func newTestServer(t *testing.T, secret string) testServer {
	t.Helper()
	ctx := context.Background()

	engine, err := risk.NewEngine(risk.DefaultConfig(), window.NewMemoryStore(), risk.WithLogger(logging.Discard()))
	require.NoError(t, err)
	svc := alerts.NewService(repositories.NewMemoryAssessmentRepository(), engine, nil, nil, logging.Discard())

	operators := repositories.NewMemoryOperatorRepository()
	authSvc := auth.NewService(operators, secret, time.Hour)
	tokens := map[string]string{}
	for _, role := range []string{models.RoleAnalyst, models.RoleAdmin} {
		op := &models.Operator{Email: role + "@bank.ro", PasswordHash: "unused", Role: role}
		require.NoError(t, operators.Create(ctx, op))
		if authSvc.Enabled() {
			token, err := authSvc.IssueToken(op)
			require.NoError(t, err)
			tokens[role] = token
		}
	}

	app := fiber.New()
	SetupRoutes(app, Deps{
		Score:     handlers.NewScoreHandler(engine, svc),
		Alerts:    handlers.NewAlertHandler(svc),
		Mule:      handlers.NewMuleHandler(engine, nil),
		Watchlist: handlers.NewWatchlistHandler(repositories.NewMemoryWatchlist()),
		Health:    handlers.NewHealthHandler("test", map[string]handlers.Check{"database": nil}, ml.NewLogisticModel()),
		Auth:      handlers.NewAuthHandler(authSvc),
		Tokens:    authSvc,
		Metrics:   metrics.NewCollector(prometheus.NewRegistry()),
	})
	return testServer{app: app, tokens: tokens}
}

func (s testServer) do(t *testing.T, method, path, role string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token, ok := s.tokens[role]; ok {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestSetupRoutes_OperatorAccess(t *testing.T) {
	s := newTestServer(t, "route-secret")
	const watchlistAdd = "/watchlist/add?iban=RO22BANK0000000000000002"

	tests := []struct {
		name       string
		method     string
		path       string
		role       string
		wantStatus int
	}{
		{name: "alerts need a token", method: fiber.MethodGet, path: "/alerts", wantStatus: fiber.StatusUnauthorized},
		{name: "analyst lists alerts", method: fiber.MethodGet, path: "/alerts", role: models.RoleAnalyst, wantStatus: fiber.StatusOK},
		{name: "analyst exports alerts", method: fiber.MethodGet, path: "/alerts/export.csv", role: models.RoleAnalyst, wantStatus: fiber.StatusOK},
		{name: "decision needs a token", method: fiber.MethodPost, path: "/alerts/1/decision?decision=release", wantStatus: fiber.StatusUnauthorized},
		{name: "analyst decides", method: fiber.MethodPost, path: "/alerts/1/decision?decision=release", role: models.RoleAnalyst, wantStatus: fiber.StatusNotFound},
		{name: "watchlist is public to read", method: fiber.MethodGet, path: "/watchlist", wantStatus: fiber.StatusOK},
		{name: "watchlist writes need a token", method: fiber.MethodPost, path: watchlistAdd, wantStatus: fiber.StatusUnauthorized},
		{name: "analyst cannot edit watchlist", method: fiber.MethodPost, path: watchlistAdd, role: models.RoleAnalyst, wantStatus: fiber.StatusForbidden},
		{name: "admin edits watchlist", method: fiber.MethodPost, path: watchlistAdd, role: models.RoleAdmin, wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, tt.method, tt.path, tt.role)
			assert.Equal(t, tt.wantStatus, status, body)
		})
	}
}

func TestSetupRoutes_AuthDisabled(t *testing.T) {
	s := newTestServer(t, "")

	status, _ := s.do(t, fiber.MethodGet, "/alerts", "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, fiber.MethodPost, "/watchlist/add?iban=RO22BANK0000000000000002", "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestSetupRoutes_Public(t *testing.T) {
	s := newTestServer(t, "route-secret")

	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: `"status":"ok"`},
		{path: "/health", want: `"database":"in-memory"`},
		{path: "/ml/status", want: `"loaded":false`},
		{path: "/stats", want: `"total_tx":0`},
		{path: "/mule/top", want: "[]"},
		{path: "/metrics", want: "scamshield_"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := s.do(t, fiber.MethodGet, tt.path, "")
			require.Equal(t, fiber.StatusOK, status, body)
			assert.True(t, strings.Contains(body, tt.want), body)
		})
	}
}
