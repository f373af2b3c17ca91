// Package routes defines the API routing configuration.
// It wires the handlers to their paths and applies operator authentication
// to the routes that read alerts or change state.
package routes

import (
	"scamshield/internal/handlers"
	"scamshield/internal/metrics"
	"scamshield/internal/middleware"
	"scamshield/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Deps carries everything the routes need.
type Deps struct {
	Score     *handlers.ScoreHandler
	Alerts    *handlers.AlertHandler
	Mule      *handlers.MuleHandler
	Watchlist *handlers.WatchlistHandler
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Tokens    middleware.TokenParser
	Metrics   *metrics.Collector
}

// SetupRoutes registers every route on app.
func SetupRoutes(app *fiber.App, d Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "health": "/health"})
	})
	app.Get("/health", d.Health.HealthCheck)
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics.Handler())
	}

	// Scoring and customer-facing routes
	app.Post("/scorePayment", d.Score.ScorePayment)
	app.Post("/quiz/:id", d.Alerts.SubmitQuiz)
	app.Get("/stats", d.Alerts.Stats)
	app.Get("/ml/status", d.Health.ModelStatus)

	ai := app.Group("/ai")
	ai.Post("/explain", handlers.Explain)
	ai.Post("/quiz/score", d.Score.QuizScore)

	// Mule radar; /top is registered before the account route
	mule := app.Group("/mule")
	mule.Get("/top", d.Mule.TopSuspects)
	mule.Get("/:iban", d.Mule.Account)

	app.Post("/auth/login", d.Auth.Login)

	operator := middleware.OperatorAuth(d.Tokens)

	alerts := app.Group("/alerts", operator)
	alerts.Get("/", middleware.HasPermission(d.Tokens, models.PermissionAlertsRead), d.Alerts.ListAlerts)
	alerts.Get("/export.csv", middleware.HasPermission(d.Tokens, models.PermissionAlertsRead), d.Alerts.ExportAlerts)
	alerts.Post("/:id/decision", middleware.HasPermission(d.Tokens, models.PermissionAlertsDecide), d.Alerts.Decide)

	watchlist := app.Group("/watchlist")
	watchlist.Get("/", d.Watchlist.List)
	watchlist.Post("/add", operator, middleware.HasPermission(d.Tokens, models.PermissionWatchlistWrite), d.Watchlist.Add)
	watchlist.Post("/remove", operator, middleware.HasPermission(d.Tokens, models.PermissionWatchlistWrite), d.Watchlist.Remove)
}
