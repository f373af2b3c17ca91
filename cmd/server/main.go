// Package main is the entry point for the scoring service.
// It wires storage, collaborators and the HTTP server, then serves until
// SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scamshield/internal/config"
	"scamshield/internal/handlers"
	"scamshield/internal/logging"
	"scamshield/internal/metrics"
	"scamshield/internal/middleware"
	"scamshield/internal/repositories"
	"scamshield/internal/repositories/cache"
	"scamshield/internal/repositories/window"
	"scamshield/internal/routes"
	"scamshield/internal/services/alerts"
	"scamshield/internal/services/auth"
	"scamshield/internal/services/cop"
	"scamshield/internal/services/events"
	"scamshield/internal/services/ml"
	"scamshield/internal/services/risk"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const version = "1.0.0"

func main() {
	config.LoadEnv()

	log := logging.NewFromConfig(logging.Config{
		Level:  config.GetEnv("LOG_LEVEL", "info"),
		Format: config.GetEnv("LOG_FORMAT", "text"),
		File:   config.GetEnv("LOG_FILE", ""),
	})
	slog.SetDefault(log)

	riskCfg, err := config.LoadRiskConfig(config.GetEnv("RISK_CONFIG_FILE", ""))
	if err != nil {
		log.Error("❌ Invalid risk configuration", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	checks := map[string]handlers.Check{}

	// PostgreSQL audit trail, in-memory when DB_HOST is unset
	var (
		db          *gorm.DB
		assessments repositories.AssessmentRepository
		operators   repositories.OperatorRepository
	)
	dbCfg := repositories.DBConfigFromEnv()
	if dbCfg.Host != "" {
		db, err = repositories.InitDB(dbCfg)
		if err != nil {
			log.Error("❌ Failed to connect to database", "error", err)
			os.Exit(1)
		}
		log.Info("✅ Connected to PostgreSQL", "host", dbCfg.Host, "db", dbCfg.Name)
		assessments = repositories.NewAssessmentRepository(db)
		operators = repositories.NewOperatorRepository(db)
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	} else {
		log.Warn("⚠️ DB_HOST not set, keeping the audit trail in memory")
		assessments = repositories.NewMemoryAssessmentRepository()
		operators = repositories.NewMemoryOperatorRepository()
		checks["database"] = nil
	}

	// Redis windowed state and watchlist, in-memory when unreachable
	var (
		store     window.Store
		watchlist repositories.Watchlist
		suspects  handlers.SuspectCache
	)
	redisCfg := cache.RedisConfigFromEnv()
	rdb, err := connectRedis(redisCfg)
	if err != nil {
		log.Warn("⚠️ Redis unavailable, windowed state will not survive restarts", "error", err)
		store = window.NewMemoryStore()
		watchlist = repositories.NewMemoryWatchlist()
		checks["redis"] = nil
	} else {
		log.Info("✅ Connected to Redis", "addr", redisCfg.Addr())
		store = window.NewRedisStore(rdb, "")
		watchlist = repositories.NewRedisWatchlist(rdb)
		cacheSvc := cache.NewCacheService(rdb)
		suspects = cacheSvc
		checks["redis"] = cacheSvc.HealthCheck
	}

	model := ml.NewLogisticModel()
	if path := config.GetEnv("ML_MODEL_PATH", ""); path != "" {
		if err := model.LoadFile(path); err != nil {
			log.Warn("⚠️ ML model not loaded, scoring with rules only", "path", path, "error", err)
		} else {
			log.Info("✅ ML model loaded", "path", path)
		}
	}

	entries := cop.DefaultEntries
	if raw := config.GetEnv("COP_REGISTRY", ""); raw != "" {
		entries, err = cop.ParseEntries(raw)
		if err != nil {
			log.Error("❌ Invalid COP_REGISTRY", "error", err)
			os.Exit(1)
		}
	}
	payee := cop.NewBreaker(cop.NewRegistry(entries), cop.BreakerSettings{
		Name:          "cop",
		Timeout:       config.GetDurationEnv("COP_TIMEOUT", 200*time.Millisecond),
		OnStateChange: collector.SetBreakerState,
	})

	publisher := events.Connect(config.GetEnv("AMQP_URL", ""), log)
	defer publisher.Close()

	engine, err := risk.NewEngine(riskCfg, store,
		risk.WithPayeeChecker(payee),
		risk.WithWatchlist(watchlist),
		risk.WithModel(model),
		risk.WithMetrics(collector),
		risk.WithLogger(log),
	)
	if err != nil {
		log.Error("❌ Failed to build risk engine", "error", err)
		os.Exit(1)
	}

	alertSvc := alerts.NewService(assessments, engine, publisher, collector, log)
	authSvc := auth.NewService(operators, config.GetEnv("JWT_SECRET", ""),
		config.GetDurationEnv("JWT_TTL", 8*time.Hour))
	if !authSvc.Enabled() {
		if config.IsProduction() {
			log.Error("❌ JWT_SECRET must be set in production")
			os.Exit(1)
		}
		log.Warn("⚠️ JWT_SECRET not set, operator routes are open")
	}

	app := fiber.New(fiber.Config{
		AppName:      "scamshield",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,OPTIONS",
	}))
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	}))
	app.Use(collector.Middleware())

	app.Use("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, routes.Deps{
		Score:     handlers.NewScoreHandler(engine, alertSvc),
		Alerts:    handlers.NewAlertHandler(alertSvc),
		Mule:      handlers.NewMuleHandler(engine, suspects),
		Watchlist: handlers.NewWatchlistHandler(watchlist),
		Health:    handlers.NewHealthHandler(version, checks, model),
		Auth:      handlers.NewAuthHandler(authSvc),
		Tokens:    authSvc,
		Metrics:   collector,
	})

	go func() {
		addr := ":" + config.GetEnv("PORT", "8000")
		log.Info("🚀 Server listening", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Error("❌ Server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("🛑 Shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Warn("⚠️ Server shutdown incomplete", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("⚠️ Failed to close Redis connection", "error", err)
		}
	}
	if db != nil {
		if err := repositories.Close(db); err != nil {
			log.Warn("⚠️ Failed to close database connection", "error", err)
		}
	}
}

func connectRedis(cfg *cache.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("REDIS_HOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return cache.Connect(ctx, cfg)
}
