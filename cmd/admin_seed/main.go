// Command admin_seed creates the first operator account, seeds the
// watchlist and prints a signed access token for the operator.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"scamshield/internal/config"
	"scamshield/internal/models"
	"scamshield/internal/repositories"
	"scamshield/internal/repositories/cache"
	"scamshield/internal/services/auth"
)

func main() {
	config.LoadEnv()
	ctx := context.Background()

	adminEmail := config.GetEnv("ADMIN_EMAIL", "")
	adminPassword := config.GetEnv("ADMIN_PASSWORD", "")
	role := config.GetEnv("ADMIN_ROLE", models.RoleAdmin)
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}
	if role != models.RoleAdmin && role != models.RoleAnalyst {
		log.Fatalf("ADMIN_ROLE must be %q or %q", models.RoleAdmin, models.RoleAnalyst)
	}

	dbCfg := repositories.DBConfigFromEnv()
	if dbCfg.Host == "" {
		log.Fatal("DB_HOST must be set; operators are stored in PostgreSQL")
	}
	db, err := repositories.InitDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
		}
	}()

	operators := repositories.NewOperatorRepository(db)
	op, err := operators.GetByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		log.Printf("Operator %s already exists", op.Email)
	case errors.Is(err, repositories.ErrOperatorNotFound):
		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		op = &models.Operator{Email: adminEmail, PasswordHash: hash, Role: role, TokenVersion: 1}
		if err := operators.Create(ctx, op); err != nil {
			log.Fatalf("Failed to create operator: %v", err)
		}
		log.Printf("✅ Operator %s created with role %s", op.Email, op.Role)
	default:
		log.Fatalf("Failed to look up operator: %v", err)
	}

	if seed := config.GetEnv("WATCHLIST_SEED", ""); seed != "" {
		seedWatchlist(ctx, seed)
	}

	svc := auth.NewService(operators, config.GetEnv("JWT_SECRET", ""), config.GetDurationEnv("JWT_TTL", 8*time.Hour))
	if !svc.Enabled() {
		log.Println("JWT_SECRET not set, skipping token")
		return
	}
	token, err := svc.IssueToken(op)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}

func seedWatchlist(ctx context.Context, seed string) {
	redisCfg := cache.RedisConfigFromEnv()
	if redisCfg.Host == "" {
		log.Println("⚠️ REDIS_HOST not set, skipping watchlist seed")
		return
	}
	rdb, err := cache.Connect(ctx, redisCfg)
	if err != nil {
		log.Printf("⚠️ Skipping watchlist seed: %v", err)
		return
	}
	defer rdb.Close()

	watchlist := repositories.NewRedisWatchlist(rdb)
	for _, iban := range strings.Split(seed, ",") {
		if iban = strings.TrimSpace(iban); iban == "" {
			continue
		}
		if err := watchlist.Add(ctx, iban); err != nil {
			log.Fatalf("Failed to add %s to watchlist: %v", iban, err)
		}
	}
	ibans, err := watchlist.List(ctx)
	if err != nil {
		log.Fatalf("Failed to read watchlist: %v", err)
	}
	log.Printf("✅ Watchlist holds %d IBANs", len(ibans))
}
