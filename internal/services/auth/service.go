// Package auth signs in fraud operators and issues the JWTs that guard
// alert decisions and watchlist changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"scamshield/internal/models"
	"scamshield/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "scamshield-api"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotConfigured      = errors.New("JWT secret not configured")
)

type Service struct {
	repo   repositories.OperatorRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(repo repositories.OperatorRepository, secret string, ttl time.Duration) *Service {
	if repo == nil {
		panic("operator repository is required")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Service{repo: repo, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled is false when no secret is configured; operator routes are then
// left open for local runs.
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// HashPassword bcrypt-hashes a new operator password.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies an operator's password and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Operator, string, error) {
	op, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrOperatorNotFound) {
			slog.Info("login failed: operator not found")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		slog.Info("login failed: incorrect password", "operator_id", op.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(op)
	if err != nil {
		return nil, "", err
	}
	return op, token, nil
}

// IssueToken signs an access token for op.
func (s *Service) IssueToken(op *models.Operator) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}
	now := s.now()
	claims := models.OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(op.ID), 10),
		},
		OperatorID:   op.ID,
		Email:        op.Email,
		Role:         op.Role,
		Permissions:  models.GetDefaultPermissions(op.Role),
		TokenVersion: op.TokenVersion,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates the signature, expiry and token version.
func (s *Service) ParseToken(ctx context.Context, raw string) (*models.OperatorClaims, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

	claims := &models.OperatorClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	op, err := s.repo.GetByID(ctx, claims.OperatorID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if op.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}
	return claims, nil
}
