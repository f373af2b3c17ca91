package handlers

import (
	"errors"

	"scamshield/internal/logging"
	"scamshield/internal/services/auth"
	"scamshield/internal/utils/response"
	"scamshield/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	if a == nil {
		panic("authenticator is required")
	}
	return &AuthHandler{auth: a}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges operator credentials for a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if !h.auth.Enabled() {
		return response.Error(c, fiber.StatusNotImplemented, "operator authentication is not configured")
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return response.ValidationError(c, err)
	}

	op, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Unauthorized(c)
		}
		logging.L(c.UserContext()).Error("operator login failed", "error", err)
		return response.ServerError(c, "login failed")
	}

	logging.L(c.UserContext()).Info("operator logged in", "operator_id", op.ID)
	return response.Success(c, fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
		"operator": fiber.Map{
			"id":    op.ID,
			"email": op.Email,
			"role":  op.Role,
		},
	})
}
