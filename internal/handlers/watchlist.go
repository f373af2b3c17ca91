package handlers

import (
	"scamshield/internal/logging"
	"scamshield/internal/repositories"
	"scamshield/internal/utils/response"
	"scamshield/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type WatchlistHandler struct {
	watchlist repositories.Watchlist
}

func NewWatchlistHandler(w repositories.Watchlist) *WatchlistHandler {
	if w == nil {
		panic("watchlist is required")
	}
	return &WatchlistHandler{watchlist: w}
}

func (h *WatchlistHandler) List(c *fiber.Ctx) error {
	return h.respond(c, false)
}

func (h *WatchlistHandler) Add(c *fiber.Ctx) error {
	iban, err := watchlistIBAN(c)
	if err != nil {
		return response.ValidationError(c, err)
	}
	if err := h.watchlist.Add(c.UserContext(), iban); err != nil {
		logging.L(c.UserContext()).Error("watchlist add failed", "error", err)
		return response.ServerError(c, "failed to update watchlist")
	}
	logging.L(c.UserContext()).Info("watchlist entry added", "iban", iban)
	return h.respond(c, true)
}

func (h *WatchlistHandler) Remove(c *fiber.Ctx) error {
	iban, err := watchlistIBAN(c)
	if err != nil {
		return response.ValidationError(c, err)
	}
	if err := h.watchlist.Remove(c.UserContext(), iban); err != nil {
		logging.L(c.UserContext()).Error("watchlist remove failed", "error", err)
		return response.ServerError(c, "failed to update watchlist")
	}
	logging.L(c.UserContext()).Info("watchlist entry removed", "iban", iban)
	return h.respond(c, true)
}

func (h *WatchlistHandler) respond(c *fiber.Ctx, changed bool) error {
	ibans, err := h.watchlist.List(c.UserContext())
	if err != nil {
		logging.L(c.UserContext()).Error("watchlist read failed", "error", err)
		return response.ServerError(c, "failed to read watchlist")
	}
	if ibans == nil {
		ibans = []string{}
	}
	body := fiber.Map{"ibans": ibans}
	if changed {
		body["ok"] = true
	}
	return response.Success(c, body)
}

func watchlistIBAN(c *fiber.Ctx) (string, error) {
	iban := normalizeIBAN(c.Query("iban"))
	if err := validation.Var("iban", iban, "required,iban"); err != nil {
		return "", err
	}
	return iban, nil
}
