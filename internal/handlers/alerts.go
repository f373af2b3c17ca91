package handlers

import (
	"bytes"
	"errors"
	"strconv"

	"scamshield/internal/logging"
	"scamshield/internal/services/alerts"
	"scamshield/internal/services/risk"
	"scamshield/internal/utils/pagination"
	"scamshield/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	alerts AlertService
}

func NewAlertHandler(alerts AlertService) *AlertHandler {
	if alerts == nil {
		panic("alert service is required")
	}
	return &AlertHandler{alerts: alerts}
}

func filterFromQuery(c *fiber.Ctx) (alerts.Filter, error) {
	page, err := pagination.ParseFromRequest(c, alerts.DefaultLimit, alerts.MaxLimit)
	if err != nil {
		return alerts.Filter{}, err
	}
	return alerts.Filter{
		Action:  c.Query("action"),
		DstIBAN: c.Query("dst_iban"),
		Since:   c.Query("since"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	}, nil
}

// ListAlerts returns warn and hold assessments, newest first.
func (h *AlertHandler) ListAlerts(c *fiber.Ctx) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	list, err := h.alerts.List(c.UserContext(), f)
	if err != nil {
		return alertError(c, err)
	}
	return response.Success(c, list)
}

// ExportAlerts renders the filtered alerts as CSV. Pagination is ignored.
func (h *AlertHandler) ExportAlerts(c *fiber.Ctx) error {
	f := alerts.Filter{
		Action:  c.Query("action"),
		DstIBAN: c.Query("dst_iban"),
		Since:   c.Query("since"),
	}
	var buf bytes.Buffer
	if err := h.alerts.Export(c.UserContext(), &buf, f); err != nil {
		return alertError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="alerts.csv"`)
	return c.Send(buf.Bytes())
}

// Decide applies an operator decision (release or cancel) to an alert.
func (h *AlertHandler) Decide(c *fiber.Ctx) error {
	id, err := alertID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	out, err := h.alerts.Decide(c.UserContext(), id, c.Query("decision"))
	if err != nil {
		return alertError(c, err)
	}
	return response.Success(c, fiber.Map{
		"ok":              true,
		"id":              out.ID,
		"previous_action": out.PreviousAction,
		"new_action":      out.NewAction,
	})
}

// SubmitQuiz re-scores an alert with the customer's questionnaire answers.
func (h *AlertHandler) SubmitQuiz(c *fiber.Ctx) error {
	id, err := alertID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	var answers risk.QuizAnswers
	if err := c.BodyParser(&answers); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	out, err := h.alerts.ApplyQuiz(c.UserContext(), id, answers)
	if err != nil {
		return alertError(c, err)
	}
	return response.Success(c, out)
}

func (h *AlertHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.alerts.Stats(c.UserContext())
	if err != nil {
		return alertError(c, err)
	}
	return response.Success(c, stats)
}

func alertID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid alert id")
	}
	return uint(id), nil
}

func alertError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, alerts.ErrAssessmentNotFound):
		return response.NotFound(c, "alert not found")
	case errors.Is(err, alerts.ErrConflict):
		return response.Conflict(c, "alert was updated concurrently, retry")
	case alerts.IsClientError(err):
		return response.BadRequest(c, err.Error())
	}
	logging.L(c.UserContext()).Error("alert operation failed", "error", err)
	return response.ServerError(c, "internal error")
}
