package handlers

import (
	"log/slog"
	"strings"

	"scamshield/internal/logging"
	"scamshield/internal/services/risk"
	"scamshield/internal/utils/response"
	"scamshield/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type ScoreHandler struct {
	engine RiskEngine
	alerts AlertService
}

func NewScoreHandler(engine RiskEngine, alerts AlertService) *ScoreHandler {
	if engine == nil {
		panic("risk engine is required")
	}
	if alerts == nil {
		panic("alert service is required")
	}
	return &ScoreHandler{engine: engine, alerts: alerts}
}

// PaymentRequest is the JSON body of a payment to score.
type PaymentRequest struct {
	EventID      string   `json:"event_id" validate:"omitempty,max=64"`
	Ts           string   `json:"ts"`
	SrcIBAN      string   `json:"src_account_iban" validate:"required,iban"`
	DstIBAN      string   `json:"dst_account_iban" validate:"required,iban"`
	Amount       *float64 `json:"amount" validate:"required,gt=0"`
	Currency     string   `json:"currency" validate:"required,len=3"`
	Channel      string   `json:"channel" validate:"required,channel"`
	FirstToPayee bool     `json:"is_first_to_payee"`
	DeviceFP     string   `json:"device_fp" validate:"max=256"`
	Description  string   `json:"description" validate:"max=2000"`
}

// Event converts the request. An unparseable timestamp is left zero so the
// engine substitutes its own clock.
func (r PaymentRequest) Event() risk.PaymentEvent {
	ts, _ := risk.ParseTimestamp(r.Ts)
	var amount float64
	if r.Amount != nil {
		amount = *r.Amount
	}
	return risk.PaymentEvent{
		ID:                strings.TrimSpace(r.EventID),
		Timestamp:         ts,
		SourceIBAN:        normalizeIBAN(r.SrcIBAN),
		DestinationIBAN:   normalizeIBAN(r.DstIBAN),
		Amount:            amount,
		Currency:          strings.ToUpper(r.Currency),
		Channel:           risk.Channel(strings.ToLower(r.Channel)),
		FirstToPayee:      r.FirstToPayee,
		DeviceFingerprint: r.DeviceFP,
		Memo:              r.Description,
	}
}

type ScoreResponse struct {
	ID             uint        `json:"id,omitempty"`
	EventID        string      `json:"event_id"`
	RiskScore      float64     `json:"risk_score"`
	Action         risk.Action `json:"action"`
	Reasons        []string    `json:"reasons"`
	CooloffMinutes int         `json:"cooloff_minutes"`
}

// ScorePayment scores a payment and records the decision. A failure to
// persist is logged; the caller still gets the verdict.
func (h *ScoreHandler) ScorePayment(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return response.ValidationError(c, err)
	}

	ctx := c.UserContext()
	ev := req.Event()
	a := h.engine.Score(ctx, ev)

	id, err := h.alerts.Record(ctx, ev, a)
	if err != nil {
		logging.L(ctx).Error("failed to record assessment",
			slog.String("event_id", a.EventID),
			slog.String("action", string(a.Action)),
			slog.Any("error", err))
	}

	reasons := a.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return response.Success(c, ScoreResponse{
		ID:             id,
		EventID:        a.EventID,
		RiskScore:      a.Score,
		Action:         a.Action,
		Reasons:        reasons,
		CooloffMinutes: a.CooloffMinutes,
	})
}

func normalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}
