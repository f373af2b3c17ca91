package handlers

import (
	"time"

	"scamshield/internal/services/advisor"
	"scamshield/internal/services/risk"
	"scamshield/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// ExplainSignals mirrors the signals a client received from scoring.
// Missing values are neutral.
type ExplainSignals struct {
	CopOK       *bool    `json:"cop_ok"`
	MuleScore   int      `json:"mule_score"`
	Watchlisted bool     `json:"watchlisted"`
	MLP         *float64 `json:"ml_p"`
}

func (s ExplainSignals) toRisk() risk.Signals {
	out := risk.Signals{
		PayeeCheck:  risk.PayeeCheck{Status: risk.PayeeUnknown},
		MuleScore:   s.MuleScore,
		Watchlisted: s.Watchlisted,
	}
	if s.CopOK != nil {
		if *s.CopOK {
			out.PayeeCheck.Status = risk.PayeeMatch
		} else {
			out.PayeeCheck.Status = risk.PayeeMismatch
		}
	}
	if s.MLP != nil {
		out.Probability = *s.MLP
		out.HasProbability = true
	}
	return out
}

type ExplainRequest struct {
	Features PaymentRequest `json:"features"`
	Signals  ExplainSignals `json:"signals"`
}

type ExplainResponse struct {
	advisor.Explanation
	Payment advisor.Payment `json:"payment"`
}

// Explain returns an advisory explanation. It never touches stored state or
// the scoring pipeline.
func Explain(c *fiber.Ctx) error {
	var req ExplainRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	f := risk.NewFeatures(req.Features.Event(), time.Now())
	return response.Success(c, ExplainResponse{
		Explanation: advisor.Explain(req.Signals.toRisk()),
		Payment:     advisor.Redact(f),
	})
}

// QuizScore scores questionnaire answers without touching any alert.
func (h *ScoreHandler) QuizScore(c *fiber.Ctx) error {
	var answers risk.QuizAnswers
	if err := c.BodyParser(&answers); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	return response.Success(c, h.engine.ScoreQuiz(answers))
}
