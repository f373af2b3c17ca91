package events

import (
	"time"

	"scamshield/internal/services/risk"
)

// AssessmentEvent is published for every warn or hold verdict.
type AssessmentEvent struct {
	AlertID         uint        `json:"alert_id"`
	EventID         string      `json:"event_id"`
	Action          risk.Action `json:"action"`
	RiskScore       float64     `json:"risk_score"`
	Reasons         []string    `json:"reasons"`
	DestinationIBAN string      `json:"dst_iban"`
	OccurredAt      time.Time   `json:"occurred_at"`
}

// OverrideEvent is published when an operator or a quiz changes an action.
type OverrideEvent struct {
	AlertID        uint                `json:"alert_id"`
	Source         risk.OverrideSource `json:"source"`
	PreviousAction risk.Action         `json:"previous_action"`
	NewAction      risk.Action         `json:"new_action"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

func AssessmentRoutingKey(a risk.Action) string {
	return "risk.assessment." + string(a)
}

func OverrideRoutingKey(s risk.OverrideSource) string {
	return "risk.override." + string(s)
}
