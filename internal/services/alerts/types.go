package alerts

import (
	"time"

	"scamshield/internal/services/risk"
)

const (
	DefaultLimit    = 100
	MaxLimit        = 500
	MaxExportRows   = 10000
	reasonSeparator = "; "
)

// Filter selects alerts. Since is parsed leniently; an unparseable value
// is ignored.
type Filter struct {
	Action  string
	DstIBAN string
	Since   string
	Limit   int
	Offset  int
}

// Alert is a non-allow assessment as shown to operators.
type Alert struct {
	ID              uint        `json:"id"`
	Ts              time.Time   `json:"ts"`
	SourceIBAN      string      `json:"src_account_iban"`
	DestinationIBAN string      `json:"dst_account_iban"`
	Amount          float64     `json:"amount"`
	Currency        string      `json:"currency"`
	Channel         string      `json:"channel"`
	Action          risk.Action `json:"action"`
	Reasons         []string    `json:"reasons"`
}

// Override is the outcome of an operator decision.
type Override struct {
	ID             uint        `json:"id"`
	PreviousAction risk.Action `json:"previous_action"`
	NewAction      risk.Action `json:"new_action"`
}

// QuizOutcome is the outcome of a questionnaire submitted for an alert.
type QuizOutcome struct {
	ID             uint        `json:"id"`
	PreviousAction risk.Action `json:"previous_action"`
	NewAction      risk.Action `json:"new_action"`
	Score          int         `json:"score"`
	Reasons        []string    `json:"reasons"`
}

// Stats summarizes every recorded assessment.
type Stats struct {
	TotalTx         int64              `json:"total_tx"`
	ByAction        map[string]int64   `json:"by_action"`
	Percent         map[string]float64 `json:"percent"`
	LossesPrevented float64            `json:"losses_prevented_RON"`
}
