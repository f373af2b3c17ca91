package risk

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action is the engine's verdict for a payment.
type Action string

const (
	ActionPending Action = "pending"
	ActionAllow   Action = "allow"
	ActionWarn    Action = "warn"
	ActionHold    Action = "hold"
)

// ParseAction accepts the three verdicts, case-insensitively.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionAllow, ActionWarn, ActionHold:
		return a, nil
	}
	return "", ErrUnknownAction
}

// Channel is the origination channel of a payment.
type Channel string

const (
	ChannelWeb    Channel = "web"
	ChannelMobile Channel = "mobile"
	ChannelBranch Channel = "branch"
)

// Channels lists the supported channels in model feature order.
var Channels = []Channel{ChannelWeb, ChannelMobile, ChannelBranch}

// Valid reports whether c is a supported channel.
func (c Channel) Valid() bool {
	for _, known := range Channels {
		if c == known {
			return true
		}
	}
	return false
}

// PaymentEvent is one outgoing payment submitted for scoring. A zero
// Timestamp means the caller could not supply one and the engine clock is
// used instead.
type PaymentEvent struct {
	ID                string
	Timestamp         time.Time
	SourceIBAN        string
	DestinationIBAN   string
	Amount            float64
	Currency          string
	Channel           Channel
	FirstToPayee      bool
	DeviceFingerprint string
	Memo              string
}

// Features is the normalized, read-only view of an event that every scorer
// consumes.
type Features struct {
	EventID           string
	At                time.Time
	Source            string
	Destination       string
	Amount            float64
	Currency          string
	Channel           Channel
	FirstToPayee      bool
	DeviceFingerprint string
	Memo              string
}

// NewFeatures normalizes an event. A missing timestamp resolves to now and a
// missing ID gets a fresh one so the event can be recorded idempotently.
func NewFeatures(ev PaymentEvent, now time.Time) Features {
	at := ev.Timestamp
	if at.IsZero() {
		at = now
	}
	id := ev.ID
	if id == "" {
		id = uuid.NewString()
	}
	return Features{
		EventID:           id,
		At:                at.UTC(),
		Source:            strings.TrimSpace(ev.SourceIBAN),
		Destination:       strings.TrimSpace(ev.DestinationIBAN),
		Amount:            ev.Amount,
		Currency:          strings.ToUpper(ev.Currency),
		Channel:           Channel(strings.ToLower(string(ev.Channel))),
		FirstToPayee:      ev.FirstToPayee,
		DeviceFingerprint: ev.DeviceFingerprint,
		Memo:              ev.Memo,
	}
}

// scorableAmount maps negative and non-finite amounts to zero so no amount
// rule fires on them.
func (f Features) scorableAmount() float64 {
	if math.IsNaN(f.Amount) || math.IsInf(f.Amount, 0) || f.Amount < 0 {
		return 0
	}
	return f.Amount
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	timestampLayout,
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses ISO-8601 timestamps with or without a zone suffix.
// Zone-less values are taken as UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way it is reported back to callers.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Contribution is a partial score with the reasons that produced it.
type Contribution struct {
	Score   float64
	Reasons []string
}

func (c *Contribution) add(points float64, reason string) {
	c.Score += points
	c.Reasons = append(c.Reasons, reason)
}

// PayeeStatus is the outcome of a confirmation-of-payee lookup.
type PayeeStatus string

const (
	PayeeMatch    PayeeStatus = "match"
	PayeeMismatch PayeeStatus = "mismatch"
	PayeeUnknown  PayeeStatus = "unknown"
)

// PayeeCheck is a typed confirmation-of-payee result.
type PayeeCheck struct {
	Status  PayeeStatus `json:"status"`
	Message string      `json:"message"`
}

// Passed is false only for a confirmed mismatch.
func (p PayeeCheck) Passed() bool {
	return p.Status != PayeeMismatch
}

// VelocityStats is the per-source window snapshot.
type VelocityStats struct {
	DistinctPayees int     `json:"distinct_payees"`
	TotalAmount    float64 `json:"total_amount"`
}

// MuleStats is the fan-in/fan-out snapshot of one account.
type MuleStats struct {
	IBAN               string   `json:"iban"`
	Hours              int      `json:"hours"`
	MuleScore          int      `json:"mule_score"`
	FanInUnique        int      `json:"fan_in_unique"`
	TxInCount          int      `json:"tx_in_count"`
	FanOutUnique       int      `json:"fan_out_unique"`
	TxOutCount         int      `json:"tx_out_count"`
	RecentSources      []string `json:"recent_sources"`
	RecentDestinations []string `json:"recent_dests"`
}

// Signals records every intermediate input to a decision.
type Signals struct {
	PayeeCheck     PayeeCheck    `json:"payee_check"`
	Watchlisted    bool          `json:"watchlisted"`
	OnWatchlist    bool          `json:"on_watchlist"`
	MuleScore      int           `json:"mule_score"`
	Velocity       VelocityStats `json:"velocity"`
	RuleScore      float64       `json:"rule_score"`
	TextScore      float64       `json:"text_score"`
	VelocityScore  float64       `json:"velocity_score"`
	Probability    float64       `json:"ml_p,omitempty"`
	HasProbability bool          `json:"ml_available"`
	Degraded       []string      `json:"degraded,omitempty"`
}

// Assessment is the outcome of scoring one payment.
type Assessment struct {
	EventID        string    `json:"event_id"`
	Score          float64   `json:"risk_score"`
	Action         Action    `json:"action"`
	Reasons        []string  `json:"reasons"`
	CooloffMinutes int       `json:"cooloff_minutes"`
	Signals        Signals   `json:"signals"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}
