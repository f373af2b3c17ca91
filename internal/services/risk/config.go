package risk

import (
	"fmt"
	"time"
)

// Term is a weighted memo keyword or phrase.
type Term struct {
	Text   string  `mapstructure:"text" json:"text"`
	Weight float64 `mapstructure:"weight" json:"weight"`
}

// RuleConfig holds the static rule thresholds and weights.
type RuleConfig struct {
	AmountWarnThreshold float64 `mapstructure:"amount_warn_threshold"`
	AmountHoldThreshold float64 `mapstructure:"amount_hold_threshold"`
	AmountWarnWeight    float64 `mapstructure:"amount_warn_weight"`
	AmountHoldWeight    float64 `mapstructure:"amount_hold_weight"`
	FirstToPayeeWeight  float64 `mapstructure:"first_to_payee_weight"`
	PayeeMismatchWeight float64 `mapstructure:"payee_mismatch_weight"`
	WatchlistWeight     float64 `mapstructure:"watchlist_weight"`
}

// TextConfig holds the memo scanner vocabulary. Phrases are checked before
// keywords and both lists keep their configured order.
type TextConfig struct {
	Phrases  []Term  `mapstructure:"phrases"`
	Keywords []Term  `mapstructure:"keywords"`
	Cap      float64 `mapstructure:"cap"`
}

// VelocityConfig holds the per-source sliding window limits.
type VelocityConfig struct {
	Window                time.Duration `mapstructure:"window"`
	Retention             time.Duration `mapstructure:"retention"`
	MaxNewPayees          int           `mapstructure:"max_new_payees"`
	PayeeBasePenalty      float64       `mapstructure:"payee_base_penalty"`
	PayeeStepPenalty      float64       `mapstructure:"payee_step_penalty"`
	PayeePenaltyCap       float64       `mapstructure:"payee_penalty_cap"`
	MaxTotalAmount        float64       `mapstructure:"max_total_amount"`
	AmountBasePenalty     float64       `mapstructure:"amount_base_penalty"`
	AmountStepSize        float64       `mapstructure:"amount_step_size"`
	AmountMaxSteps        float64       `mapstructure:"amount_max_steps"`
	FirstToPayeePenalty   float64       `mapstructure:"first_to_payee_penalty"`
	FirstToPayeeLoadRatio float64       `mapstructure:"first_to_payee_load_ratio"`
	Cap                   float64       `mapstructure:"cap"`
}

// MuleConfig holds the fan-in/fan-out scoring weights and windows.
type MuleConfig struct {
	ScoringWindow      time.Duration `mapstructure:"scoring_window"`
	Retention          time.Duration `mapstructure:"retention"`
	SourceWeight       int           `mapstructure:"source_weight"`
	SourceCap          int           `mapstructure:"source_cap"`
	InboundWeight      int           `mapstructure:"inbound_weight"`
	InboundCap         int           `mapstructure:"inbound_cap"`
	FanOutWeight       int           `mapstructure:"fan_out_weight"`
	FanOutCap          int           `mapstructure:"fan_out_cap"`
	RecentLimit        int           `mapstructure:"recent_limit"`
	ReasonThreshold    int           `mapstructure:"reason_threshold"`
	WatchlistThreshold int           `mapstructure:"watchlist_threshold"`
}

// BlendConfig holds the model blend weights and the action bands.
type BlendConfig struct {
	RuleWeight         float64 `mapstructure:"rule_weight"`
	ModelWeight        float64 `mapstructure:"model_weight"`
	WarnThreshold      float64 `mapstructure:"warn_threshold"`
	HoldThreshold      float64 `mapstructure:"hold_threshold"`
	WarnCooloffMinutes int     `mapstructure:"warn_cooloff_minutes"`
	HoldCooloffMinutes int     `mapstructure:"hold_cooloff_minutes"`
}

// QuizConfig holds the self-declared questionnaire weights.
type QuizConfig struct {
	CalledByBankWeight    int `mapstructure:"called_by_bank_weight"`
	AskedToInvestWeight   int `mapstructure:"asked_to_invest_weight"`
	RemoteAccessWeight    int `mapstructure:"remote_access_weight"`
	UnverifiedPayeeWeight int `mapstructure:"unverified_payee_weight"`
	CancelThreshold       int `mapstructure:"cancel_threshold"`
	WarnThreshold         int `mapstructure:"warn_threshold"`
}

// Config bundles every tunable of the engine.
type Config struct {
	Rules    RuleConfig     `mapstructure:"rules"`
	Text     TextConfig     `mapstructure:"text"`
	Velocity VelocityConfig `mapstructure:"velocity"`
	Mule     MuleConfig     `mapstructure:"mule"`
	Blend    BlendConfig    `mapstructure:"blend"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
}

// DefaultConfig returns the production weights.
func DefaultConfig() Config {
	return Config{
		Rules: RuleConfig{
			AmountWarnThreshold: 5000,
			AmountHoldThreshold: 10000,
			AmountWarnWeight:    25,
			AmountHoldWeight:    35,
			FirstToPayeeWeight:  15,
			PayeeMismatchWeight: 20,
			WatchlistWeight:     30,
		},
		Text: TextConfig{
			Phrases: []Term{
				{"investment opportunity", 12},
				{"crypto exchange", 12},
				{"fast profit", 10},
				{"tax refund", 10},
				{"urgent transfer", 9},
			},
			Keywords: []Term{
				{"invest", 10},
				{"investment", 10},
				{"crypto", 12},
				{"bitcoin", 12},
				{"nft", 10},
				{"urgent", 8},
				{"tax", 6},
				{"refund", 6},
				{"donation", 6},
				{"loan", 6},
				{"broker", 8},
				{"exchange", 8},
				{"profit", 8},
				{"fast", 5},
				{"quick", 5},
				{"gift", 4},
				{"giveaway", 6},
				{"love", 4},
				{"romance", 6},
			},
			Cap: 30,
		},
		Velocity: VelocityConfig{
			Window:                time.Hour,
			Retention:             2 * time.Hour,
			MaxNewPayees:          3,
			PayeeBasePenalty:      10,
			PayeeStepPenalty:      5,
			PayeePenaltyCap:       35,
			MaxTotalAmount:        50000,
			AmountBasePenalty:     10,
			AmountStepSize:        5000,
			AmountMaxSteps:        10,
			FirstToPayeePenalty:   10,
			FirstToPayeeLoadRatio: 0.7,
			Cap:                   35,
		},
		Mule: MuleConfig{
			ScoringWindow:      24 * time.Hour,
			Retention:          MaxStatsWindow,
			SourceWeight:       10,
			SourceCap:          60,
			InboundWeight:      2,
			InboundCap:         30,
			FanOutWeight:       2,
			FanOutCap:          10,
			RecentLimit:        5,
			ReasonThreshold:    60,
			WatchlistThreshold: 80,
		},
		Blend: BlendConfig{
			RuleWeight:         0.6,
			ModelWeight:        0.4,
			WarnThreshold:      30,
			HoldThreshold:      60,
			WarnCooloffMinutes: 15,
			HoldCooloffMinutes: 30,
		},
		Quiz: QuizConfig{
			CalledByBankWeight:    20,
			AskedToInvestWeight:   20,
			RemoteAccessWeight:    25,
			UnverifiedPayeeWeight: 15,
			CancelThreshold:       40,
			WarnThreshold:         20,
		},
	}
}

// Validate rejects configurations the scorers cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Rules.AmountHoldThreshold < c.Rules.AmountWarnThreshold:
		return fmt.Errorf("%w: amount hold threshold below warn threshold", ErrInvalidConfig)
	case c.Velocity.Window <= 0:
		return fmt.Errorf("%w: velocity window must be positive", ErrInvalidConfig)
	case c.Velocity.Retention < 2*c.Velocity.Window:
		return fmt.Errorf("%w: velocity retention must be at least twice the window", ErrInvalidConfig)
	case c.Velocity.AmountStepSize <= 0:
		return fmt.Errorf("%w: velocity amount step must be positive", ErrInvalidConfig)
	case c.Mule.ScoringWindow <= 0 || c.Mule.Retention < c.Mule.ScoringWindow:
		return fmt.Errorf("%w: mule retention must cover the scoring window", ErrInvalidConfig)
	case c.Mule.Retention < MaxStatsWindow:
		return fmt.Errorf("%w: mule retention must cover %s of queries", ErrInvalidConfig, MaxStatsWindow)
	case c.Blend.HoldThreshold < c.Blend.WarnThreshold:
		return fmt.Errorf("%w: hold threshold below warn threshold", ErrInvalidConfig)
	case c.Blend.RuleWeight < 0 || c.Blend.ModelWeight < 0:
		return fmt.Errorf("%w: blend weights must be non-negative", ErrInvalidConfig)
	case c.Quiz.CancelThreshold < c.Quiz.WarnThreshold:
		return fmt.Errorf("%w: quiz cancel threshold below warn threshold", ErrInvalidConfig)
	}
	return nil
}
