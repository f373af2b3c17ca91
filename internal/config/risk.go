package config

import (
	"fmt"
	"strings"

	"scamshield/internal/services/risk"

	"github.com/spf13/viper"
)

// LoadRiskConfig reads the engine tunables. Defaults come from
// risk.DefaultConfig, an optional YAML/JSON/TOML file at path overrides
// them, and RISK_* environment variables override both
// (for example RISK_VELOCITY_WINDOW=30m or RISK_BLEND_HOLD_THRESHOLD=70).
func LoadRiskConfig(path string) (risk.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setRiskDefaults(v, risk.DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return risk.Config{}, fmt.Errorf("read risk config %s: %w", path, err)
		}
	}

	var cfg risk.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return risk.Config{}, fmt.Errorf("decode risk config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return risk.Config{}, err
	}
	return cfg, nil
}

func setRiskDefaults(v *viper.Viper, d risk.Config) {
	defaults := map[string]any{
		"rules.amount_warn_threshold": d.Rules.AmountWarnThreshold,
		"rules.amount_hold_threshold": d.Rules.AmountHoldThreshold,
		"rules.amount_warn_weight":    d.Rules.AmountWarnWeight,
		"rules.amount_hold_weight":    d.Rules.AmountHoldWeight,
		"rules.first_to_payee_weight": d.Rules.FirstToPayeeWeight,
		"rules.payee_mismatch_weight": d.Rules.PayeeMismatchWeight,
		"rules.watchlist_weight":      d.Rules.WatchlistWeight,

		"text.phrases":  d.Text.Phrases,
		"text.keywords": d.Text.Keywords,
		"text.cap":      d.Text.Cap,

		"velocity.window":                    d.Velocity.Window,
		"velocity.retention":                 d.Velocity.Retention,
		"velocity.max_new_payees":            d.Velocity.MaxNewPayees,
		"velocity.payee_base_penalty":        d.Velocity.PayeeBasePenalty,
		"velocity.payee_step_penalty":        d.Velocity.PayeeStepPenalty,
		"velocity.payee_penalty_cap":         d.Velocity.PayeePenaltyCap,
		"velocity.max_total_amount":          d.Velocity.MaxTotalAmount,
		"velocity.amount_base_penalty":       d.Velocity.AmountBasePenalty,
		"velocity.amount_step_size":          d.Velocity.AmountStepSize,
		"velocity.amount_max_steps":          d.Velocity.AmountMaxSteps,
		"velocity.first_to_payee_penalty":    d.Velocity.FirstToPayeePenalty,
		"velocity.first_to_payee_load_ratio": d.Velocity.FirstToPayeeLoadRatio,
		"velocity.cap":                       d.Velocity.Cap,

		"mule.scoring_window":      d.Mule.ScoringWindow,
		"mule.retention":           d.Mule.Retention,
		"mule.source_weight":       d.Mule.SourceWeight,
		"mule.source_cap":          d.Mule.SourceCap,
		"mule.inbound_weight":      d.Mule.InboundWeight,
		"mule.inbound_cap":         d.Mule.InboundCap,
		"mule.fan_out_weight":      d.Mule.FanOutWeight,
		"mule.fan_out_cap":         d.Mule.FanOutCap,
		"mule.recent_limit":        d.Mule.RecentLimit,
		"mule.reason_threshold":    d.Mule.ReasonThreshold,
		"mule.watchlist_threshold": d.Mule.WatchlistThreshold,

		"blend.rule_weight":          d.Blend.RuleWeight,
		"blend.model_weight":         d.Blend.ModelWeight,
		"blend.warn_threshold":       d.Blend.WarnThreshold,
		"blend.hold_threshold":       d.Blend.HoldThreshold,
		"blend.warn_cooloff_minutes": d.Blend.WarnCooloffMinutes,
		"blend.hold_cooloff_minutes": d.Blend.HoldCooloffMinutes,

		"quiz.called_by_bank_weight":   d.Quiz.CalledByBankWeight,
		"quiz.asked_to_invest_weight":  d.Quiz.AskedToInvestWeight,
		"quiz.remote_access_weight":    d.Quiz.RemoteAccessWeight,
		"quiz.unverified_payee_weight": d.Quiz.UnverifiedPayeeWeight,
		"quiz.cancel_threshold":        d.Quiz.CancelThreshold,
		"quiz.warn_threshold":          d.Quiz.WarnThreshold,
	}
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
}
