package risk

import (
	"fmt"
	"math"
)

// ScoreBlender combines the rule score with the model probability and maps
// the result to an action band.
type ScoreBlender struct {
	cfg BlendConfig
}

func NewScoreBlender(cfg BlendConfig) *ScoreBlender {
	return &ScoreBlender{cfg: cfg}
}

// Blend returns the final score. Without a usable probability the rule score
// passes through unchanged and the reason is empty.
func (b *ScoreBlender) Blend(ruleScore, probability float64, ok bool) (float64, string) {
	if !ok || math.IsNaN(probability) {
		return ruleScore, ""
	}
	p := clamp(probability, 0, 1)
	normalized := math.Min(ruleScore/100, 1)
	modelPart := 100 * b.cfg.ModelWeight * p
	final := 100*b.cfg.RuleWeight*normalized + modelPart

	return final, fmt.Sprintf("ML: p_scam=%.2f (+%.1f)", p, modelPart)
}

// Action maps a score to its band. Boundaries are inclusive on the upper band.
func (b *ScoreBlender) Action(score float64) (Action, int) {
	switch {
	case score >= b.cfg.HoldThreshold:
		return ActionHold, b.cfg.HoldCooloffMinutes
	case score >= b.cfg.WarnThreshold:
		return ActionWarn, b.cfg.WarnCooloffMinutes
	default:
		return ActionAllow, 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
