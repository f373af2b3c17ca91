package risk

// RuleInput is what the static rules look at. OnWatchlist already folds in
// the mule escalation.
type RuleInput struct {
	Amount        float64
	FirstToPayee  bool
	PayeeMismatch bool
	OnWatchlist   bool
}

// RuleScorer applies the fixed amount, first-payment, payee and watchlist rules.
type RuleScorer struct {
	cfg RuleConfig
}

func NewRuleScorer(cfg RuleConfig) *RuleScorer {
	return &RuleScorer{cfg: cfg}
}

// Score never fails. The amount tiers are strict and mutually exclusive.
func (s *RuleScorer) Score(in RuleInput) Contribution {
	var c Contribution

	switch {
	case in.Amount > s.cfg.AmountHoldThreshold:
		c.add(s.cfg.AmountHoldWeight, "Very high amount")
	case in.Amount > s.cfg.AmountWarnThreshold:
		c.add(s.cfg.AmountWarnWeight, "High amount")
	}
	if in.FirstToPayee {
		c.add(s.cfg.FirstToPayeeWeight, "First payment to beneficiary")
	}
	if in.PayeeMismatch {
		c.add(s.cfg.PayeeMismatchWeight, "Name/IBAN mismatch (simulated CoP)")
	}
	if in.OnWatchlist {
		c.add(s.cfg.WatchlistWeight, ReasonWatchlist)
	}

	return c
}

// ReasonWatchlist is emitted at most once per assessment.
const ReasonWatchlist = "Beneficiary on watchlist"
