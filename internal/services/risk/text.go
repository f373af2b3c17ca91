package risk

import (
	"fmt"
	"math"
	"strings"
)

// TextSignalScorer scans the payment memo for scam vocabulary.
type TextSignalScorer struct {
	terms []Term
	cap   float64
}

func NewTextSignalScorer(cfg TextConfig) *TextSignalScorer {
	terms := make([]Term, 0, len(cfg.Phrases)+len(cfg.Keywords))
	for _, t := range append(append([]Term{}, cfg.Phrases...), cfg.Keywords...) {
		if text := strings.ToLower(strings.TrimSpace(t.Text)); text != "" {
			terms = append(terms, Term{Text: text, Weight: t.Weight})
		}
	}
	return &TextSignalScorer{terms: terms, cap: cfg.Cap}
}

// Score matches every term as a case-insensitive substring. Overlapping
// terms each count. The total is capped; the reasons are not.
func (s *TextSignalScorer) Score(memo string) Contribution {
	var c Contribution
	if memo == "" {
		return c
	}

	lower := strings.ToLower(memo)
	for _, t := range s.terms {
		if strings.Contains(lower, t.Text) {
			c.add(t.Weight, fmt.Sprintf("Keyword: '%s'", t.Text))
		}
	}
	c.Score = math.Min(c.Score, s.cap)

	return c
}
