package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextSignalScorer_Score(t *testing.T) {
	scorer := NewTextSignalScorer(DefaultConfig().Text)

	tests := []struct {
		name        string
		memo        string
		wantScore   float64
		wantReasons []string
	}{
		{
			name:      "empty memo",
			memo:      "",
			wantScore: 0,
		},
		{
			name:      "benign memo",
			memo:      "rent for september",
			wantScore: 0,
		},
		{
			name:        "single keyword is case-insensitive",
			memo:        "BITCOIN purchase",
			wantScore:   12,
			wantReasons: []string{"Keyword: 'bitcoin'"},
		},
		{
			name:        "overlapping keywords all count",
			memo:        "investment",
			wantScore:   20,
			wantReasons: []string{"Keyword: 'invest'", "Keyword: 'investment'"},
		},
		{
			name:      "phrases come before keywords and total is capped",
			memo:      "urgent transfer to crypto exchange",
			wantScore: 30,
			wantReasons: []string{
				"Keyword: 'crypto exchange'",
				"Keyword: 'urgent transfer'",
				"Keyword: 'crypto'",
				"Keyword: 'urgent'",
				"Keyword: 'exchange'",
			},
		},
		{
			name:        "substring match inside a longer word",
			memo:        "taxi fare",
			wantScore:   6,
			wantReasons: []string{"Keyword: 'tax'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.memo)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantReasons, got.Reasons)
		})
	}
}

func TestTextSignalScorer_Monotonic(t *testing.T) {
	scorer := NewTextSignalScorer(DefaultConfig().Text)
	memo := "payment"
	prev := scorer.Score(memo).Score

	for _, word := range []string{" gift", " loan", " romance", " broker", " nft", " profit", " quick"} {
		memo += word
		got := scorer.Score(memo).Score
		assert.GreaterOrEqual(t, got, prev, "adding %q lowered the score", word)
		assert.LessOrEqual(t, got, 30.0)
		prev = got
	}
}
