package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuizReScorer_Score(t *testing.T) {
	q := NewQuizReScorer(DefaultConfig().Quiz)

	tests := []struct {
		name         string
		answers      QuizAnswers
		wantScore    int
		wantDecision QuizDecision
		wantReasons  []string
	}{
		{
			name:         "clean answers",
			answers:      QuizAnswers{VerifiedBeneficiary: true},
			wantScore:    0,
			wantDecision: QuizRelease,
			wantReasons:  []string{},
		},
		{
			name:         "only unverified beneficiary",
			answers:      QuizAnswers{},
			wantScore:    15,
			wantDecision: QuizRelease,
			wantReasons:  []string{"Beneficiary not verified personally"},
		},
		{
			name:         "warn band",
			answers:      QuizAnswers{CalledByBank: true, VerifiedBeneficiary: true},
			wantScore:    20,
			wantDecision: QuizWarn,
			wantReasons:  []string{"Caller claimed to be from bank"},
		},
		{
			name:         "cancel boundary",
			answers:      QuizAnswers{CalledByBank: true, AskedToInvest: true, VerifiedBeneficiary: true},
			wantScore:    40,
			wantDecision: QuizCancel,
			wantReasons:  []string{"Caller claimed to be from bank", "Asked to invest/crypto"},
		},
		{
			name:         "everything",
			answers:      QuizAnswers{CalledByBank: true, AskedToInvest: true, RemoteAccess: true},
			wantScore:    80,
			wantDecision: QuizCancel,
			wantReasons: []string{
				"Caller claimed to be from bank",
				"Asked to invest/crypto",
				"Screen sharing / remote access",
				"Beneficiary not verified personally",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := q.Score(tt.answers)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantDecision, got.Decision)
			assert.Equal(t, tt.wantReasons, got.Reasons)
		})
	}
}

func TestQuizDecision_Action(t *testing.T) {
	assert.Equal(t, ActionAllow, QuizRelease.Action())
	assert.Equal(t, ActionWarn, QuizWarn.Action())
	assert.Equal(t, ActionHold, QuizCancel.Action())
}
