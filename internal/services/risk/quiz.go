package risk

// QuizAnswers are the customer's answers to the friction questionnaire.
type QuizAnswers struct {
	CalledByBank        bool   `json:"was_called_by_someone_claiming_bank"`
	AskedToInvest       bool   `json:"was_asked_to_invest_or_crypto"`
	RemoteAccess        bool   `json:"screen_sharing_or_remote_access"`
	VerifiedBeneficiary bool   `json:"verified_beneficiary_yourself"`
	Notes               string `json:"notes,omitempty"`
}

// QuizDecision is the questionnaire verdict.
type QuizDecision string

const (
	QuizRelease QuizDecision = "release"
	QuizWarn    QuizDecision = "warn"
	QuizCancel  QuizDecision = "cancel"
)

// Action is the payment action the verdict maps to.
func (d QuizDecision) Action() Action {
	switch d {
	case QuizCancel:
		return ActionHold
	case QuizWarn:
		return ActionWarn
	default:
		return ActionAllow
	}
}

// QuizResult is the questionnaire outcome.
type QuizResult struct {
	Score    int          `json:"score"`
	Decision QuizDecision `json:"decision"`
	Reasons  []string     `json:"reasons"`
}

// QuizReScorer scores self-declared answers for a flagged payment.
type QuizReScorer struct {
	cfg QuizConfig
}

func NewQuizReScorer(cfg QuizConfig) *QuizReScorer {
	return &QuizReScorer{cfg: cfg}
}

func (q *QuizReScorer) Score(a QuizAnswers) QuizResult {
	res := QuizResult{Reasons: []string{}}
	add := func(hit bool, weight int, reason string) {
		if hit {
			res.Score += weight
			res.Reasons = append(res.Reasons, reason)
		}
	}

	add(a.CalledByBank, q.cfg.CalledByBankWeight, "Caller claimed to be from bank")
	add(a.AskedToInvest, q.cfg.AskedToInvestWeight, "Asked to invest/crypto")
	add(a.RemoteAccess, q.cfg.RemoteAccessWeight, "Screen sharing / remote access")
	add(!a.VerifiedBeneficiary, q.cfg.UnverifiedPayeeWeight, "Beneficiary not verified personally")

	switch {
	case res.Score >= q.cfg.CancelThreshold:
		res.Decision = QuizCancel
	case res.Score >= q.cfg.WarnThreshold:
		res.Decision = QuizWarn
	default:
		res.Decision = QuizRelease
	}
	return res
}
