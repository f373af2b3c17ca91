package alerts

import "scamshield/internal/services/risk"

// QuizScorer scores questionnaire answers. *risk.Engine implements it.
type QuizScorer interface {
	ScoreQuiz(a risk.QuizAnswers) risk.QuizResult
}
