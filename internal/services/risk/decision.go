package risk

import "strings"

// OverrideSource identifies who is changing a stored action.
type OverrideSource string

const (
	OverrideInitial  OverrideSource = "initial"
	OverrideOperator OverrideSource = "operator"
	OverrideQuiz     OverrideSource = "quiz"
)

// OperatorDecision is an analyst's verdict on an alert.
type OperatorDecision string

const (
	DecisionRelease OperatorDecision = "release"
	DecisionCancel  OperatorDecision = "cancel"
)

func ParseOperatorDecision(s string) (OperatorDecision, error) {
	switch d := OperatorDecision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionRelease, DecisionCancel:
		return d, nil
	}
	return "", ErrInvalidDecision
}

// Action is the payment action the verdict maps to.
func (d OperatorDecision) Action() Action {
	if d == DecisionCancel {
		return ActionHold
	}
	return ActionAllow
}

var allowedTargets = map[OverrideSource][]Action{
	OverrideInitial:  {ActionAllow, ActionWarn, ActionHold},
	OverrideOperator: {ActionAllow, ActionHold},
	OverrideQuiz:     {ActionAllow, ActionWarn, ActionHold},
}

// Transition validates a change of a payment's action. Scoring moves a
// pending payment to any verdict. Overrides apply to scored payments only;
// operators can release or hold, the quiz can also warn.
func Transition(from, to Action, source OverrideSource) (Action, error) {
	switch to {
	case ActionAllow, ActionWarn, ActionHold:
	default:
		return from, ErrUnknownAction
	}

	if source == OverrideInitial {
		if from != ActionPending {
			return from, ErrInvalidTransition
		}
	} else {
		switch from {
		case ActionAllow, ActionWarn, ActionHold:
		default:
			return from, ErrInvalidTransition
		}
	}

	for _, a := range allowedTargets[source] {
		if a == to {
			return to, nil
		}
	}
	return from, ErrInvalidTransition
}
