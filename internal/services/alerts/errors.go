package alerts

import (
	"errors"

	"scamshield/internal/repositories"
)

// Service errors
var (
	ErrAssessmentNotFound = repositories.ErrAssessmentNotFound
	ErrConflict           = repositories.ErrStaleAction
	ErrInvalidFilter      = errors.New("invalid alert filter")
)
