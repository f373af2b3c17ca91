package risk

import "errors"

// Service errors
var (
	ErrInvalidConfig     = errors.New("invalid risk configuration")
	ErrInvalidWindow     = errors.New("window must be between 1 and 168 hours")
	ErrInvalidLimit      = errors.New("limit must be between 1 and 50")
	ErrUnknownAction     = errors.New("unknown action")
	ErrInvalidDecision   = errors.New("decision must be 'release' or 'cancel'")
	ErrInvalidTransition = errors.New("action transition not allowed")
	ErrEmptyAccount      = errors.New("account identifier is required")
)
