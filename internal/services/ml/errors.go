package ml

import "errors"

var (
	ErrModelNotLoaded  = errors.New("model not loaded")
	ErrInvalidArtifact = errors.New("invalid model artifact")
)
