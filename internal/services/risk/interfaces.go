package risk

import (
	"context"
	"time"
)

// PayeeChecker performs a confirmation-of-payee lookup for a destination.
// The memo carries the name the customer typed, if any.
type PayeeChecker interface {
	CheckPayee(ctx context.Context, iban, memo string) (PayeeCheck, error)
}

// WatchlistLookup reports whether an account is on the static watchlist.
type WatchlistLookup interface {
	Contains(ctx context.Context, iban string) (bool, error)
}

// ProbabilityModel returns a scam probability in [0,1]. The boolean is false
// when no model is loaded or prediction failed.
type ProbabilityModel interface {
	Predict(ctx context.Context, f Features) (float64, bool)
}

// MetricsCollector defines the interface for collecting engine metrics
type MetricsCollector interface {
	RecordAssessment(action Action, duration time.Duration)
	RecordFallback(collaborator string)
	RecordOverride(source OverrideSource, action Action)
	RecordMuleScore(score int)
}
