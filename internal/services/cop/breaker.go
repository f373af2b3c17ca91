package cop

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"scamshield/internal/services/risk"

	"github.com/sony/gobreaker"
)

// ErrUnavailable means the breaker is open or the lookup timed out.
var ErrUnavailable = errors.New("payee check unavailable")

// BreakerSettings tunes the circuit breaker around a payee checker.
type BreakerSettings struct {
	Name         string
	Timeout      time.Duration
	OpenFor      time.Duration
	MinRequests  uint32
	FailureRatio float64
	// OnStateChange receives 0 for closed, 1 for half-open and 2 for open.
	OnStateChange func(name string, state int)
}

// Breaker guards a remote payee checker with a timeout and a circuit
// breaker so a slow or failing registry cannot stall scoring.
type Breaker struct {
	next    risk.PayeeChecker
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewBreaker(next risk.PayeeChecker, st BreakerSettings) *Breaker {
	if next == nil {
		panic("payee checker is required")
	}
	if st.Name == "" {
		st.Name = risk.CollaboratorPayeeCheck
	}
	if st.Timeout <= 0 {
		st.Timeout = 200 * time.Millisecond
	}
	if st.OpenFor <= 0 {
		st.OpenFor = 30 * time.Second
	}
	if st.MinRequests == 0 {
		st.MinRequests = 5
	}
	if st.FailureRatio <= 0 {
		st.FailureRatio = 0.5
	}

	settings := gobreaker.Settings{
		Name:    st.Name,
		Timeout: st.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= st.MinRequests && ratio >= st.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			if st.OnStateChange != nil {
				st.OnStateChange(name, int(to))
			}
		},
	}

	return &Breaker{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker(settings),
		timeout: st.Timeout,
	}
}

func (b *Breaker) CheckPayee(ctx context.Context, iban, memo string) (risk.PayeeCheck, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()

		check, err := b.next.CheckPayee(ctx, iban, memo)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		return check, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) ||
			errors.Is(err, context.DeadlineExceeded) {
			return risk.PayeeCheck{}, ErrUnavailable
		}
		return risk.PayeeCheck{}, err
	}
	return res.(risk.PayeeCheck), nil
}

// State reports the breaker state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
