/*
Package risk scores outgoing payments for authorized-push-payment scam and
money-mule risk.

The engine combines:
- Static rules (amount tiers, first payment to a payee, payee-name mismatch, watchlist)
- Memo keyword and phrase signals
- Per-source velocity over a sliding window
- Per-destination fan-in/fan-out (mule) analysis over a sliding window
- An optional model probability blended with the rule score

Usage:

	store := window.NewMemoryStore()
	engine, err := risk.NewEngine(risk.DefaultConfig(), store,
	    risk.WithPayeeChecker(registry),
	    risk.WithWatchlist(watchlist),
	    risk.WithModel(model),
	)

	assessment := engine.Score(ctx, risk.PaymentEvent{...})

Score never fails. Each collaborator that errors or times out falls back to
"no signal"; the fallback is logged, counted and listed in
Assessment.Signals.Degraded.

Actions:

Scores at or above 60 hold the payment for 30 minutes, scores at or above 30
warn with a 15 minute cool-off, everything else is allowed. Operators and the
friction quiz may later override a stored action; Transition enforces which
overrides are allowed.

Concurrency:

Window state lives in a window.Store. Record, prune and read for a single
account run under a per-account lock, so concurrent events for the same
account never lose increments.
*/
package risk
