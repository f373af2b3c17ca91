package risk

import (
	"context"
	"errors"
	"time"

	"scamshield/internal/repositories/window"
)

var base = time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func payment(id, src, dst string, amount float64, at time.Time) Features {
	return NewFeatures(PaymentEvent{
		ID:              id,
		Timestamp:       at,
		SourceIBAN:      src,
		DestinationIBAN: dst,
		Amount:          amount,
		Currency:        "RON",
		Channel:         ChannelWeb,
	}, at)
}

var errStoreDown = errors.New("store down")

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Write(context.Context, ...window.Write) error {
	return errStoreDown
}

func (brokenStore) Prune(context.Context, string, time.Time) error {
	return errStoreDown
}

func (brokenStore) Range(context.Context, string, time.Time, time.Time) ([]window.Entry, error) {
	return nil, errStoreDown
}
