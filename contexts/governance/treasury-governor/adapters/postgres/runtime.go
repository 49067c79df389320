package postgresadapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

// IntervalHeight derives a block height from wall time: one block per
// Interval since Genesis, starting at height 1.
type IntervalHeight struct {
	Genesis  time.Time
	Interval time.Duration
	Clock    interface{ Now() time.Time }
}

func (h IntervalHeight) Height() uint64 {
	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock.Now()
	}
	if h.Interval <= 0 || !now.After(h.Genesis) {
		return 1
	}
	return uint64(now.Sub(h.Genesis)/h.Interval) + 1
}
