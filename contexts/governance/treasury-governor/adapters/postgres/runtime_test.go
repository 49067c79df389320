package postgresadapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestIntervalHeightCountsElapsedBlocks(t *testing.T) {
	genesis := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	source := IntervalHeight{Genesis: genesis, Interval: 12 * time.Second}

	source.Clock = fixedClock{now: genesis}
	require.Equal(t, uint64(1), source.Height())

	source.Clock = fixedClock{now: genesis.Add(11 * time.Second)}
	require.Equal(t, uint64(1), source.Height())

	source.Clock = fixedClock{now: genesis.Add(36 * time.Second)}
	require.Equal(t, uint64(4), source.Height())

	source.Clock = fixedClock{now: genesis.Add(-time.Hour)}
	require.Equal(t, uint64(1), source.Height())
}

func TestJSONEqualIgnoresKeyOrder(t *testing.T) {
	require.True(t, jsonEqual([]byte(`{"a":1,"b":"x"}`), []byte(`{"b": "x", "a": 1}`)))
	require.False(t, jsonEqual([]byte(`{"a":1}`), []byte(`{"a":2}`)))
	require.False(t, jsonEqual([]byte(`not json`), []byte(`{"a":2}`)))
}

func TestSystemClockIsUTC(t *testing.T) {
	require.Equal(t, time.UTC, SystemClock{}.Now().Location())
}
