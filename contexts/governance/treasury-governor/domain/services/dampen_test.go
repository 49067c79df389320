package services

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func referenceSqrt(x uint64) uint64 {
	return new(big.Int).Sqrt(new(big.Int).SetUint64(x)).Uint64()
}

func TestDampenSmallValues(t *testing.T) {
	cases := map[uint64]uint64{0: 0, 1: 1, 2: 1, 3: 1, 4: 2, 8: 2, 9: 3, 99: 9, 100: 10, 10000: 100}
	for in, want := range cases {
		assert.Equalf(t, want, Dampen(in), "Dampen(%d)", in)
	}
}

func TestDampenMatchesIntegerSqrt(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	inputs := []uint64{^uint64(0), ^uint64(0) - 1, 1 << 63, 1 << 32, (1 << 32) - 1}
	for i := 0; i < 5000; i++ {
		inputs = append(inputs, rng.Uint64(), uint64(rng.Int63n(1_000_000)))
	}
	for _, x := range inputs {
		got := Dampen(x)
		assert.Equalf(t, referenceSqrt(x), got, "Dampen(%d)", x)
	}
}

func TestDampenIsConcave(t *testing.T) {
	assert.Equal(t, uint64(1), Dampen(1))
	assert.Equal(t, uint64(10), Dampen(100))
	assert.Less(t, Dampen(100), 100*Dampen(1))
}

func TestMulDivFloors(t *testing.T) {
	assert.Equal(t, uint64(40), mulDiv(100, 4000, 10000))
	assert.Equal(t, uint64(39), mulDiv(99, 4000, 10000))
	assert.Equal(t, uint64(1<<63), mulDiv(1<<63, 10000, 10000))
}
