package services

import "math/bits"

// Dampen returns floor(sqrt(x)) using integer Babylonian iteration seeded at
// x/2+1. Small inputs are answered directly.
func Dampen(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	if x <= 3 {
		return 1
	}
	current := x
	next := x/2 + 1
	for next < current {
		current = next
		next = (x/current + current) / 2
	}
	return current
}

// mulDiv computes floor(a*b/c) without overflowing the intermediate product.
func mulDiv(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return ^uint64(0)
	}
	quo, _ := bits.Div64(hi, lo, c)
	return quo
}

func addChecked(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}
