// Package utils carries small, dependency-free helpers shared across the
// drivers: absolute value and a seeded reservoir sample.
//
// Grounded on sergei-shchetnikov-go-cantus-firmus's internal/utils.go
// (same two functions, same reservoir-sampling shape); SelectRandomItems
// is adapted to take an explicit *rand.Rand instead of the package-level
// global source, so every caller draws from the single seeded stream the
// driver owns rather than an unseeded, unreproducible one.
package utils

import (
	"math/rand"
)

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// SelectRandomItems selects 'count' random items from items via reservoir
// sampling, drawing from rng so the selection is reproducible for a fixed
// seed.
func SelectRandomItems[T any](rng *rand.Rand, items []T, count int) []T {
	if count <= 0 || len(items) == 0 {
		return nil
	}
	if count >= len(items) {
		result := make([]T, len(items))
		copy(result, items)
		return result
	}

	result := make([]T, count)
	copy(result, items[:count])

	for i := count; i < len(items); i++ {
		j := rng.Intn(i + 1)
		if j < count {
			result[j] = items[i]
		}
	}

	return result
}
