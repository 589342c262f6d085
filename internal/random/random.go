// Package random provides the shared deterministic draw primitives used by
// the generators: weighted selection, bounded integers, probability gates,
// and URL-safe identifier synthesis. Every helper takes an explicit
// *rand.Rand so a run with a fixed seed replays identically.
package random

import (
	"errors"
	"math/rand"
)

// ErrEmptyWeightedSet is returned when a weighted selection is attempted
// over an empty candidate set. Well-formed flow and schedule tables never
// trigger it.
var ErrEmptyWeightedSet = errors.New("random: weighted selection over empty set")

// Weighted pairs an item with its positive selection weight.
type Weighted[T any] struct {
	Item   T
	Weight int
}

// Pick draws one item with probability proportional to its weight.
// Floating rounding at the upper boundary resolves to the last item rather
// than failing.
func Pick[T any](r *rand.Rand, items []Weighted[T]) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyWeightedSet
	}

	total := 0
	for _, it := range items {
		total += it.Weight
	}

	draw := r.Float64() * float64(total)
	upto := 0.0
	for _, it := range items {
		upto += float64(it.Weight)
		if draw <= upto {
			return it.Item, nil
		}
	}
	return items[len(items)-1].Item, nil
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// URLSafeID returns a fixed-length identifier drawn from the URL-safe
// alphabet (letters, digits, '-', '_'). Used for synthesized document,
// video, and page identifiers.
func URLSafeID(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idAlphabet[r.Intn(len(idAlphabet))]
	}
	return string(b)
}

// IntBetween returns a uniform integer in [lo, hi] inclusive.
func IntBetween(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

// Int64Between returns a uniform int64 in [lo, hi] inclusive.
func Int64Between(r *rand.Rand, lo, hi int64) int64 {
	return lo + r.Int63n(hi-lo+1)
}

// Chance returns true with probability p.
func Chance(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// Choice returns a uniformly chosen element of a non-empty slice.
func Choice[T any](r *rand.Rand, items []T) T {
	return items[r.Intn(len(items))]
}
