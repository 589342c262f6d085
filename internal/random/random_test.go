package random

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestPick_EmptySet(t *testing.T) {
	_, err := Pick(newRand(1), []Weighted[string]{})
	assert.ErrorIs(t, err, ErrEmptyWeightedSet)
}

func TestPick_SingleItem(t *testing.T) {
	r := newRand(7)
	for i := 0; i < 100; i++ {
		got, err := Pick(r, []Weighted[string]{{Item: "only", Weight: 3}})
		require.NoError(t, err)
		assert.Equal(t, "only", got)
	}
}

func TestPick_EveryItemReachable(t *testing.T) {
	items := []Weighted[string]{
		{Item: "a", Weight: 1},
		{Item: "b", Weight: 1},
		{Item: "c", Weight: 1},
	}

	seen := map[string]bool{}
	r := newRand(42)
	for i := 0; i < 1000; i++ {
		got, err := Pick(r, items)
		require.NoError(t, err)
		seen[got] = true
	}
	assert.Len(t, seen, 3, "all items should be selectable")
}

func TestPick_HeavyWeightDominates(t *testing.T) {
	items := []Weighted[string]{
		{Item: "heavy", Weight: 99},
		{Item: "light", Weight: 1},
	}

	heavy := 0
	r := newRand(99)
	for i := 0; i < 1000; i++ {
		got, err := Pick(r, items)
		require.NoError(t, err)
		if got == "heavy" {
			heavy++
		}
	}
	assert.Greater(t, heavy, 900, "99:1 weighting should dominate")
}

func TestPick_Deterministic(t *testing.T) {
	items := []Weighted[int]{
		{Item: 1, Weight: 5},
		{Item: 2, Weight: 3},
		{Item: 3, Weight: 2},
	}

	var a, b []int
	r1, r2 := newRand(1234), newRand(1234)
	for i := 0; i < 50; i++ {
		x, err := Pick(r1, items)
		require.NoError(t, err)
		y, err := Pick(r2, items)
		require.NoError(t, err)
		a = append(a, x)
		b = append(b, y)
	}
	assert.Equal(t, a, b)
}

func TestURLSafeID(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	r := newRand(5)
	for _, n := range []int{11, 32, 44} {
		id := URLSafeID(r, n)
		assert.Len(t, id, n)
		assert.Regexp(t, valid, id)
	}

	// Same seed, same sequence.
	assert.Equal(t, URLSafeID(newRand(8), 44), URLSafeID(newRand(8), 44))
}

func TestIntBetween_Bounds(t *testing.T) {
	r := newRand(3)
	for i := 0; i < 1000; i++ {
		v := IntBetween(r, 5, 10)
		assert.GreaterOrEqual(t, v, 5)
		assert.LessOrEqual(t, v, 10)
	}

	// Degenerate range.
	assert.Equal(t, 7, IntBetween(r, 7, 7))
}

func TestInt64Between_Bounds(t *testing.T) {
	r := newRand(4)
	for i := 0; i < 1000; i++ {
		v := Int64Between(r, 100000000000, 999999999999)
		assert.GreaterOrEqual(t, v, int64(100000000000))
		assert.LessOrEqual(t, v, int64(999999999999))
	}
}

func TestChance_Extremes(t *testing.T) {
	r := newRand(6)
	for i := 0; i < 100; i++ {
		assert.True(t, Chance(r, 1.0))
		assert.False(t, Chance(r, 0.0))
	}
}
