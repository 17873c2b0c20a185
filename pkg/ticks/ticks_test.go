package ticks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSub(t *testing.T) {
	t.Run("normal_decrease", func(t *testing.T) {
		assert.Equal(t, T(10), T(110).Sub(100))
	})
	t.Run("no_change", func(t *testing.T) {
		assert.Equal(t, T(0), T(100).Sub(100))
	})
	t.Run("regression_saturates_to_zero", func(t *testing.T) {
		assert.Equal(t, T(0), T(99).Sub(100))
	})
}

func TestAdd(t *testing.T) {
	assert.Equal(t, T(15), T(10).Add(5))
}

func TestSeconds(t *testing.T) {
	t.Run("normal", func(t *testing.T) {
		assert.InDelta(t, 1.0, T(100).Seconds(100), 1e-9)
	})
	t.Run("zero_rate", func(t *testing.T) {
		assert.Equal(t, 0.0, T(100).Seconds(0))
	})
}

func TestFromNanos(t *testing.T) {
	t.Run("one_second_at_100hz", func(t *testing.T) {
		assert.Equal(t, T(100), FromNanos(1_000_000_000, 100))
	})
	t.Run("zero_rate", func(t *testing.T) {
		assert.Equal(t, T(0), FromNanos(1_000_000_000, 0))
	})
}
