package cpuset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("empty_string_is_unrestricted", func(t *testing.T) {
		s, err := Parse("")
		require.NoError(t, err)
		assert.True(t, s.Empty())
		assert.True(t, s.Contains(0))
		assert.True(t, s.Contains(999))
		assert.Equal(t, 0, s.Count())
	})

	t.Run("single_range", func(t *testing.T) {
		s, err := Parse("0-3")
		require.NoError(t, err)
		assert.Equal(t, 4, s.Count())
		for n := 0; n <= 3; n++ {
			assert.True(t, s.Contains(n))
		}
		assert.False(t, s.Contains(4))
	})

	t.Run("range_and_gap", func(t *testing.T) {
		s, err := Parse("0-3,7")
		require.NoError(t, err)
		assert.Equal(t, 5, s.Count())
		assert.True(t, s.Contains(0))
		assert.True(t, s.Contains(3))
		assert.False(t, s.Contains(4))
		assert.False(t, s.Contains(6))
		assert.True(t, s.Contains(7))
	})

	t.Run("singletons", func(t *testing.T) {
		s, err := Parse("0,2,4")
		require.NoError(t, err)
		assert.Equal(t, 3, s.Count())
		assert.True(t, s.Contains(2))
		assert.False(t, s.Contains(3))
	})

	t.Run("whitespace_tolerant", func(t *testing.T) {
		s, err := Parse(" 0-1, 3 ")
		require.NoError(t, err)
		assert.Equal(t, 3, s.Count())
	})

	t.Run("inverted_range_errors", func(t *testing.T) {
		_, err := Parse("5-2")
		require.Error(t, err)
	})

	t.Run("garbage_errors", func(t *testing.T) {
		_, err := Parse("a-b")
		require.Error(t, err)
	})
}
