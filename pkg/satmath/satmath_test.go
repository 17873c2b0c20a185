package satmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubU64(t *testing.T) {
	assert.Equal(t, uint64(10), SubU64(110, 100))
	assert.Equal(t, uint64(0), SubU64(100, 100))
	assert.Equal(t, uint64(0), SubU64(99, 100))
}

func TestSafeDiv(t *testing.T) {
	assert.InDelta(t, 2.5, SafeDiv(5, 2), 1e-12)
	assert.Equal(t, 0.0, SafeDiv(123, 0))
	assert.Equal(t, 0.0, SafeDiv(1, 1e-13))
}

func TestClampI(t *testing.T) {
	assert.Equal(t, 1, ClampI(0, 1, 8))
	assert.Equal(t, 8, ClampI(99, 1, 8))
	assert.Equal(t, 4, ClampI(4, 1, 8))
}

func TestClampF(t *testing.T) {
	assert.Equal(t, 0.0, ClampF(-1, 0, 4))
	assert.Equal(t, 4.0, ClampF(99, 0, 4))
	assert.Equal(t, 2.5, ClampF(2.5, 0, 4))
}

func TestCeilDivI64(t *testing.T) {
	assert.Equal(t, int64(1), CeilDivI64(100000, 100000))
	assert.Equal(t, int64(2), CeilDivI64(150000, 100000))
	assert.Equal(t, int64(0), CeilDivI64(100, 0))
}
