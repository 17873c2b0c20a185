package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/cpuview/cpuview/pkg/cgroupacct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysAlive(string) bool { return true }

func TestFindOrCreate_CreatesOnMiss(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	n, err := r.FindOrCreate("/docker/a", []cgroupacct.Usage{{User: 10}}, 1, alwaysAlive)
	require.NoError(t, err)
	defer n.Unlock()

	assert.Equal(t, "/docker/a", n.Cg)
	assert.Equal(t, 1, n.CPUCount)
	assert.EqualValues(t, 10, n.Usage[0].User)
	assert.Equal(t, 1, r.Len())
}

func TestFindOrCreate_ReturnsSameNodeOnHit(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	n1, err := r.FindOrCreate("/docker/a", nil, 1, alwaysAlive)
	require.NoError(t, err)
	n1.View[0].User = 42
	n1.Unlock()

	n2, err := r.FindOrCreate("/docker/a", nil, 1, alwaysAlive)
	require.NoError(t, err)
	defer n2.Unlock()

	assert.Same(t, n1, n2)
	assert.EqualValues(t, 42, n2.View[0].User)
	assert.Equal(t, 1, r.Len())
}

func TestFindOrCreate_HashUniquenessUnderConcurrency(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	const workers = 64
	nodes := make([]*Node, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			n, err := r.FindOrCreate("/docker/same", nil, 1, alwaysAlive)
			require.NoError(t, err)
			nodes[i] = n
			n.Unlock()
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, nodes[0], nodes[i])
	}
	assert.Equal(t, 1, r.Len())
}

func TestFindOrCreate_GrowsOnHotplug(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	n, err := r.FindOrCreate("/docker/a", []cgroupacct.Usage{{User: 1}, {User: 2}}, 2, alwaysAlive)
	require.NoError(t, err)
	n.View[0].User = 7
	n.View[1].User = 9
	n.Unlock()

	n2, err := r.FindOrCreate("/docker/a", nil, 4, alwaysAlive)
	require.NoError(t, err)
	defer n2.Unlock()

	assert.Equal(t, 4, n2.CPUCount)
	assert.EqualValues(t, 7, n2.View[0].User)
	assert.EqualValues(t, 9, n2.View[1].User)
	assert.EqualValues(t, 0, n2.View[2].User)
	assert.EqualValues(t, 0, n2.View[3].User)
}

func TestFindOrCreate_NeverShrinks(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	n, err := r.FindOrCreate("/docker/a", nil, 4, alwaysAlive)
	require.NoError(t, err)
	n.Unlock()

	n2, err := r.FindOrCreate("/docker/a", nil, 2, alwaysAlive)
	require.NoError(t, err)
	defer n2.Unlock()
	assert.Equal(t, 4, n2.CPUCount)
}

func TestPrune_DropsDeadCgroup(t *testing.T) {
	r, err := NewWithPruneInterval(0)
	require.NoError(t, err)

	n, err := r.FindOrCreate("/docker/dead", nil, 1, alwaysAlive)
	require.NoError(t, err)
	n.Unlock()
	require.Equal(t, 1, r.Len())

	b := r.bucketFor("/docker/dead")
	r.prune(b, func(string) bool { return false })

	assert.Equal(t, 0, r.Len())
}

func TestPrune_KeepsRecentlyConfirmedAliveWithoutReprobing(t *testing.T) {
	r, err := NewWithPruneInterval(time.Hour)
	require.NoError(t, err)

	n, err := r.FindOrCreate("/docker/a", nil, 1, nil)
	require.NoError(t, err)
	n.Unlock()

	b := r.bucketFor("/docker/a")
	calls := 0
	r.prune(b, func(string) bool { calls++; return true })
	assert.Equal(t, 1, calls, "first prune after creation probes once")

	calls = 0
	r.prune(b, func(string) bool { calls++; return false })
	assert.Equal(t, 0, calls, "second prune trusts the fresh alive-cache entry")
	assert.Equal(t, 1, r.Len())
}

func TestPrune_RateLimited(t *testing.T) {
	r, err := NewWithPruneInterval(time.Hour)
	require.NoError(t, err)

	n, err := r.FindOrCreate("/docker/a", nil, 1, alwaysAlive)
	require.NoError(t, err)
	n.Unlock()

	calls := 0
	exists := func(string) bool { calls++; return true }
	for i := 0; i < 5; i++ {
		nn, err := r.FindOrCreate("/docker/a", nil, 1, exists)
		require.NoError(t, err)
		nn.Unlock()
	}
	assert.Equal(t, 0, calls, "prune should not re-run within the interval")
}
