// Package cache implements the per-cgroup state cache: a fixed hash table
// of bucket chains, one node per distinct cgroup path, read-parallel lookup
// with serialized structural mutation, and rate-limited
// background-piggybacked pruning.
package cache

import (
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/cpuview/cpuview/pkg/cgroupacct"
)

// HashSize is the fixed bucket count.
const HashSize = 100

// DefaultPruneInterval is the minimum spacing between prune sweeps of a
// single bucket.
const DefaultPruneInterval = 10 * time.Second

// ExistsFunc probes whether a cgroup is still present on the host.
type ExistsFunc func(cg string) bool

// Registry is the process-wide node cache.
type Registry struct {
	buckets       [HashSize]*bucket
	pruneInterval time.Duration

	sf singleflight.Group

	// aliveCache remembers cgroups recently confirmed alive by the pruner
	// so a hot bucket (many reads racing the same few cgroups) doesn't
	// drive a stat(2) for every opportunistic prune tick. This is purely
	// an optimization over the pruning contract, not a relaxation of it: a
	// cache miss always falls through to a real existence probe.
	aliveCache *lru.Cache[string, time.Time]
}

// New allocates the HashSize buckets and the alive-cache. Allocation
// failure here (only possible from the LRU constructor's size validation)
// unwinds immediately.
func New() (*Registry, error) {
	return NewWithPruneInterval(DefaultPruneInterval)
}

// NewWithPruneInterval is New with a configurable prune interval, used by
// tests and by pkg/cpuview's Config.
func NewWithPruneInterval(pruneInterval time.Duration) (*Registry, error) {
	alive, err := lru.New[string, time.Time](4096)
	if err != nil {
		return nil, err
	}
	r := &Registry{pruneInterval: pruneInterval, aliveCache: alive}
	for i := range r.buckets {
		r.buckets[i] = &bucket{lastCheck: time.Time{}}
	}
	return r, nil
}

// Shutdown releases every node. The registry must not be used afterward.
func (r *Registry) Shutdown() {
	for _, b := range r.buckets {
		b.mu.Lock()
		b.head = nil
		b.mu.Unlock()
	}
	r.aliveCache.Purge()
}

func (r *Registry) bucketFor(cg string) *bucket {
	h := xxhash.Sum64String(cg)
	return r.buckets[h%HashSize]
}

// FindOrCreate returns the node for cg, creating it (seeded with initial
// and sized to nprocs) if this is the first read for this cgroup, and
// growing it in place if the host has since gained CPUs. The returned node
// is locked; the caller must Unlock it after finishing the
// read-reconcile-render cycle.
func (r *Registry) FindOrCreate(cg string, initial []cgroupacct.Usage, nprocs int, exists ExistsFunc) (*Node, error) {
	b := r.bucketFor(cg)

	b.mu.RLock()
	n := b.find(cg)
	b.mu.RUnlock()

	if n == nil {
		v, err, _ := r.sf.Do(cg, func() (any, error) {
			b.mu.Lock()
			defer b.mu.Unlock()
			if existing := b.find(cg); existing != nil {
				return existing, nil
			}
			created := &Node{
				Cg:       cg,
				Usage:    cloneUsage(initial, nprocs),
				View:     make([]cgroupacct.Usage, nprocs),
				CPUCount: nprocs,
			}
			b.insert(created)
			return created, nil
		})
		if err != nil {
			return nil, err
		}
		n = v.(*Node)
	}

	r.maybePrune(b, exists)

	n.Lock()
	n.grow(nprocs)
	return n, nil
}

// maybePrune runs prune on b at most once per pruneInterval.
func (r *Registry) maybePrune(b *bucket, exists ExistsFunc) {
	if exists == nil {
		return
	}
	b.pruneGuard.Lock()
	due := time.Since(b.lastCheck) >= r.pruneInterval
	if due {
		b.lastCheck = time.Now()
	}
	b.pruneGuard.Unlock()
	if !due {
		return
	}
	r.prune(b, exists)
}

// prune drops every node in b whose cgroup no longer exists. A node
// recently confirmed alive (within pruneInterval) is trusted without a
// fresh probe; others fall through to exists.
func (r *Registry) prune(b *bucket, exists ExistsFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.removeWhere(func(n *Node) bool {
		if last, ok := r.aliveCache.Get(n.Cg); ok && now.Sub(last) < r.pruneInterval {
			return true
		}
		if exists(n.Cg) {
			r.aliveCache.Add(n.Cg, now)
			return true
		}
		r.aliveCache.Remove(n.Cg)
		return false
	})
}

// Len reports the total number of live nodes, for tests and diagnostics.
func (r *Registry) Len() int {
	total := 0
	for _, b := range r.buckets {
		b.mu.RLock()
		for n := b.head; n != nil; n = n.next {
			total++
		}
		b.mu.RUnlock()
	}
	return total
}
