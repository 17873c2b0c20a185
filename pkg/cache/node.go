package cache

import (
	"sync"

	"github.com/cpuview/cpuview/pkg/cgroupacct"
)

// Node is the per-cgroup state: the reconciled "real" per-CPU accumulator
// (Usage), the per-virtual-CPU accumulator rendered to readers (View), and
// the mutex that must be held across an entire read-reconcile-render cycle
// to preserve View's monotonicity.
type Node struct {
	Cg       string
	Usage    []cgroupacct.Usage
	View     []cgroupacct.Usage
	CPUCount int

	mu   sync.Mutex
	next *Node // intrusive chain pointer
}

// Lock acquires the node's mutex. FindOrCreate always returns a locked
// node; callers must Unlock when the read-reconcile-render cycle for this
// read completes.
func (n *Node) Lock() { n.mu.Lock() }

// Unlock releases the node's mutex.
func (n *Node) Unlock() { n.mu.Unlock() }

// grow reallocates Usage and View to at least nprocs entries, copying
// existing elements and zero-initializing the tail. Arrays never shrink,
// even if the host later reports fewer CPUs (a hotplug removal).
func (n *Node) grow(nprocs int) {
	if n.CPUCount >= nprocs {
		return
	}
	n.Usage = growUsage(n.Usage, nprocs)
	n.View = growUsage(n.View, nprocs)
	n.CPUCount = nprocs
}

func growUsage(s []cgroupacct.Usage, n int) []cgroupacct.Usage {
	if len(s) >= n {
		return s
	}
	grown := make([]cgroupacct.Usage, n)
	copy(grown, s)
	return grown
}

func cloneUsage(s []cgroupacct.Usage, n int) []cgroupacct.Usage {
	out := make([]cgroupacct.Usage, n)
	copy(out, s)
	return out
}
