// Package capacity derives the per-cgroup virtual CPU count and fractional
// CPU share from cgroup CFS bandwidth control and cpuset restriction.
package capacity

import (
	"github.com/cpuview/cpuview/pkg/cpuset"
	"github.com/cpuview/cpuview/pkg/satmath"
)

// Policy is the derived capacity: the integer virtual CPU count exposed to
// the container and the fractional CPU share used for the partial-CPU idle
// correction in the reconciler.
type Policy struct {
	MaxCPUs   int
	ExactCPUs float64
}

// Compute derives Policy from quota/period (microseconds; quota<=0 means
// unlimited), the cgroup's cpuset restriction, the host's configured
// processor count, and cpuCntInTable — the number of CPUs actually present
// in the host accounting table after intersecting with the cpuset.
func Compute(quota, period int64, cset cpuset.Set, hostNprocs, cpuCntInTable int) Policy {
	var maxCPUs int
	if quota > 0 && period > 0 {
		maxCPUs = int(satmath.CeilDivI64(quota, period))
		maxCPUs = satmath.ClampI(maxCPUs, 1, hostNprocs)
	}

	if n := cset.Count(); n > 0 {
		if maxCPUs == 0 || n < maxCPUs {
			maxCPUs = n
		}
	}

	if cpuCntInTable < maxCPUs {
		maxCPUs = cpuCntInTable
	}

	var exactCPUs float64
	if quota > 0 && period > 0 {
		exactCPUs = satmath.ClampF(float64(quota)/float64(period), 0, float64(hostNprocs))
	}

	return Policy{MaxCPUs: maxCPUs, ExactCPUs: exactCPUs}
}
