// Package reconcile implements the per-read algorithm that turns a host
// per-CPU sample and a cgroup cumulative sample into the per-cgroup node's
// reconciled "usage" and rendered "view" counters, honoring the per-CPU
// ceiling, surplus redistribution, and partial-CPU idle correction.
package reconcile

import (
	"log/slog"
	"math"

	"github.com/cpuview/cpuview/pkg/cache"
	"github.com/cpuview/cpuview/pkg/cgroupacct"
	"github.com/cpuview/cpuview/pkg/cpuset"
	"github.com/cpuview/cpuview/pkg/hostproc"
	"github.com/cpuview/cpuview/pkg/satmath"
	"github.com/cpuview/cpuview/pkg/ticks"
)

// Sums is the aggregate rendered by pkg/render's "cpu  ..." line.
type Sums struct {
	User, System, Idle ticks.T
}

// Result is the outcome of one reconciliation pass: the aggregate over
// visible CPUs and the ordered physical indices that are visible, in the
// order they should be labeled cpu0, cpu1, ... by the renderer.
type Result struct {
	Sums    Sums
	Visible []int
}

// Reconcile runs one reconciliation pass against node, which must already
// be locked and sized by the caller (pkg/cache.Registry.FindOrCreate) to
// hold every physical index in hostCPUs, i.e. to at least the largest index
// plus one. It mutates node.Usage and node.View in place.
//
// cgSample is indexed by physical CPU number (as returned by
// pkg/cgroupacct.ReadUsageAll); entries for CPUs not present or not in cset
// are ignored. logger may be nil, in which case degraded-path diagnostics
// are dropped rather than causing the read to fail.
func Reconcile(node *cache.Node, hostCPUs []hostproc.Line, cgSample []cgroupacct.Usage, cset cpuset.Set, maxCPUs int, exactCPUs float64, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discard{}, nil))
	}

	n := node.CPUCount
	sample := make([]cgroupacct.Usage, n)
	cpuCnt := 0

	// Step 1 — host parse and per-CPU idle imputation.
	for _, hl := range hostCPUs {
		p := hl.Index
		if p >= n {
			continue // caller under-sized the node; defensively skip rather than panic
		}
		if !cset.Contains(p) {
			continue // sample[p] stays zero-valued, Online=false
		}
		var cg cgroupacct.Usage
		if p < len(cgSample) {
			cg = cgSample[p]
		}
		hostBusy := hl.Busy()
		cgBusy := cg.User.Add(cg.System)

		var idle ticks.T
		if hostBusy < cgBusy {
			idle = hl.Idle
			logger.Warn("cpuview: host/cgroup accounting skew, falling back to raw host idle",
				"cpu", p, "host_busy", uint64(hostBusy), "cg_busy", uint64(cgBusy))
		} else {
			idle = hl.Idle.Add(hostBusy.Sub(cgBusy))
		}

		sample[p] = cgroupacct.Usage{User: cg.User, System: cg.System, Idle: idle, Online: true}
		cpuCnt++
	}

	// Step 2 — reset detection on the first online CPU.
	if first, ok := firstOnline(sample); ok && sample[first].User < node.Usage[first].User {
		logger.Warn("cpuview: counter regression, resetting node",
			"cpu", first, "sample_user", uint64(sample[first].User), "node_user", uint64(node.Usage[first].User))
		for i := range node.Usage {
			node.Usage[i] = cgroupacct.Usage{}
		}
		for i := range node.View {
			node.View[i] = cgroupacct.Usage{}
		}
	}

	// Step 3 — per-CPU deltas.
	diff := make([]cgroupacct.Usage, n)
	var totalSum ticks.T
	for i := 0; i < n; i++ {
		if !sample[i].Online {
			node.Usage[i].Online = false
			continue
		}
		d := cgroupacct.Usage{
			User:   sample[i].User.Sub(node.Usage[i].User),
			System: sample[i].System.Sub(node.Usage[i].System),
			Idle:   sample[i].Idle.Sub(node.Usage[i].Idle),
			Online: true,
		}
		diff[i] = d
		totalSum = totalSum.Add(d.User).Add(d.System).Add(d.Idle)

		node.Usage[i].User = node.Usage[i].User.Add(d.User)
		node.Usage[i].System = node.Usage[i].System.Add(d.System)
		node.Usage[i].Idle = node.Usage[i].Idle.Add(d.Idle)
		node.Usage[i].Online = true
	}

	// Step 8 — unquota path short-circuits the rest of the algorithm.
	if maxCPUs == 0 {
		return unquotaResult(node, sample)
	}

	// Step 4 — visible-CPU selection: first maxCPUs online physical
	// indices in ascending order; the rest are donors.
	visible := make([]int, 0, maxCPUs)
	for i := 0; i < n && len(visible) < maxCPUs; i++ {
		if sample[i].Online {
			visible = append(visible, i)
		}
	}
	isVisible := make(map[int]bool, len(visible))
	for _, i := range visible {
		isVisible[i] = true
	}

	var userSurplus, systemSurplus ticks.T
	for i := 0; i < n; i++ {
		if sample[i].Online && !isVisible[i] {
			userSurplus = userSurplus.Add(diff[i].User)
			systemSurplus = systemSurplus.Add(diff[i].System)
		}
	}

	// Step 5 — threshold and surplus redistribution.
	var threshold ticks.T
	if cpuCnt > 0 {
		threshold = ticks.T(satmath.SafeDiv(float64(totalSum), float64(cpuCnt)) * float64(maxCPUs))
	}
	for _, i := range visible {
		d := diff[i]
		busy := d.User.Add(d.System)
		if busy >= threshold {
			continue
		}
		headroom := threshold.Sub(busy)

		creditUser := minT(minT(userSurplus, headroom), d.Idle)
		if creditUser > 0 {
			d.User = d.User.Add(creditUser)
			d.Idle = d.Idle.Sub(creditUser)
			userSurplus = userSurplus.Sub(creditUser)
			busy = d.User.Add(d.System)
			headroom = threshold.Sub(busy)
		}

		if busy < threshold {
			creditSystem := minT(minT(systemSurplus, headroom), d.Idle)
			if creditSystem > 0 {
				d.System = d.System.Add(creditSystem)
				d.Idle = d.Idle.Sub(creditSystem)
				systemSurplus = systemSurplus.Sub(creditSystem)
			}
		}
		diff[i] = d
	}
	// Any surplus left in userSurplus/systemSurplus after this single pass
	// is discarded: it is not carried to the next read, so a persistent
	// donor re-donates next sample.

	// Step 6 — accumulate view.
	var sums Sums
	for _, i := range visible {
		node.View[i].User = node.View[i].User.Add(diff[i].User)
		node.View[i].System = node.View[i].System.Add(diff[i].System)
		node.View[i].Idle = node.View[i].Idle.Add(diff[i].Idle)
		node.View[i].Online = true

		sums.User = sums.User.Add(node.View[i].User)
		sums.System = sums.System.Add(node.View[i].System)
		sums.Idle = sums.Idle.Add(node.View[i].Idle)
	}

	// Step 7 — partial-CPU idle correction.
	if exactCPUs < float64(maxCPUs) {
		var sumDiffAll ticks.T
		for _, i := range visible {
			sumDiffAll = sumDiffAll.Add(diff[i].User).Add(diff[i].System).Add(diff[i].Idle)
		}
		frac := 1 - exactCPUs/float64(maxCPUs)
		delta := ticks.T(math.Floor(float64(sumDiffAll) * frac))

		sums.Idle = sums.Idle.Sub(delta)

		k := visible[0]
		best := diff[visible[0]].Idle
		for _, i := range visible[1:] {
			if diff[i].Idle > best {
				best = diff[i].Idle
				k = i
			}
		}
		node.View[k].Idle = node.View[k].Idle.Sub(delta)
	}

	return Result{Sums: sums, Visible: visible}
}

// unquotaResult handles an unrestricted cgroup: view[i] = usage[i] for
// every online i, with no surplus pass and no idle correction.
func unquotaResult(node *cache.Node, sample []cgroupacct.Usage) Result {
	var sums Sums
	var visible []int
	for i := range sample {
		if !sample[i].Online {
			continue
		}
		node.View[i] = node.Usage[i]
		visible = append(visible, i)
		sums.User = sums.User.Add(node.View[i].User)
		sums.System = sums.System.Add(node.View[i].System)
		sums.Idle = sums.Idle.Add(node.View[i].Idle)
	}
	return Result{Sums: sums, Visible: visible}
}

func firstOnline(sample []cgroupacct.Usage) (int, bool) {
	for i, s := range sample {
		if s.Online {
			return i, true
		}
	}
	return 0, false
}

func minT(a, b ticks.T) ticks.T {
	if a < b {
		return a
	}
	return b
}

// discard is an io.Writer that drops everything, used as the default
// logging sink when no *slog.Logger is supplied.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
