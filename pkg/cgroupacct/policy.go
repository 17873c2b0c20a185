package cgroupacct

import (
	"strconv"

	"github.com/cpuview/cpuview/pkg/cpuset"
)

// ReadQuotaPeriod reads cpu.cfs_quota_us and cpu.cfs_period_us for cg.
// Missing or unparsable files resolve to 0 (treated as "unlimited"/
// "unconfigured" by pkg/capacity).
func ReadQuotaPeriod(acc Accessor, cg string) (quota, period int64) {
	if text, ok := acc.Get("cpu", cg, "cpu.cfs_quota_us"); ok {
		quota, _ = strconv.ParseInt(text, 10, 64)
	}
	if text, ok := acc.Get("cpu", cg, "cpu.cfs_period_us"); ok {
		period, _ = strconv.ParseInt(text, 10, 64)
	}
	return quota, period
}

// ReadCpuset reads and parses cpuset.cpus for cg.
func ReadCpuset(acc Accessor, cg string) (cpuset.Set, error) {
	text, ok := acc.Get("cpuset", cg, "cpuset.cpus")
	if !ok {
		return cpuset.Parse("")
	}
	return cpuset.Parse(text)
}

// Alive reports whether cg still exists, probed via the presence of
// cpu.shares (v1) — the signal the pruner uses to detect cgroup removal.
func Alive(acc Accessor, cg string) bool {
	return acc.ParamExists("cpu", cg, "cpu.shares")
}
