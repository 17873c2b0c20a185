// Package ticks provides the kernel-tick (USER_HZ) counter type shared by
// the host and cgroup CPU-time readers.
package ticks

// T is a kernel-tick counter (USER_HZ units). It wraps uint64 with
// saturating arithmetic in place of plain subtraction, since CPU accounting
// sources can race or reset and a negative delta must collapse to zero
// rather than wrap.
type T uint64

// Sub returns t-other, saturating at zero instead of wrapping when other > t.
func (t T) Sub(other T) T {
	if t >= other {
		return t - other
	}
	return 0
}

// Add returns t+other.
func (t T) Add(other T) T {
	return t + other
}

// Seconds converts a tick count to seconds given the configured tick rate.
func (t T) Seconds(ticksPerSecond int64) float64 {
	if ticksPerSecond <= 0 {
		return 0
	}
	return float64(t) / float64(ticksPerSecond)
}

// FromNanos converts a nanosecond duration (as read from cpuacct.usage_all,
// which is always reported in nanoseconds regardless of the configured tick
// rate) into ticks.
func FromNanos(ns uint64, ticksPerSecond int64) T {
	if ticksPerSecond <= 0 {
		return 0
	}
	return T(ns * uint64(ticksPerSecond) / 1e9)
}
