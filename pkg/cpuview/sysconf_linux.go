//go:build linux

package cpuview

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// userHZ is USER_HZ, invariant at 100 across every Linux architecture
// regardless of the kernel's internal HZ, so no syscall is needed for it.
const userHZ = 100

// TickRate returns USER_HZ. CPUVIEW_CLK_TCK overrides it, for use in tests.
func TickRate() int64 {
	if v := os.Getenv("CPUVIEW_CLK_TCK"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return userHZ
}

// HostNprocsOnline counts the CPUs in the calling process' scheduling
// affinity mask: the cgo-free approximation of _SC_NPROCESSORS_ONLN
// available through golang.org/x/sys/unix.
func HostNprocsOnline() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 1
	}
	if n := set.Count(); n > 0 {
		return n
	}
	return 1
}
