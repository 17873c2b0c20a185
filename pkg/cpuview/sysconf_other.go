//go:build !linux

package cpuview

import (
	"os"
	"runtime"
	"strconv"
)

const userHZ = 100

// TickRate is the non-Linux fallback: still USER_HZ, still overridable,
// since the engine's accounting inputs only ever exist on Linux and this
// path only needs to keep the package buildable elsewhere for tests.
func TickRate() int64 {
	if v := os.Getenv("CPUVIEW_CLK_TCK"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return userHZ
}

// HostNprocsOnline falls back to runtime.NumCPU off Linux.
func HostNprocsOnline() int {
	return runtime.NumCPU()
}
