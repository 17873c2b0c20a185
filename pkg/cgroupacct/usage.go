package cgroupacct

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cpuview/cpuview/pkg/ticks"
)

// Usage is a per-virtual-CPU accounting sample: cumulative user/system/idle
// ticks plus an online bit. It is shared by the cgroup sample source (this
// package), the per-cgroup cache node, and the reconciliation algorithm.
type Usage struct {
	User, System, Idle ticks.T
	Online             bool
}

// ReadUsageAll returns the per-CPU cumulative user/system ticks for cg,
// indexed by physical CPU number, preferring cpuacct.usage_all and falling
// back to cpuacct.usage_percpu. The returned slice is sized maxPhys+1
// (zero-valued, Online=false, for any physical index not reported by the
// kernel). logger may be nil, in which case degraded-path diagnostics are
// dropped rather than causing the read to fail.
//
// A malformed per-CPU field within an otherwise-readable file is logged and
// skipped (that CPU stays zero-valued) rather than failing the whole read;
// only a missing or empty source file is a hard error, since then there is
// no sample to degrade.
func ReadUsageAll(acc Accessor, cg string, tickRate int64, maxPhys int, logger *slog.Logger) ([]Usage, error) {
	if logger == nil {
		logger = discardLogger()
	}
	if text, ok := acc.Get("cpuacct", cg, "cpuacct.usage_all"); ok {
		return parseUsageAll(text, tickRate, maxPhys, logger)
	}
	if text, ok := acc.Get("cpuacct", cg, "cpuacct.usage_percpu"); ok {
		return parseUsagePercpu(text, tickRate, maxPhys, logger)
	}
	return nil, fmt.Errorf("cgroupacct: %s: neither cpuacct.usage_all nor cpuacct.usage_percpu readable", cg)
}

// parseUsageAll parses the "cpu user system\nN u_ns s_ns\n..." format.
func parseUsageAll(text string, tickRate int64, maxPhys int, logger *slog.Logger) ([]Usage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("cgroupacct: empty cpuacct.usage_all")
	}
	out := make([]Usage, maxPhys+1)
	lines := strings.Split(trimmed, "\n")
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		uNs, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			logger.Warn("cgroupacct: usage_all: bad user field, skipping cpu", "cpu", n, "err", err)
			continue
		}
		sNs, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			logger.Warn("cgroupacct: usage_all: bad system field, skipping cpu", "cpu", n, "err", err)
			continue
		}
		if n > maxPhys {
			grown := make([]Usage, n+1)
			copy(grown, out)
			out = grown
			maxPhys = n
		}
		out[n] = Usage{
			User:   ticks.FromNanos(uNs, tickRate),
			System: ticks.FromNanos(sNs, tickRate),
			Online: true,
		}
	}
	return out, nil
}

// parseUsagePercpu parses the cpuacct.usage_percpu fallback: a single line
// of space-separated per-CPU nanosecond totals, with no user/system split
// (system is treated as 0 and user carries the total).
func parseUsagePercpu(text string, tickRate int64, maxPhys int, logger *slog.Logger) ([]Usage, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("cgroupacct: empty cpuacct.usage_percpu")
	}
	n := len(fields)
	if n-1 > maxPhys {
		maxPhys = n - 1
	}
	out := make([]Usage, maxPhys+1)
	for i, f := range fields {
		ns, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			logger.Warn("cgroupacct: usage_percpu: bad field, skipping cpu", "cpu", i, "err", err)
			continue
		}
		out[i] = Usage{User: ticks.FromNanos(ns, tickRate), Online: true}
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
