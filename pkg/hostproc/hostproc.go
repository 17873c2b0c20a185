// Package hostproc parses the host's global per-CPU accounting table (the
// kernel's /proc/stat-shaped pseudo-file) into the per-physical-CPU line
// items the reconciliation algorithm needs, retaining the tail of the file
// (everything after the per-CPU block) for verbatim passthrough. A leading
// aggregate "cpu" line is discarded, not retained.
package hostproc

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cpuview/cpuview/pkg/ticks"
)

// Line is one "cpuN ..." row of the host accounting table.
type Line struct {
	Index                                                               int
	User, Nice, System, Idle, Iowait, Irq, Softirq, Steal, Guest, GuestN ticks.T
}

// Busy returns the sum of every non-idle bucket.
func (l Line) Busy() ticks.T {
	return l.User.Add(l.Nice).Add(l.System).Add(l.Iowait).Add(l.Irq).Add(l.Softirq).Add(l.Steal).Add(l.Guest).Add(l.GuestN)
}

// Table is the result of parsing a host accounting stream: the per-CPU
// lines found, in file order, plus the exact bytes that follow them
// (the first non-"cpuN" line and everything after), unparsed.
type Table struct {
	CPUs []Line
	Tail string
}

// Parse reads a host accounting stream and splits it into per-CPU lines and
// a verbatim tail. logger may be nil, in which case degraded-path
// diagnostics are dropped rather than causing the read to fail.
//
// The host's own aggregate "cpu  ..." line, if present as the first line,
// is consumed and discarded rather than retained in Tail: the renderer
// synthesizes its own aggregate line from the reconciled per-cgroup view,
// so the host's real aggregate would otherwise be a leaked, un-virtualized
// duplicate ahead of the per-CPU block. Parsing stops at the first line
// that is not a "cpuN" row; that line and everything after it is retained
// verbatim in Tail.
//
// A "cpuN ..." row that fails to parse is logged and skipped rather than
// failing the whole read: the CPU is simply absent from Table.CPUs, the
// same as if the kernel had never reported it.
func Parse(r io.Reader, logger *slog.Logger) (Table, error) {
	if logger == nil {
		logger = discardLogger()
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var tbl Table
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			first = false
			if isAggregateLine(line) {
				continue
			}
		}
		idx, ok := cpuIndex(line)
		if !ok {
			tbl.Tail = restOf(sc, line)
			return tbl, sc.Err()
		}
		l, err := parseLine(idx, line)
		if err != nil {
			logger.Warn("hostproc: malformed cpu line, skipping", "cpu", idx, "err", err)
			continue
		}
		tbl.CPUs = append(tbl.CPUs, l)
	}
	return tbl, sc.Err()
}

// isAggregateLine reports whether line is the host's "cpu  ..." summary row
// (label "cpu" with no trailing digits).
func isAggregateLine(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && fields[0] == "cpu"
}

// cpuIndex reports whether line is a "cpuN ..." row and, if so, its index.
func cpuIndex(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "cpu") {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0][3:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseLine(idx int, line string) (Line, error) {
	fields := strings.Fields(line)[1:]
	if len(fields) < 10 {
		return Line{}, fmt.Errorf("hostproc: cpu%d: want 10 fields, got %d", idx, len(fields))
	}
	var v [10]ticks.T
	for i := 0; i < 10; i++ {
		n, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return Line{}, fmt.Errorf("hostproc: cpu%d: field %d: %w", idx, i, err)
		}
		v[i] = ticks.T(n)
	}
	return Line{
		Index: idx,
		User:  v[0], Nice: v[1], System: v[2], Idle: v[3], Iowait: v[4],
		Irq: v[5], Softirq: v[6], Steal: v[7], Guest: v[8], GuestN: v[9],
	}, nil
}

// restOf reassembles the unread remainder of the scanner, including the
// line already read into "line".
func restOf(sc *bufio.Scanner, line string) string {
	var b strings.Builder
	b.WriteString(line)
	for sc.Scan() {
		b.WriteByte('\n')
		b.WriteString(sc.Text())
	}
	b.WriteByte('\n')
	return b.String()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
