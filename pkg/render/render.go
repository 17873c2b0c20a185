// Package render formats a reconciled per-cgroup view as a kernel
// /proc/stat-shaped byte stream: a synthesized aggregate line, one line per
// visible virtual CPU, and the host's retained tail verbatim.
package render

import (
	"bytes"
	"fmt"

	"github.com/cpuview/cpuview/pkg/cache"
	"github.com/cpuview/cpuview/pkg/reconcile"
)

// ErrBufferTooSmall is returned when the rendered output would not fit in
// the caller-supplied capacity. This is always a hard failure, never a
// silent truncation.
type ErrBufferTooSmall struct {
	Need, Cap int
}

func (e *ErrBufferTooSmall) Error() string {
	return fmt.Sprintf("render: output needs %d bytes, capacity is %d", e.Need, e.Cap)
}

// ProcStat renders the synthetic /proc/stat body for one cgroup read.
// node must be the same (locked) node the reconciliation pass wrote into,
// and res must be that pass's Result. tail is the host's retained
// non-"cpuN" suffix (hostproc.Table.Tail), appended verbatim. outCap bounds
// the rendered size; 0 means unbounded.
func ProcStat(node *cache.Node, res reconcile.Result, tail string, outCap int) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "cpu  %d 0 %d %d 0 0 0 0 0 0\n",
		uint64(res.Sums.User), uint64(res.Sums.System), uint64(res.Sums.Idle))

	for virtual, phys := range res.Visible {
		v := node.View[phys]
		fmt.Fprintf(&buf, "cpu%d %d 0 %d %d 0 0 0 0 0 0\n",
			virtual, uint64(v.User), uint64(v.System), uint64(v.Idle))
	}

	buf.WriteString(tail)

	if outCap > 0 && buf.Len() > outCap {
		return nil, &ErrBufferTooSmall{Need: buf.Len(), Cap: outCap}
	}
	return buf.Bytes(), nil
}
