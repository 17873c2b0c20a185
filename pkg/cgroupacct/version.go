//go:build linux

package cgroupacct

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Version identifies which cgroup hierarchy style is mounted on the host.
// FSAccessor's v1-style file names (cpu.cfs_quota_us, cpuacct.usage_all,
// ...) live under different mount points depending on which mode is
// active, so callers probe this before assuming a layout.
type Version int

const (
	Unsupported Version = iota
	V1
	V2
	Hybrid
)

func (v Version) String() string {
	switch v {
	case V1:
		return "cgroup v1"
	case V2:
		return "cgroup v2"
	case Hybrid:
		return "cgroup hybrid"
	default:
		return "unsupported"
	}
}

// DetectVersion parses /proc/self/mountinfo for cgroup/cgroup2 filesystem
// entries and reports which hierarchy style(s) are mounted.
func DetectVersion() (Version, error) {
	f, err := os.Open("/proc/self/mountinfo")
	if err != nil {
		return Unsupported, fmt.Errorf("cgroupacct: open mountinfo: %w", err)
	}
	defer func() { _ = f.Close() }()

	var hasV1, hasV2 bool
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		const sep = " - "
		i := strings.LastIndex(line, sep)
		if i < 0 {
			continue
		}
		tail := strings.Fields(line[i+len(sep):])
		if len(tail) < 1 {
			continue
		}
		switch tail[0] {
		case "cgroup2":
			hasV2 = true
		case "cgroup":
			hasV1 = true
		}
	}
	if err := sc.Err(); err != nil {
		return Unsupported, fmt.Errorf("cgroupacct: scan mountinfo: %w", err)
	}

	switch {
	case hasV1 && hasV2:
		return Hybrid, nil
	case hasV2:
		return V2, nil
	case hasV1:
		return V1, nil
	default:
		return Unsupported, nil
	}
}
