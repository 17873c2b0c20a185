// Package cgroupacct implements the cgroup-side sample sources: cumulative
// per-CPU usage (cpuacct.usage_all / cpuacct.usage_percpu) and the policy
// control files (cpu.cfs_quota_us, cpu.cfs_period_us, cpuset.cpus,
// cpu.shares).
//
// The cgroup filesystem is accessed through the Accessor interface, with
// one concrete implementation (FSAccessor) reading the real v1-style
// cgroupfs, so callers can substitute a test double without touching a real
// filesystem.
package cgroupacct

import (
	"os"
	"path/filepath"
	"strings"
)

// Accessor is the cgroup-filesystem collaborator consumed by this package.
type Accessor interface {
	// Get reads a single control file under the given controller hierarchy
	// for cgroup cg. The second return is false if the file does not exist.
	Get(controller, cg, file string) (string, bool)
	// ParamExists probes existence without reading content; used by the
	// pruner to detect a cgroup that has been removed.
	ParamExists(controller, cg, file string) bool
}

// FSAccessor reads real v1-style cgroup control files rooted at Root
// (typically "/sys/fs/cgroup").
type FSAccessor struct {
	Root string
}

// NewFSAccessor returns an Accessor rooted at the conventional v1 cgroupfs
// mount point.
func NewFSAccessor() FSAccessor {
	return FSAccessor{Root: "/sys/fs/cgroup"}
}

func (a FSAccessor) path(controller, cg, file string) string {
	return filepath.Join(a.Root, controller, cg, file)
}

func (a FSAccessor) Get(controller, cg, file string) (string, bool) {
	b, err := os.ReadFile(a.path(controller, cg, file))
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(b), "\n"), true
}

func (a FSAccessor) ParamExists(controller, cg, file string) bool {
	_, err := os.Stat(a.path(controller, cg, file))
	return err == nil
}
