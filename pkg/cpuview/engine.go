// Package cpuview wires the sample sources, capacity policy, per-cgroup
// cache, reconciliation algorithm, and renderer into the engine's external
// interface and lifecycle.
package cpuview

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/cpuview/cpuview/pkg/cache"
	"github.com/cpuview/cpuview/pkg/capacity"
	"github.com/cpuview/cpuview/pkg/cgroupacct"
	"github.com/cpuview/cpuview/pkg/hostproc"
	"github.com/cpuview/cpuview/pkg/reconcile"
	"github.com/cpuview/cpuview/pkg/render"
)

// Engine is the process-wide CPU-view instance: a configured registry plus
// the cgroup filesystem accessor it reads through.
type Engine struct {
	cfg              Config
	acc              cgroupacct.Accessor
	reg              *cache.Registry
	logger           *slog.Logger
	hostNprocsOnline func() int
	shutdown         atomic.Bool
}

// New initializes the engine. Zero fields in cfg take fixed defaults.
func New(cfg Config) (*Engine, error) {
	def := _defaultConfig()
	if cfg.TickRate <= 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = def.PruneInterval
	}

	reg, err := cache.NewWithPruneInterval(cfg.PruneInterval)
	if err != nil {
		return nil, fmt.Errorf("cpuview: init registry: %w", err)
	}

	return &Engine{
		cfg:              cfg,
		acc:              cgroupacct.NewFSAccessor(),
		reg:              reg,
		logger:           slog.Default(),
		hostNprocsOnline: HostNprocsOnline,
	}, nil
}

// SetAccessor overrides the cgroup filesystem accessor, for tests and for
// embedding under a non-default cgroupfs mount.
func (e *Engine) SetAccessor(acc cgroupacct.Accessor) { e.acc = acc }

// SetLogger overrides the engine's degraded-path diagnostic logger.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetHostNprocsOnlineFunc overrides the host online-CPU-count source
// (HostNprocsOnline by default), for tests and for embedding under a
// container runtime that already knows the answer.
func (e *Engine) SetHostNprocsOnlineFunc(f func() int) {
	if f != nil {
		e.hostNprocsOnline = f
	}
}

// Shutdown releases every cached node. The engine must not be used
// afterward; every subsequent call returns ErrEngineShutdown.
func (e *Engine) Shutdown() {
	if e.shutdown.CompareAndSwap(false, true) {
		e.reg.Shutdown()
	}
}

// ReadUsageAll returns the raw per-CPU cumulative cgroup sample for cg,
// unreconciled.
func (e *Engine) ReadUsageAll(cg string, maxPhys int) ([]cgroupacct.Usage, error) {
	if e.shutdown.Load() {
		return nil, ErrEngineShutdown
	}
	return cgroupacct.ReadUsageAll(e.acc, cg, e.cfg.TickRate, maxPhys, e.logger)
}

// MaxCPUCount computes the capacity policy derived from cg's quota/period
// and cpuset, given the caller-supplied host configured CPU count.
// hostNprocs is further clamped to the host's actual online CPU count
// (HostNprocsOnline), since a configured-but-offline CPU can never back a
// visible virtual CPU.
func (e *Engine) MaxCPUCount(cg string, hostNprocs, cpuCntInTable int) (capacity.Policy, error) {
	if e.shutdown.Load() {
		return capacity.Policy{}, ErrEngineShutdown
	}
	quota, period := cgroupacct.ReadQuotaPeriod(e.acc, cg)
	cset, err := cgroupacct.ReadCpuset(e.acc, cg)
	if err != nil {
		return capacity.Policy{}, fmt.Errorf("cpuview: read cpuset for %s: %w", cg, err)
	}
	return capacity.Compute(quota, period, cset, e.clampOnline(hostNprocs), cpuCntInTable), nil
}

// ProcStat runs one full read-reconcile-render cycle for cg against the
// live host stream in hostStat.
func (e *Engine) ProcStat(cg string, hostStat io.Reader) ([]byte, error) {
	if e.shutdown.Load() {
		return nil, ErrEngineShutdown
	}
	table, err := hostproc.Parse(hostStat, e.logger)
	if err != nil {
		return nil, fmt.Errorf("cpuview: parse host stat: %w", err)
	}
	hostNprocs := len(table.CPUs)
	if hostNprocs == 0 {
		return nil, ErrNoHostCPUs
	}
	// Physical indices may be non-contiguous; the node must cover the
	// largest one, not just the number of cpuN lines.
	nodeSize := 0
	for _, l := range table.CPUs {
		if l.Index+1 > nodeSize {
			nodeSize = l.Index + 1
		}
	}

	cset, err := cgroupacct.ReadCpuset(e.acc, cg)
	if err != nil {
		return nil, fmt.Errorf("cpuview: read cpuset for %s: %w", cg, err)
	}

	cgSample, err := cgroupacct.ReadUsageAll(e.acc, cg, e.cfg.TickRate, nodeSize-1, e.logger)
	if err != nil {
		return nil, fmt.Errorf("cpuview: read cgroup usage for %s: %w", cg, err)
	}

	cpuCntInTable := 0
	for _, l := range table.CPUs {
		if cset.Contains(l.Index) {
			cpuCntInTable++
		}
	}
	quota, period := cgroupacct.ReadQuotaPeriod(e.acc, cg)
	policy := capacity.Compute(quota, period, cset, e.clampOnline(hostNprocs), cpuCntInTable)

	node, err := e.reg.FindOrCreate(cg, nil, nodeSize, func(cg string) bool {
		return cgroupacct.Alive(e.acc, cg)
	})
	if err != nil {
		return nil, fmt.Errorf("cpuview: cache lookup for %s: %w", cg, err)
	}
	defer node.Unlock()

	res := reconcile.Reconcile(node, table.CPUs, cgSample, cset, policy.MaxCPUs, policy.ExactCPUs, e.logger)

	out, err := render.ProcStat(node, res, table.Tail, e.cfg.OutBufCap)
	if err != nil {
		e.logger.Warn("cpuview: render failed", "cg", cg, "err", err)
		return nil, err
	}
	return out, nil
}

// clampOnline narrows a configured host CPU count down to the host's
// actual online count, never past it and never past the configured count
// itself (a process' affinity mask cannot name a CPU the host doesn't have).
func (e *Engine) clampOnline(hostNprocsConfigured int) int {
	online := e.hostNprocsOnline()
	if online <= 0 || online > hostNprocsConfigured {
		return hostNprocsConfigured
	}
	return online
}
