//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpuview/cpuview/pkg/cpuview"
)

type opts struct {
	cgroup     string
	hostStat   string
	configPath string
	tickRate   int64
	outBufCap  int
	watch      time.Duration
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "cpuview-cat CGROUP_PATH",
		Short: "Render a container's virtualized /proc/stat",
		Long: `cpuview-cat renders the per-container virtualized CPU-time view a
container's /proc/stat would show: host per-CPU accounting reconciled
against the container's cgroup cpuacct and CFS bandwidth policy.

Examples:
  cpuview-cat /docker/3f2a9c
  cpuview-cat --host-stat /proc/stat --watch 1s /kubepods/burstable/pod.../container`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.cgroup = args[0]
			return run(o)
		},
	}

	root.Flags().StringVar(&o.hostStat, "host-stat", "/proc/stat", "path to the host's per-CPU accounting file")
	root.Flags().StringVar(&o.configPath, "config", "", "optional YAML config file overriding engine defaults")
	root.Flags().Int64Var(&o.tickRate, "tick-rate", 0, "USER_HZ override (0 = autodetect)")
	root.Flags().IntVar(&o.outBufCap, "out-buf-cap", 0, "hard cap in bytes on the rendered output (0 = unbounded)")
	root.Flags().DurationVarP(&o.watch, "watch", "w", 0, "re-render every interval instead of once (0 = run once)")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(o opts) error {
	cfg := cpuview.Config{TickRate: o.tickRate, OutBufCap: o.outBufCap}
	if o.configPath != "" {
		loaded, err := cpuview.LoadConfig(o.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if o.tickRate > 0 {
			cfg.TickRate = o.tickRate
		}
		if o.outBufCap > 0 {
			cfg.OutBufCap = o.outBufCap
		}
	}

	eng, err := cpuview.New(cfg)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}
	defer eng.Shutdown()

	if o.watch <= 0 {
		return renderOnce(eng, o)
	}

	ticker := time.NewTicker(o.watch)
	defer ticker.Stop()
	for range ticker.C {
		if err := renderOnce(eng, o); err != nil {
			slog.Warn("render failed", "err", err)
		}
	}
	return nil
}

func renderOnce(eng *cpuview.Engine, o opts) error {
	f, err := os.Open(o.hostStat)
	if err != nil {
		return fmt.Errorf("open host stat: %w", err)
	}
	defer func() { _ = f.Close() }()

	out, err := eng.ProcStat(o.cgroup, f)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
