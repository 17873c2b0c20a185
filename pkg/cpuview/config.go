package cpuview

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cpuview/cpuview/pkg/cache"
)

// Config is the engine's tunable surface: a flat struct with a defaulting
// constructor, every field overridable by the cmd/ CLI or a config file.
type Config struct {
	// TickRate is USER_HZ, the kernel tick rate both the host and cgroup
	// accounting sources report in. 0 means "use the host default"
	// (resolved by _defaultConfig via TickRate).
	TickRate int64 `yaml:"tick_rate"`

	// PruneInterval bounds how often a bucket's dead-cgroup sweep may run.
	PruneInterval time.Duration `yaml:"prune_interval"`

	// OutBufCap bounds the rendered /proc/stat body size; 0 means
	// unbounded. A render that would exceed a nonzero cap is a hard
	// failure.
	OutBufCap int `yaml:"out_buf_cap"`
}

// _defaultConfig returns the fixed defaults for every tunable.
func _defaultConfig() Config {
	return Config{
		TickRate:      TickRate(),
		PruneInterval: cache.DefaultPruneInterval,
		OutBufCap:     0,
	}
}

// LoadConfig reads a YAML config file and overlays it onto the default
// configuration. Missing fields in the file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := _defaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cpuview: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("cpuview: parse config %s: %w", path, err)
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = TickRate()
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = cache.DefaultPruneInterval
	}
	return cfg, nil
}
