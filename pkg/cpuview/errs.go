package cpuview

import "errors"

var (
	// ErrNoHostCPUs means the host accounting stream had no "cpuN" lines.
	ErrNoHostCPUs = errors.New("cpuview: host stat reports no CPUs")

	// ErrEngineShutdown means a call was made after Shutdown.
	ErrEngineShutdown = errors.New("cpuview: engine shut down")
)
