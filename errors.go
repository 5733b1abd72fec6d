package fncache

import "errors"

// Sentinel errors for wrapper construction and the memory monitor.
var (
	// ErrNilFunction is returned when a wrapper is built around nil.
	ErrNilFunction = errors.New("fncache: function is nil")

	// ErrMonitorRunning is returned by StartMemoryMonitoring when a
	// sampler is already active.
	ErrMonitorRunning = errors.New("fncache: memory monitor already running")
)
