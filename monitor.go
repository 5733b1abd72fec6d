package fncache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/leowzz/fn-cache/cache"
)

// DefaultMonitorInterval is the sampler cadence when none is given.
const DefaultMonitorInterval = time.Minute

// monitor is the process-wide memory sampler. One sampler at a time;
// each tick logs a per-cache footprint summary.
var monitor struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	clock  clockwork.Clock
}

// GetMemoryUsage samples the footprint of every live cache on demand.
// External backends report Unknown.
func GetMemoryUsage() map[string]cache.Usage {
	return cache.AllUsage()
}

// StartMemoryMonitoring launches a background sampler that logs one
// footprint summary per interval. Returns ErrMonitorRunning if a
// sampler is already active.
func StartMemoryMonitoring(interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}

	monitor.mu.Lock()
	defer monitor.mu.Unlock()

	if monitor.cancel != nil {
		return ErrMonitorRunning
	}
	if monitor.clock == nil {
		monitor.clock = clockwork.NewRealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	monitor.cancel = cancel
	monitor.done = done

	go sample(ctx, monitor.clock, interval, done)
	return nil
}

// StopMemoryMonitoring cancels the background sampler and waits for it
// to exit. A no-op when none is running.
func StopMemoryMonitoring() {
	monitor.mu.Lock()
	cancel, done := monitor.cancel, monitor.done
	monitor.cancel, monitor.done = nil, nil
	monitor.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func sample(ctx context.Context, clock clockwork.Clock, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			logUsage()
		}
	}
}

func logUsage() {
	var entries int
	var bytes int64
	caches := 0

	for name, u := range cache.AllUsage() {
		if u.Unknown {
			log.Info().Str("cache", name).Msg("cache memory unknown (external backend)")
			continue
		}
		caches++
		entries += u.Entries
		bytes += u.Bytes
		log.Info().
			Str("cache", name).
			Int("entries", u.Entries).
			Int64("bytes", u.Bytes).
			Int("capacity", u.Capacity).
			Uint64("evictions", u.Evictions).
			Msg("cache memory sample")
	}

	log.Info().Int("caches", caches).Int("entries", entries).Int64("bytes", bytes).Msg("cache memory total")
}
