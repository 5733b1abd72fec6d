package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Stats tracks a manager's operation counters and a Welford running
// mean of operation latency in microseconds. Counters are atomics; the
// latency accumulator shares one small mutex. When a real meter is
// configured the counters are mirrored to OpenTelemetry instruments.
type Stats struct {
	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
	errors  atomic.Int64

	mu    sync.Mutex
	count int64
	mean  float64
	m2    float64

	otelHits    metric.Int64Counter
	otelMisses  metric.Int64Counter
	otelSets    metric.Int64Counter
	otelDeletes metric.Int64Counter
	otelErrors  metric.Int64Counter
	otelLatency metric.Float64Histogram
	attrs       metric.MeasurementOption
}

// Snapshot is a read-only view of a manager's counters.
type Snapshot struct {
	Hits       int64
	Misses     int64
	Sets       int64
	Deletes    int64
	Errors     int64
	Operations int64

	// MeanLatencyMicros and LatencyVarianceMicros summarize operation
	// latency over Operations samples.
	MeanLatencyMicros     float64
	LatencyVarianceMicros float64
}

// Map renders the snapshot as a plain mapping.
func (s Snapshot) Map() map[string]any {
	return map[string]any{
		"hits":                    s.Hits,
		"misses":                  s.Misses,
		"sets":                    s.Sets,
		"deletes":                 s.Deletes,
		"errors":                  s.Errors,
		"operations":              s.Operations,
		"mean_latency_micros":     s.MeanLatencyMicros,
		"latency_variance_micros": s.LatencyVarianceMicros,
	}
}

func newStats(name string, meter metric.Meter) *Stats {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("fncache")
	}

	s := &Stats{attrs: metric.WithAttributes(attribute.String("cache", name))}
	if err := s.instrument(meter); err != nil {
		// A meter that cannot build the instruments degrades to noop.
		_ = s.instrument(noop.NewMeterProvider().Meter("fncache"))
	}
	return s
}

func (s *Stats) instrument(meter metric.Meter) error {
	var err error
	if s.otelHits, err = meter.Int64Counter("fncache.ops.hits",
		metric.WithDescription("Cache hits"), metric.WithUnit("{op}")); err != nil {
		return err
	}
	if s.otelMisses, err = meter.Int64Counter("fncache.ops.misses",
		metric.WithDescription("Cache misses"), metric.WithUnit("{op}")); err != nil {
		return err
	}
	if s.otelSets, err = meter.Int64Counter("fncache.ops.sets",
		metric.WithDescription("Cache writes"), metric.WithUnit("{op}")); err != nil {
		return err
	}
	if s.otelDeletes, err = meter.Int64Counter("fncache.ops.deletes",
		metric.WithDescription("Cache deletes"), metric.WithUnit("{op}")); err != nil {
		return err
	}
	if s.otelErrors, err = meter.Int64Counter("fncache.ops.errors",
		metric.WithDescription("Degraded cache operations"), metric.WithUnit("{error}")); err != nil {
		return err
	}
	if s.otelLatency, err = meter.Float64Histogram("fncache.op.duration_us",
		metric.WithDescription("Cache operation latency"), metric.WithUnit("us")); err != nil {
		return err
	}
	return nil
}

func (s *Stats) hit(ctx context.Context) {
	s.hits.Add(1)
	s.otelHits.Add(ctx, 1, s.attrs)
}

func (s *Stats) miss(ctx context.Context) {
	s.misses.Add(1)
	s.otelMisses.Add(ctx, 1, s.attrs)
}

func (s *Stats) set(ctx context.Context) {
	s.sets.Add(1)
	s.otelSets.Add(ctx, 1, s.attrs)
}

func (s *Stats) del(ctx context.Context) {
	s.deletes.Add(1)
	s.otelDeletes.Add(ctx, 1, s.attrs)
}

func (s *Stats) failure(ctx context.Context) {
	s.errors.Add(1)
	s.otelErrors.Add(ctx, 1, s.attrs)
}

func (s *Stats) observe(ctx context.Context, d time.Duration) {
	micros := float64(d.Microseconds())

	s.mu.Lock()
	s.count++
	delta := micros - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (micros - s.mean)
	s.mu.Unlock()

	s.otelLatency.Record(ctx, micros, s.attrs)
}

func (s *Stats) snapshot() Snapshot {
	s.mu.Lock()
	count, mean, m2 := s.count, s.mean, s.m2
	s.mu.Unlock()

	snap := Snapshot{
		Hits:              s.hits.Load(),
		Misses:            s.misses.Load(),
		Sets:              s.sets.Load(),
		Deletes:           s.deletes.Load(),
		Errors:            s.errors.Load(),
		Operations:        count,
		MeanLatencyMicros: mean,
	}
	if count > 0 {
		snap.LatencyVarianceMicros = m2 / float64(count)
	}
	return snap
}

func (s *Stats) reset() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.sets.Store(0)
	s.deletes.Store(0)
	s.errors.Store(0)

	s.mu.Lock()
	s.count, s.mean, s.m2 = 0, 0, 0
	s.mu.Unlock()
}
