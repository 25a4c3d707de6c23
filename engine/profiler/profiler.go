package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/logger"

	"go.uber.org/zap"
)

// Profiler tracks frame rate and memory statistics and logs them at a fixed interval.
// A Profiler is used from a single goroutine and is not safe for concurrent use.
type Profiler struct {
	log            *zap.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are logged. Non-positive values keep the default.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the logger statistics are written to.
//
// Parameters:
//   - l: the destination logger
//
// Returns:
//   - ProfilerOption: option function to apply
func WithLogger(l *zap.Logger) ProfilerOption {
	return func(p *Profiler) {
		if l != nil {
			p.log = l
		}
	}
}

// NewProfiler creates a new Profiler reporting once per second to the "profiler" logger.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		log:            logger.Named("profiler"),
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame.
// When the interval has elapsed it logs FPS, heap usage, allocation rate and GC pauses
// together with any extra fields supplied by the caller.
//
// Parameters:
//   - extra: additional fields to attach to the report, such as renderer statistics
//
// Returns:
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick(extra ...zap.Field) bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	const mb = 1024 * 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	// PauseNs is a ring buffer of the last 256 pauses.
	gcCount := p.memStats.NumGC
	var lastPause, maxPause time.Duration
	if gcCount > 0 {
		lastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			maxPause = max(maxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	fields := append([]zap.Field{
		zap.Float64("fps", float64(p.frameCount)/elapsed.Seconds()),
		zap.Float64("heap_mb", float64(p.memStats.Alloc)/mb),
		zap.Float64("alloc_mb_per_s", float64(allocDelta)/mb/elapsed.Seconds()),
		zap.Uint32("gc", gcCount),
		zap.Duration("gc_last_pause", lastPause),
		zap.Duration("gc_max_pause", maxPause),
		zap.Float64("sys_mb", float64(p.memStats.Sys)/mb),
	}, extra...)
	p.log.Info("frame stats", fields...)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
