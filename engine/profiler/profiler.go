package profiler

import (
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Report is the summary of one profiling interval.
type Report struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	// Timings holds the mean duration of each named sample observed during the interval.
	Timings map[string]time.Duration
}

// String formats the report as a single log line.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		r.FPS, r.HeapMB, r.AllocRateMB, r.GCCount, r.LastPauseUs, r.MaxPauseUs, r.SysMB)

	names := make([]string, 0, len(r.Timings))
	for name := range r.Timings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " | %s: %s", name, r.Timings[name])
	}
	return b.String()
}

type sample struct {
	total time.Duration
	count int
}

// Profiler tracks frame rate, memory statistics and named timings.
// Stats are logged and kept as the latest Report at a fixed interval.
type Profiler struct {
	mu *sync.Mutex

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	samples map[string]*sample
	last    Report
	quiet   bool
	now     func() time.Time
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a report is produced. The default is one second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithQuiet keeps reports available through Last without logging them.
func WithQuiet(quiet bool) ProfilerOption {
	return func(p *Profiler) {
		p.quiet = quiet
	}
}

// withClock replaces time.Now, for tests.
func withClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		updateInterval: time.Second,
		samples:        make(map[string]*sample),
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Observe records one duration under name. Each report carries the mean of every name observed in its interval.
//
// Parameters:
//   - name: sample name, e.g. "ik"
//   - d: measured duration
func (p *Profiler) Observe(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.samples[name]
	if !ok {
		s = &sample{}
		p.samples[name] = s
	}
	s.total += d
	s.count++
}

// Time runs fn and observes its duration under name.
func (p *Profiler) Time(name string, fn func()) {
	start := p.now()
	fn()
	p.Observe(name, p.now().Sub(start))
}

// Last returns the most recent report.
func (p *Profiler) Last() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Tick should be called once per frame. When the update interval has elapsed it builds a Report from frame timing,
// heap and GC statistics and the named samples, logs it and resets the interval.
//
// Returns:
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
		Timings:     make(map[string]time.Duration, len(p.samples)),
	}

	gcCount := p.memStats.NumGC
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	for name, s := range p.samples {
		if s.count > 0 {
			r.Timings[name] = s.total / time.Duration(s.count)
		}
		delete(p.samples, name)
	}

	if !p.quiet {
		log.Printf("[Profiler] %s", r)
	}

	p.last = r
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
