// Package stats collects decompounding throughput figures.
package stats

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/cognicore/sanasto/pkg/sanasto/cache"
)

// Observer receives filter activity. Implementations must be safe for
// concurrent use; filters on many goroutines share one observer.
type Observer interface {
	// TokenProcessed is called once per word sent to decomposition.
	TokenProcessed()
	// Analyzed is called after each analyzer call with its duration.
	Analyzed(d time.Duration)
}

// Nop discards everything.
type Nop struct{}

func (Nop) TokenProcessed()        {}
func (Nop) Analyzed(time.Duration) {}

// CacheStatser exposes cache counters to the recorder.
type CacheStatser interface {
	Stats() cache.Stats
}

// Snapshot is a copy of the recorder's counters.
type Snapshot struct {
	Tokens       int64
	Analyses     int64
	AnalysisTime time.Duration
	Cache        cache.Stats
}

// AvgAnalysis returns the mean analyzer call duration.
func (s Snapshot) AvgAnalysis() time.Duration {
	if s.Analyses == 0 {
		return 0
	}
	return s.AnalysisTime / time.Duration(s.Analyses)
}

// HitRatio returns cache hits over lookups, or 0 without lookups.
func (s Snapshot) HitRatio() float64 {
	lookups := s.Cache.Hits + s.Cache.Misses
	if lookups == 0 {
		return 0
	}
	return float64(s.Cache.Hits) / float64(lookups)
}

// Recorder counts activity with atomics and logs a snapshot every
// interval processed tokens.
type Recorder struct {
	interval int64
	logger   *log.Logger
	cache    CacheStatser

	tokens   atomic.Int64
	analyses atomic.Int64
	nanos    atomic.Int64
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger snapshots are written to.
func WithLogger(l *log.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithCache includes cache counters in snapshots.
func WithCache(c CacheStatser) Option {
	return func(r *Recorder) { r.cache = c }
}

// NewRecorder creates a recorder that logs every interval tokens.
// An interval of zero or less counts without logging.
func NewRecorder(interval int, opts ...Option) *Recorder {
	r := &Recorder{interval: int64(interval), logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TokenProcessed implements Observer.
func (r *Recorder) TokenProcessed() {
	n := r.tokens.Add(1)
	if r.interval > 0 && n%r.interval == 0 {
		r.Log()
	}
}

// Analyzed implements Observer.
func (r *Recorder) Analyzed(d time.Duration) {
	r.analyses.Add(1)
	r.nanos.Add(int64(d))
}

// Snapshot reads the counters without blocking writers.
func (r *Recorder) Snapshot() Snapshot {
	s := Snapshot{
		Tokens:       r.tokens.Load(),
		Analyses:     r.analyses.Load(),
		AnalysisTime: time.Duration(r.nanos.Load()),
	}
	if r.cache != nil {
		s.Cache = r.cache.Stats()
	}
	return s
}

// Log writes the current snapshot.
func (r *Recorder) Log() {
	s := r.Snapshot()
	r.logger.Printf("stats: tokens=%d analyses=%d analysis_ms=%d avg_ms=%.3f cache_size=%d cache_hits=%d hit_ratio=%.3f evictions=%d",
		s.Tokens, s.Analyses, s.AnalysisTime.Milliseconds(),
		float64(s.AvgAnalysis().Microseconds())/1000,
		s.Cache.Size, s.Cache.Hits, s.HitRatio(), s.Cache.Evictions)
}
