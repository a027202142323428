package stats

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cognicore/sanasto/pkg/sanasto/cache"
)

type fixedCache cache.Stats

func (f fixedCache) Stats() cache.Stats { return cache.Stats(f) }

func TestRecorderLogsEveryInterval(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(3,
		WithLogger(log.New(&buf, "", 0)),
		WithCache(fixedCache{Hits: 3, Misses: 1, Size: 4}),
	)

	for i := 0; i < 7; i++ {
		r.TokenProcessed()
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "stats: tokens=3 ")
	require.Contains(t, lines[1], "tokens=6 ")
	require.Contains(t, lines[1], "cache_size=4 cache_hits=3 hit_ratio=0.750")
}

func TestRecorderZeroIntervalIsSilent(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(0, WithLogger(log.New(&buf, "", 0)))
	for i := 0; i < 100; i++ {
		r.TokenProcessed()
	}
	require.Empty(t, buf.String())
	require.Equal(t, int64(100), r.Snapshot().Tokens)
}

func TestRecorderAnalysisTime(t *testing.T) {
	r := NewRecorder(0)
	r.Analyzed(2 * time.Millisecond)
	r.Analyzed(4 * time.Millisecond)

	s := r.Snapshot()
	require.Equal(t, int64(2), s.Analyses)
	require.Equal(t, 6*time.Millisecond, s.AnalysisTime)
	require.Equal(t, 3*time.Millisecond, s.AvgAnalysis())
	require.Zero(t, s.HitRatio())
}

func TestRecorderConcurrent(t *testing.T) {
	r := NewRecorder(0)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.TokenProcessed()
				r.Analyzed(time.Microsecond)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int64(4000), r.Snapshot().Tokens)
	require.Equal(t, int64(4000), r.Snapshot().Analyses)
}

func TestNopObserver(t *testing.T) {
	var o Observer = Nop{}
	o.TokenProcessed()
	o.Analyzed(time.Second)
}
