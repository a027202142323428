package decompound

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/sanasto/pkg/sanasto/analysis"
	"github.com/cognicore/sanasto/pkg/sanasto/cache"
	"github.com/cognicore/sanasto/pkg/sanasto/compound"
	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
	"github.com/cognicore/sanasto/pkg/sanasto/morph"
	"github.com/cognicore/sanasto/pkg/sanasto/stats"
)

var errFactoryClosed = errors.New("decompound: factory closed")

// Factory owns the analyzer, the result cache and the statistics observer
// shared by every filter it creates. Create is safe for concurrent use;
// each returned Filter belongs to one goroutine.
type Factory struct {
	cfg      Config
	opts     compound.Options
	analyzer morph.Analyzer
	cache    *cache.Cache
	observer stats.Observer
	logger   *log.Logger

	mu     sync.RWMutex
	closed bool
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithObserver replaces the default observer.
func WithObserver(o stats.Observer) FactoryOption {
	return func(f *Factory) { f.observer = o }
}

// WithLogger sets the logger used for periodic statistics.
func WithLogger(l *log.Logger) FactoryOption {
	return func(f *Factory) { f.logger = l }
}

// NewFactory validates cfg and builds the shared state. The factory takes
// ownership of analyzer: Close closes it when it implements io.Closer.
func NewFactory(cfg Config, analyzer morph.Analyzer, opts ...FactoryOption) (*Factory, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("%w: analyzer is required", internalerr.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Factory{
		cfg: cfg,
		opts: compound.Options{
			ExpandCompounds: cfg.ExpandCompounds,
			AllAnalysis:     cfg.AllAnalysis,
			MinSubwordSize:  cfg.MinSubwordSize,
			MaxSubwordSize:  cfg.MaxSubwordSize,
		},
		analyzer: analyzer,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if cfg.CacheSize > 0 {
		c, err := cache.New(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		f.cache = c
	}

	if f.observer == nil {
		if cfg.StatsInterval > 0 {
			ropts := []stats.Option{stats.WithLogger(f.logger)}
			if f.cache != nil {
				ropts = append(ropts, stats.WithCache(f.cache))
			}
			f.observer = stats.NewRecorder(cfg.StatsInterval, ropts...)
		} else {
			f.observer = stats.Nop{}
		}
	}
	return f, nil
}

// Config returns the factory's settings.
func (f *Factory) Config() Config {
	return f.cfg
}

// Cache returns the shared result cache, or nil when caching is off.
func (f *Factory) Cache() *cache.Cache {
	return f.cache
}

// Observer returns the statistics observer.
func (f *Factory) Observer() stats.Observer {
	return f.observer
}

// Create returns a filter reading from in.
func (f *Factory) Create(in analysis.TokenStream) *Filter {
	return &Filter{in: in, factory: f}
}

// Wrap implements analysis.Stage.
func (f *Factory) Wrap(in analysis.TokenStream) analysis.TokenStream {
	return f.Create(in)
}

// Close releases the analyzer and drops cached results. Filters used
// after Close fail with an analyzer error. Close is idempotent.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if f.cache != nil {
		f.cache.Purge()
	}
	if c, ok := f.analyzer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Decompose returns the sub-tokens for word, consulting the cache first.
// The returned slice is shared and must not be modified.
func (f *Factory) Decompose(word string) ([]compound.Token, error) {
	key := strings.ToLower(word)
	f.observer.TokenProcessed()

	if f.cache != nil {
		if tokens, ok := f.cache.Get(key); ok {
			return tokens, nil
		}
	}

	f.mu.RLock()
	if f.closed {
		f.mu.RUnlock()
		return nil, fmt.Errorf("%w: analyze %q: %w", internalerr.ErrAnalyzer, word, errFactoryClosed)
	}
	start := time.Now()
	analyses, err := f.analyzer.Analyze(key)
	f.observer.Analyzed(time.Since(start))
	f.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("%w: analyze %q: %w", internalerr.ErrAnalyzer, word, err)
	}

	tokens := compound.Assemble(analyses, f.opts)
	if f.cache != nil {
		f.cache.Put(key, tokens)
	}
	return tokens, nil
}
