package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cognicore/sanasto/pkg/sanasto/analysis"
	"github.com/cognicore/sanasto/pkg/sanasto/decompound"
	"github.com/cognicore/sanasto/pkg/sanasto/facet"
	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
	"github.com/cognicore/sanasto/pkg/sanasto/morph"
)

// Loader loads the configuration file and constructs components
type Loader struct {
	Path   string
	Logger *log.Logger
}

// Components holds all loaded configuration components
type Components struct {
	Pipeline *analysis.Pipeline
	// Factory is nil when no analyzer is configured.
	Factory *decompound.Factory
	Schema  facet.Schema
	// Facets holds default facet parameters.
	Facets url.Values
}

// Close releases the pipeline and its analyzer.
func (c *Components) Close() error {
	return c.Pipeline.Close()
}

// Load reads the configuration file and returns initialized components.
// An empty path yields the defaults.
func (l *Loader) Load() (*Components, error) {
	file := Default()
	if l.Path != "" {
		var err error
		file, err = Load(l.Path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	return l.Build(file)
}

// Build constructs components from a parsed configuration.
func (l *Loader) Build(file *File) (*Components, error) {
	comp := &Components{
		Schema: facet.Schema{},
		Facets: url.Values{},
	}

	for name, field := range file.Schema {
		kind, err := facet.ParseKind(field.Kind)
		if err != nil {
			return nil, fmt.Errorf("schema field %q: %w", name, err)
		}
		comp.Schema[name] = facet.FieldSpec{Kind: kind, Interval: field.Interval}
	}

	for name, vals := range file.Facets {
		comp.Facets[name] = append([]string(nil), vals...)
	}

	var stages []analysis.Stage
	if file.Analysis.DecompoundEnabled() {
		analyzer, err := l.analyzer(file.Analysis)
		if err != nil {
			return nil, err
		}
		if analyzer != nil {
			var opts []decompound.FactoryOption
			if l.Logger != nil {
				opts = append(opts, decompound.WithLogger(l.Logger))
			}
			factory, err := newFactory(file.Analysis.Config, analyzer, opts...)
			if err != nil {
				return nil, err
			}
			comp.Factory = factory
			stages = append(stages, factory)
		}
	}

	stages = append(stages, analysis.Lowercase)
	if len(file.Analysis.Stopwords) > 0 {
		stages = append(stages, analysis.Stop(analysis.NewStopSet(file.Analysis.Stopwords)))
	}
	comp.Pipeline = analysis.NewPipeline(stages...)

	return comp, nil
}

// newFactory builds the filter factory. The analyzer is closed when the
// factory cannot take ownership of it.
func newFactory(cfg decompound.Config, analyzer morph.Analyzer, opts ...decompound.FactoryOption) (*decompound.Factory, error) {
	factory, err := decompound.NewFactory(cfg, analyzer, opts...)
	if err == nil {
		return factory, nil
	}
	err = fmt.Errorf("decompound: %w", err)
	if c, ok := analyzer.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close analyzer: %w", cerr))
		}
	}
	return nil, err
}

// analyzer chains the configured analyzers: inline words, then the
// dictionary, then the stemmer. It returns nil when none is configured.
func (l *Loader) analyzer(a Analysis) (morph.Analyzer, error) {
	var chain morph.Chain

	if len(a.Words) > 0 {
		entries := make(map[string][]morph.Analysis, len(a.Words))
		for word, lines := range a.Words {
			for _, line := range lines {
				an, err := parseAnalysis(line)
				if err != nil {
					return nil, fmt.Errorf("word %q: %w", word, err)
				}
				entries[word] = append(entries[word], an)
			}
		}
		chain = append(chain, morph.NewStaticAnalyzer(entries))
	}

	if a.Dictionary != "" {
		path := a.Dictionary
		if !filepath.IsAbs(path) && l.Path != "" {
			path = filepath.Join(filepath.Dir(l.Path), path)
		}
		dict, err := morph.OpenDict(path)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		chain = append(chain, dict)
	}

	if a.Stemmer {
		chain = append(chain, morph.NewStemAnalyzer())
	}

	switch len(chain) {
	case 0:
		return nil, nil
	case 1:
		return chain[0], nil
	}
	return chain, nil
}

// parseAnalysis reads "NAME=value NAME=value". Values run to the next
// space.
func parseAnalysis(s string) (morph.Analysis, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty analysis", internalerr.ErrInvalidConfig)
	}
	kv := make([]string, 0, 2*len(fields))
	for _, f := range fields {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: attribute %q is not NAME=value", internalerr.ErrInvalidConfig, f)
		}
		kv = append(kv, name, value)
	}
	return morph.NewAnalysis(kv...), nil
}
