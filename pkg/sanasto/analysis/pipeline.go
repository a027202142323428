package analysis

import (
	"errors"
	"io"
)

// Stage wraps a stream with another processing step.
type Stage interface {
	Wrap(in TokenStream) TokenStream
}

// StageFunc adapts a function to Stage.
type StageFunc func(in TokenStream) TokenStream

// Wrap implements Stage.
func (f StageFunc) Wrap(in TokenStream) TokenStream { return f(in) }

// Lowercase is the lowercasing stage.
var Lowercase Stage = StageFunc(func(in TokenStream) TokenStream { return NewLowercaseFilter(in) })

// Stop returns a stage dropping the given stopwords.
func Stop(stops StopSet) Stage {
	return StageFunc(func(in TokenStream) TokenStream { return NewStopFilter(in, stops) })
}

// Pipeline runs text through the tokenizer and its stages in order.
// A pipeline is safe for concurrent use when its stages are; every call
// to Stream builds fresh filters.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline from stages.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Stream returns a token stream over text.
func (p *Pipeline) Stream(text string) TokenStream {
	var ts TokenStream = NewTokenizer(text)
	for _, st := range p.stages {
		ts = st.Wrap(ts)
	}
	return ts
}

// Analyze runs text through the pipeline and collects the tokens.
func (p *Pipeline) Analyze(text string) ([]Token, error) {
	return Collect(p.Stream(text))
}

// Close closes stages that hold resources, such as a decompounding
// filter factory and its analyzer.
func (p *Pipeline) Close() error {
	var errs []error
	for _, st := range p.stages {
		if c, ok := st.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
