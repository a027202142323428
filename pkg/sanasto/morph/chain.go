package morph

import (
	"errors"
	"io"
)

// Chain consults analyzers in order and returns the first non-empty
// result.
type Chain []Analyzer

// Analyze implements Analyzer. An error from any member stops the chain.
func (c Chain) Analyze(word string) ([]Analysis, error) {
	for _, a := range c {
		analyses, err := a.Analyze(word)
		if err != nil {
			return nil, err
		}
		if len(analyses) > 0 {
			return analyses, nil
		}
	}
	return nil, nil
}

// Close closes every member that holds resources.
func (c Chain) Close() error {
	var errs []error
	for _, a := range c {
		if closer, ok := a.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
