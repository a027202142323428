package decompound

import (
	"fmt"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
)

// Config holds the filter options.
type Config struct {
	// ExpandCompounds emits compound parts next to the baseform.
	ExpandCompounds bool `yaml:"expand_compounds"`
	// MinWordSize is the shortest word, in runes, sent to the analyzer.
	MinWordSize int `yaml:"min_word_size"`
	// MinSubwordSize and MaxSubwordSize bound emitted parts, in runes.
	MinSubwordSize int `yaml:"min_subword_size"`
	MaxSubwordSize int `yaml:"max_subword_size"`
	// AllAnalysis expands every analysis instead of the first one.
	AllAnalysis bool `yaml:"all_analysis"`
	// CacheSize bounds the shared result cache. Zero disables it.
	CacheSize int `yaml:"cache_size"`
	// StatsInterval logs statistics every N words. Zero disables it.
	StatsInterval int `yaml:"stats_interval"`
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		MinWordSize:    3,
		MinSubwordSize: 2,
		MaxSubwordSize: 25,
		CacheSize:      1024,
	}
}

// Validate checks option ranges.
func (c Config) Validate() error {
	switch {
	case c.MinWordSize < 0:
		return fmt.Errorf("%w: min_word_size must not be negative", internalerr.ErrInvalidConfig)
	case c.MinSubwordSize < 0:
		return fmt.Errorf("%w: min_subword_size must not be negative", internalerr.ErrInvalidConfig)
	case c.MaxSubwordSize <= 0:
		return fmt.Errorf("%w: max_subword_size must be positive", internalerr.ErrInvalidConfig)
	case c.MinSubwordSize > c.MaxSubwordSize:
		return fmt.Errorf("%w: min_subword_size %d exceeds max_subword_size %d",
			internalerr.ErrInvalidConfig, c.MinSubwordSize, c.MaxSubwordSize)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: cache_size must not be negative", internalerr.ErrInvalidConfig)
	case c.StatsInterval < 0:
		return fmt.Errorf("%w: stats_interval must not be negative", internalerr.ErrInvalidConfig)
	}
	return nil
}
