package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/sanasto/pkg/sanasto/decompound"
	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
)

// File is the layout of sanasto.yaml.
type File struct {
	Analysis Analysis             `yaml:"analysis"`
	Schema   map[string]Field     `yaml:"schema"`
	Facets   map[string]ParamList `yaml:"facets"`
}

// Analysis configures the text pipeline.
type Analysis struct {
	decompound.Config `yaml:",inline"`

	// Decompound disables the compound filter when false.
	Decompound *bool `yaml:"decompound"`
	// Dictionary is a morphology file read by morph.OpenDict.
	Dictionary string `yaml:"dictionary"`
	// Stemmer falls back to the Finnish snowball stemmer.
	Stemmer bool `yaml:"stemmer"`
	// Words are inline analyses: surface form to a list of
	// "NAME=value NAME=value" strings.
	Words     map[string][]string `yaml:"words"`
	Stopwords []string            `yaml:"stopwords"`
}

// Field describes a facetable field.
type Field struct {
	Kind     string `yaml:"kind"`
	Interval bool   `yaml:"interval"`
}

// ParamList is one or more parameter values. A scalar in YAML is a
// single value.
type ParamList []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (p *ParamList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = ParamList{node.Value}
		return nil
	case yaml.SequenceNode:
		var vals []string
		if err := node.Decode(&vals); err != nil {
			return err
		}
		*p = vals
		return nil
	}
	return fmt.Errorf("line %d: expected a value or a list of values", node.Line)
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{Analysis: Analysis{Config: decompound.DefaultConfig()}}
}

// Load reads a configuration file. Unset analysis options keep their
// defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes configuration from YAML.
func Parse(data []byte) (*File, error) {
	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, err)
	}
	return f, nil
}

// DecompoundEnabled reports whether the compound filter runs. It is on
// unless switched off explicitly.
func (a Analysis) DecompoundEnabled() bool {
	return a.Decompound == nil || *a.Decompound
}
