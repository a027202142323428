package facet

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
)

// Request parameter names.
const (
	ParamRange    = "facet.range"
	ParamStart    = "facet.range.start"
	ParamEnd      = "facet.range.end"
	ParamGap      = "facet.range.gap"
	ParamHardEnd  = "facet.range.hardend"
	ParamInclude  = "facet.range.include"
	ParamOther    = "facet.range.other"
	ParamMinCount = "facet.mincount"
)

// ParseParams builds facet requests from query parameters.
//
// Every facet.range value names a field, optionally prefixed with local
// parameters: "{!key=decades ex=yearfilter}year". Other parameters are
// looked up per field first (f.year.facet.range.gap) and then globally
// (facet.range.gap). Fields must be present in schema.
func ParseParams(values url.Values, schema Schema) ([]Request, error) {
	var reqs []Request
	for _, raw := range values[ParamRange] {
		local, field, err := SplitLocalParams(raw)
		if err != nil {
			return nil, err
		}
		if field == "" {
			return nil, fmt.Errorf("%w: empty %s value", internalerr.ErrInvalidInput, ParamRange)
		}
		spec, ok := schema[field]
		if !ok {
			return nil, fmt.Errorf("%w: unable to range facet on unknown field %s", internalerr.ErrInvalidInput, field)
		}

		p := fieldParams{values: values, field: field}
		req := Request{
			Key:   field,
			Field: field,
			Kind:  spec.Kind,
		}
		if k, ok := local["key"]; ok && k != "" {
			req.Key = k
		}
		if ex := local["ex"]; ex != "" {
			req.Exclude = splitList([]string{ex})
		}

		if req.Start, err = p.required(ParamStart); err != nil {
			return nil, err
		}
		if req.End, err = p.required(ParamEnd); err != nil {
			return nil, err
		}
		if req.Gap, err = p.required(ParamGap); err != nil {
			return nil, err
		}
		if req.MinCount, err = p.getInt(ParamMinCount, 0); err != nil {
			return nil, err
		}
		if req.HardEnd, err = p.getBool(ParamHardEnd); err != nil {
			return nil, err
		}
		if req.Include, err = ParseInclude(p.all(ParamInclude)); err != nil {
			return nil, err
		}
		if req.Other, err = ParseOther(p.all(ParamOther)); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// fieldParams resolves per-field overrides.
type fieldParams struct {
	values url.Values
	field  string
}

func (p fieldParams) all(name string) []string {
	if v, ok := p.values["f."+p.field+"."+name]; ok {
		return v
	}
	return p.values[name]
}

func (p fieldParams) get(name string) (string, bool) {
	v := p.all(name)
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func (p fieldParams) required(name string) (string, error) {
	v, ok := p.get(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: missing required parameter: f.%s.%s or %s",
			internalerr.ErrInvalidInput, p.field, name, name)
	}
	return v, nil
}

func (p fieldParams) getInt(name string, def int) (int, error) {
	v, ok := p.get(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid integer %q for %s", internalerr.ErrInvalidInput, v, name)
	}
	return n, nil
}

func (p fieldParams) getBool(name string) (bool, error) {
	v, ok := p.get(name)
	if !ok {
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%w: invalid boolean %q for %s", internalerr.ErrInvalidInput, v, name)
	}
	return b, nil
}

// SplitLocalParams separates "{!k=v k2='v 2'}rest" into its parameters
// and rest. A value without the prefix has no parameters.
func SplitLocalParams(s string) (map[string]string, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{!") {
		return nil, s, nil
	}

	params := make(map[string]string)
	i := 2
	for {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			return nil, "", fmt.Errorf("%w: unterminated local params in %q", internalerr.ErrInvalidInput, s)
		}
		if s[i] == '}' {
			return params, strings.TrimSpace(s[i+1:]), nil
		}

		keyStart := i
		for i < len(s) && s[i] != '=' && s[i] != ' ' && s[i] != '}' {
			i++
		}
		key := s[keyStart:i]
		if i >= len(s) || s[i] != '=' {
			return nil, "", fmt.Errorf("%w: expected '=' after %q in %q", internalerr.ErrInvalidInput, key, s)
		}
		i++

		var val string
		if i < len(s) && (s[i] == '\'' || s[i] == '"') {
			quote := s[i]
			end := strings.IndexByte(s[i+1:], quote)
			if end < 0 {
				return nil, "", fmt.Errorf("%w: unterminated quote in %q", internalerr.ErrInvalidInput, s)
			}
			val = s[i+1 : i+1+end]
			i += end + 2
		} else {
			valStart := i
			for i < len(s) && s[i] != ' ' && s[i] != '}' {
				i++
			}
			val = s[valStart:i]
		}
		params[key] = val
	}
}
