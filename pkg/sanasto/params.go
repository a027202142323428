package sanasto

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/sanasto/pkg/sanasto/analysis"
	"github.com/cognicore/sanasto/pkg/sanasto/facet"
	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

// Request parameter names besides the facet.* ones.
const (
	ParamQuery  = "q"
	ParamFilter = "fq"
	ParamRows   = "rows"
)

// FacetParams runs a faceting request given as query parameters: q is
// analyzed text whose terms must all match, every fq adds a filter and
// facet.range parameters name the ranges. rows asks for that many of the
// matching documents.
func (s *Sanasto) FacetParams(ctx context.Context, values url.Values) (*FacetResponse, error) {
	var req FacetRequest

	if q := strings.TrimSpace(values.Get(ParamQuery)); q != "" {
		tokens, err := s.pipeline.Analyze(q)
		if err != nil {
			return nil, fmt.Errorf("analyze query: %w", err)
		}
		req.Query = analysis.Terms(tokens)
	}

	now := s.now()
	for _, raw := range values[ParamFilter] {
		f, err := ParseFilter(raw, s.schema, now)
		if err != nil {
			return nil, err
		}
		req.Filters = append(req.Filters, f)
	}

	if raw := values.Get(ParamRows); raw != "" {
		rows, err := strconv.Atoi(raw)
		if err != nil || rows < 0 {
			return nil, fmt.Errorf("%w: rows must be a non-negative integer, got %q", internalerr.ErrInvalidInput, raw)
		}
		req.Rows = rows
	}

	ranges, err := facet.ParseParams(values, s.schema)
	if err != nil {
		return nil, err
	}
	req.Ranges = ranges

	return s.Facets(ctx, req)
}

// ParseFilter reads one filter expression:
//
//	{!tag=a,b}year:[1950 TO 1960}
//	published_at:[NOW/YEAR TO *]
//	year:1950
//	saha
//
// Square brackets include the bound, braces exclude it and * leaves the
// side open. Text that does not name a schema field is a term filter.
func ParseFilter(raw string, schema facet.Schema, now time.Time) (TaggedFilter, error) {
	local, rest, err := facet.SplitLocalParams(raw)
	if err != nil {
		return TaggedFilter{}, err
	}
	var tf TaggedFilter
	if tag := local["tag"]; tag != "" {
		for _, t := range strings.Split(tag, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tf.Tags = append(tf.Tags, t)
			}
		}
	}

	field, body, ok := strings.Cut(rest, ":")
	spec, known := schema[field]
	if !ok || !known {
		term := strings.ToLower(strings.TrimSpace(rest))
		if term == "" {
			return TaggedFilter{}, fmt.Errorf("%w: empty filter %q", internalerr.ErrInvalidInput, raw)
		}
		tf.Filter = store.Filter{Token: term}
		return tf, nil
	}

	q, err := parseRange(field, spec.Kind, strings.TrimSpace(body), now)
	if err != nil {
		return TaggedFilter{}, err
	}
	tf.Filter = store.Filter{Range: q}
	return tf, nil
}

func parseRange(field string, kind facet.Kind, body string, now time.Time) (*store.RangeQuery, error) {
	q := &store.RangeQuery{Field: field, IncludeLower: true, IncludeUpper: true}

	if len(body) < 2 || (body[0] != '[' && body[0] != '{') {
		v, err := facet.ParseValue(kind, body, now)
		if err != nil {
			return nil, err
		}
		q.Low, q.High = &v, &v
		return q, nil
	}

	last := body[len(body)-1]
	if last != ']' && last != '}' {
		return nil, fmt.Errorf("%w: unterminated range %q for field %s", internalerr.ErrInvalidInput, body, field)
	}
	q.IncludeLower = body[0] == '['
	q.IncludeUpper = last == ']'

	lo, hi, ok := strings.Cut(body[1:len(body)-1], " TO ")
	if !ok {
		return nil, fmt.Errorf("%w: range %q for field %s needs 'low TO high'", internalerr.ErrInvalidInput, body, field)
	}
	var err error
	if q.Low, err = parseBound(kind, lo, now); err != nil {
		return nil, err
	}
	if q.High, err = parseBound(kind, hi, now); err != nil {
		return nil, err
	}
	return q, nil
}

func parseBound(kind facet.Kind, s string, now time.Time) (*store.Number, error) {
	s = strings.TrimSpace(s)
	if s == "*" {
		return nil, nil
	}
	v, err := facet.ParseValue(kind, s, now)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
