// Package facet computes range facets: document counts for consecutive
// sub-ranges of a numeric or date field, plus optional counts before,
// after and between the faceted range.
package facet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

// Counter answers range-count queries. store.Store implements it.
type Counter interface {
	RangeCount(ctx context.Context, q store.RangeQuery) (int, error)
}

// Request is one range facet.
type Request struct {
	// Key names the result; it defaults to Field.
	Key   string
	Field string
	Kind  Kind
	Start string
	End   string
	// Gap is one gap or a comma separated list applied to successive
	// buckets, the last one repeating.
	Gap      string
	MinCount int
	Include  Include
	Other    Other
	// HardEnd extends End so the last bucket has its full width instead
	// of being cut at End.
	HardEnd bool
	// Exclude lists filter tags ignored when computing this facet's
	// document set.
	Exclude []string
	// Now resolves NOW in date expressions. Zero means time.Now.
	Now time.Time
}

// Bucket is one reported sub-range.
type Bucket struct {
	Label string `json:"label"`
	Low   string `json:"low"`
	High  string `json:"high"`
	Count int    `json:"count"`
}

// Result is the outcome of one Request.
type Result struct {
	Key     string   `json:"key"`
	Field   string   `json:"field"`
	Gap     string   `json:"gap"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Counts  []Bucket `json:"counts"`
	Before  *int     `json:"before,omitempty"`
	After   *int     `json:"after,omitempty"`
	Between *int     `json:"between,omitempty"`
}

// IsClientError reports whether err stems from a malformed request rather
// than a failure while counting.
func IsClientError(err error) bool {
	return internalerr.IsClientError(err)
}

// Compute walks req's range and counts every bucket with counter.
func Compute(ctx context.Context, counter Counter, req Request) (*Result, error) {
	switch req.Kind {
	case KindInt:
		return compute(ctx, counter, req, intDomain)
	case KindLong:
		return compute(ctx, counter, req, longDomain)
	case KindFloat:
		return compute(ctx, counter, req, floatDomain)
	case KindDouble:
		return compute(ctx, counter, req, doubleDomain)
	case KindDate:
		now := req.Now
		if now.IsZero() {
			now = time.Now()
		}
		return compute(ctx, counter, req, dateDomain(now))
	}
	return nil, fmt.Errorf("%w: unable to range facet on field %s", internalerr.ErrInvalidInput, req.Field)
}

func compute[T any](ctx context.Context, counter Counter, req Request, d domain[T]) (*Result, error) {
	start, err := d.parse(req.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: can't parse value %q for field %s: %v", internalerr.ErrInvalidInput, req.Start, req.Field, err)
	}
	end, err := d.parse(req.End)
	if err != nil {
		return nil, fmt.Errorf("%w: can't parse value %q for field %s: %v", internalerr.ErrInvalidInput, req.End, req.Field, err)
	}
	if d.compare(end, start) < 0 {
		return nil, fmt.Errorf("%w: range facet 'end' comes before 'start': %s < %s",
			internalerr.ErrInvalidRange, d.format(end), d.format(start))
	}

	gaps := strings.Split(req.Gap, ",")
	for _, gap := range gaps {
		ok, err := d.positive(start, gap)
		if err != nil {
			return nil, fmt.Errorf("%w: can't parse gap %q for field %s: %v", internalerr.ErrInvalidInput, gap, req.Field, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: gap %q for field %s must be positive", internalerr.ErrInvalidInput, gap, req.Field)
		}
	}

	include := req.Include
	if include == 0 {
		include = IncludeLower
	}
	key := req.Key
	if key == "" {
		key = req.Field
	}
	res := &Result{Key: key, Field: req.Field, Gap: req.Gap, Counts: []Bucket{}}

	count := func(low, high *T, incLower, incUpper bool) (int, error) {
		q := store.RangeQuery{Field: req.Field, IncludeLower: incLower, IncludeUpper: incUpper}
		if low != nil {
			n := d.number(*low)
			q.Low = &n
		}
		if high != nil {
			n := d.number(*high)
			q.High = &n
		}
		n, err := counter.RangeCount(ctx, q)
		if err != nil {
			return 0, fmt.Errorf("range count on %s: %w", req.Field, err)
		}
		return n, nil
	}

	low := start
	gapIdx := 0
	previous := 0
	for d.compare(low, end) < 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		high, err := d.addGap(low, gaps[gapIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: can't add gap %q to value %s for field %s: %v",
				internalerr.ErrInvalidInput, gaps[gapIdx], d.format(low), req.Field, err)
		}
		if d.compare(end, high) < 0 {
			if req.HardEnd {
				end = high
			} else {
				high = end
			}
		}
		if d.compare(high, low) <= 0 {
			return nil, fmt.Errorf("%w: range facet infinite loop (is gap negative? did the math overflow?)", internalerr.ErrInvalidRange)
		}

		incLower := include.Has(IncludeLower) || (include.Has(IncludeEdge) && d.compare(low, start) == 0)
		incUpper := include.Has(IncludeUpper) || (include.Has(IncludeEdge) && d.compare(high, end) == 0)

		n, err := count(&low, &high, incLower, incUpper)
		if err != nil {
			return nil, err
		}
		// Runs of equal counts are reported once, at their first bucket.
		if n >= req.MinCount && n != previous {
			lowS := d.format(low)
			res.Counts = append(res.Counts, Bucket{Label: lowS, Low: lowS, High: d.format(high), Count: n})
			previous = n
		}

		low = high
		gapIdx = min(len(gaps)-1, gapIdx+1)
	}

	res.Start = d.format(start)
	res.End = d.format(end)

	other := req.Other
	if other == 0 || other.Has(OtherNone) {
		return res, nil
	}
	if other&OtherBefore != 0 {
		n, err := count(nil, &start, false,
			include.Has(IncludeOuter) || !(include.Has(IncludeLower) || include.Has(IncludeEdge)))
		if err != nil {
			return nil, err
		}
		res.Before = &n
	}
	if other&OtherAfter != 0 {
		n, err := count(&end, nil,
			include.Has(IncludeOuter) || !(include.Has(IncludeUpper) || include.Has(IncludeEdge)), false)
		if err != nil {
			return nil, err
		}
		res.After = &n
	}
	if other&OtherBetween != 0 {
		n, err := count(&start, &end,
			include.Has(IncludeLower) || include.Has(IncludeEdge),
			include.Has(IncludeUpper) || include.Has(IncludeEdge))
		if err != nil {
			return nil, err
		}
		res.Between = &n
	}
	return res, nil
}
