// Package sanasto indexes Finnish text with compound decomposition and
// counts documents in numeric and date ranges.
package sanasto

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/oklog/ulid/v2"

	"github.com/cognicore/sanasto/pkg/sanasto/analysis"
	"github.com/cognicore/sanasto/pkg/sanasto/facet"
	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

// Sanasto is the indexing and faceting facade
type Sanasto struct {
	store    store.Store
	pipeline *analysis.Pipeline
	schema   facet.Schema
	now      func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures a Sanasto instance
type Options struct {
	Store    store.Store
	Pipeline *analysis.Pipeline
	Schema   facet.Schema
	// Now resolves NOW in date facets. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Sanasto instance with the given dependencies. The
// published_at date field is always part of the schema.
func New(opts Options) *Sanasto {
	schema := make(facet.Schema, len(opts.Schema)+1)
	for name, spec := range opts.Schema {
		schema[name] = spec
	}
	if _, ok := schema[store.PublishedField]; !ok {
		schema[store.PublishedField] = facet.FieldSpec{Kind: facet.KindDate}
	}

	pipeline := opts.Pipeline
	if pipeline == nil {
		pipeline = analysis.NewPipeline(analysis.Lowercase)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Sanasto{
		store:    opts.Store,
		pipeline: pipeline,
		schema:   schema,
		now:      now,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Close shuts down the store and the pipeline's analyzers
func (s *Sanasto) Close() error {
	return errors.Join(s.store.Close(), s.pipeline.Close())
}

// Schema returns the facetable fields.
func (s *Sanasto) Schema() facet.Schema {
	return s.schema
}

// Analyze runs text through the pipeline.
func (s *Sanasto) Analyze(text string) ([]analysis.Token, error) {
	return s.pipeline.Analyze(text)
}

// Documents returns up to limit documents sharing a term with the
// analyzed text, newest first.
func (s *Sanasto) Documents(ctx context.Context, text string, limit int) ([]store.Doc, error) {
	tokens, err := s.pipeline.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("analyze %q: %w", text, err)
	}
	terms := analysis.Terms(tokens)
	if len(terms) == 0 {
		return nil, nil
	}
	return s.store.GetDocsByTokens(ctx, terms, limit)
}

// IngestDoc represents a document to be ingested
type IngestDoc struct {
	URL         string
	Title       string
	PublishedAt time.Time
	BodyText    string
	Fields      map[string]store.Field
}

// Ingest analyzes and stores a document and returns its URL. Documents
// without a URL get a urn:ulid: identifier.
func (s *Sanasto) Ingest(ctx context.Context, d IngestDoc) (string, error) {
	fields, err := s.checkFields(d.Fields)
	if err != nil {
		return "", err
	}
	if !d.PublishedAt.IsZero() {
		fields[store.PublishedField] = store.Point(store.Time(d.PublishedAt))
	}

	tokens, err := s.pipeline.Analyze(d.Title + "\n" + d.BodyText)
	if err != nil {
		return "", fmt.Errorf("analyze %q: %w", d.URL, err)
	}

	url := d.URL
	if url == "" {
		url = "urn:ulid:" + s.newID()
	}

	doc := store.Doc{
		URL:         url,
		Title:       d.Title,
		PublishedAt: d.PublishedAt,
		Tokens:      analysis.Terms(tokens),
		Fields:      fields,
	}
	if err := s.store.UpsertDoc(ctx, doc); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Sanasto) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

// checkFields validates field values against the schema and converts
// numbers to the field's representation.
func (s *Sanasto) checkFields(in map[string]store.Field) (map[string]store.Field, error) {
	out := make(map[string]store.Field, len(in)+1)
	for name, f := range in {
		spec, ok := s.schema[name]
		if !ok {
			return nil, fmt.Errorf("%w: field %q is not in the schema", internalerr.ErrInvalidInput, name)
		}
		switch spec.Kind {
		case facet.KindFloat, facet.KindDouble:
			f = store.Interval(store.Float(f.Low.Float64()), store.Float(f.High.Float64()))
		default:
			if f.Low.IsFloat || f.High.IsFloat {
				return nil, fmt.Errorf("%w: field %q holds %s values", internalerr.ErrInvalidInput, name, spec.Kind)
			}
		}
		if f.Low.Compare(f.High) > 0 {
			return nil, fmt.Errorf("%w: field %q starts after it ends: %s > %s",
				internalerr.ErrInvalidInput, name, f.Low, f.High)
		}
		if !spec.Interval && f.Low.Compare(f.High) != 0 {
			return nil, fmt.Errorf("%w: field %q takes a single value", internalerr.ErrInvalidInput, name)
		}
		out[name] = f
	}
	return out, nil
}

// TaggedFilter restricts the documents being faceted. Range facets
// excluding one of its tags ignore the filter.
type TaggedFilter struct {
	Tags   []string
	Filter store.Filter
}

// FacetRequest defines a faceting query. Query terms and filters are
// intersected.
type FacetRequest struct {
	Query   []string
	Filters []TaggedFilter
	Ranges  []facet.Request
	// Rows is the number of matching documents to return.
	Rows int
}

// FacetResponse holds one result per requested range, in request order.
type FacetResponse struct {
	// Matches is the size of the base document set, or -1 when the
	// request has no query and no filters.
	Matches int             `json:"matches"`
	Ranges  []*facet.Result `json:"ranges"`
	Docs    []DocHit        `json:"docs,omitempty"`
}

// DocHit is a document in the base set of a facet response.
type DocHit struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Facets computes range facets over the documents matching the request.
func (s *Sanasto) Facets(ctx context.Context, req FacetRequest) (*FacetResponse, error) {
	base, err := s.docSet(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	resp := &FacetResponse{Matches: -1, Ranges: make([]*facet.Result, 0, len(req.Ranges))}
	if base != nil {
		resp.Matches = int(base.GetCardinality())
		if resp.Docs, err = s.hits(ctx, base, req.Rows); err != nil {
			return nil, err
		}
	}

	for _, r := range req.Ranges {
		if r.Kind == facet.KindUnknown {
			if spec, ok := s.schema[r.Field]; ok {
				r.Kind = spec.Kind
			}
		}
		if r.Now.IsZero() {
			r.Now = s.now()
		}

		docs := base
		if len(r.Exclude) > 0 {
			docs, err = s.docSet(ctx, req, r.Exclude)
			if err != nil {
				return nil, err
			}
		}

		res, err := facet.Compute(ctx, restricted{counter: s.store, docs: docs}, r)
		if err != nil {
			return nil, err
		}
		resp.Ranges = append(resp.Ranges, res)
	}
	return resp, nil
}

// hits loads the first rows documents of docs in id order.
func (s *Sanasto) hits(ctx context.Context, docs *roaring.Bitmap, rows int) ([]DocHit, error) {
	if rows <= 0 {
		return nil, nil
	}
	out := make([]DocHit, 0, min(rows, int(docs.GetCardinality())))
	it := docs.Iterator()
	for it.HasNext() && len(out) < rows {
		d, err := s.store.GetDoc(ctx, int64(it.Next()))
		if err != nil {
			return nil, fmt.Errorf("load matching doc: %w", err)
		}
		out = append(out, DocHit{ID: d.ID, URL: d.URL, Title: d.Title, PublishedAt: d.PublishedAt})
	}
	return out, nil
}

// docSet intersects the query terms and the filters not tagged with an
// excluded tag. A nil set means every document.
func (s *Sanasto) docSet(ctx context.Context, req FacetRequest, exclude []string) (*roaring.Bitmap, error) {
	var acc *roaring.Bitmap
	and := func(f store.Filter) error {
		bm, err := s.store.DocSet(ctx, f)
		if err != nil {
			return err
		}
		if acc == nil {
			acc = bm
		} else {
			acc.And(bm)
		}
		return nil
	}

	for _, term := range req.Query {
		if err := and(store.Filter{Token: term}); err != nil {
			return nil, fmt.Errorf("doc set for %q: %w", term, err)
		}
	}
	for _, tf := range req.Filters {
		if excluded(tf.Tags, exclude) {
			continue
		}
		if err := and(tf.Filter); err != nil {
			return nil, fmt.Errorf("doc set for filter %v: %w", tf.Tags, err)
		}
	}
	return acc, nil
}

func excluded(tags, exclude []string) bool {
	for _, t := range tags {
		for _, ex := range exclude {
			if t == ex {
				return true
			}
		}
	}
	return false
}

// restricted counts only documents in docs.
type restricted struct {
	counter facet.Counter
	docs    *roaring.Bitmap
}

func (r restricted) RangeCount(ctx context.Context, q store.RangeQuery) (int, error) {
	if r.docs != nil {
		q.Docs = r.docs
	}
	return r.counter.RangeCount(ctx, q)
}
