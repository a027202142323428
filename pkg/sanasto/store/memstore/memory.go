package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

// Store is an in-memory implementation of store.Store for tests and
// small corpora.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	docs     map[int64]store.Doc
	urlIndex map[string]int64
	postings map[string]*roaring.Bitmap
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		nextID:   1,
		docs:     make(map[int64]store.Doc),
		urlIndex: make(map[string]int64),
		postings: make(map[string]*roaring.Bitmap),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertDoc inserts or updates a document, keyed by URL.
func (s *Store) UpsertDoc(ctx context.Context, d store.Doc) error {
	if d.URL == "" {
		return fmt.Errorf("%w: document URL is required", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.urlIndex[d.URL]
	if !ok {
		id = s.nextID
		s.nextID++
		s.urlIndex[d.URL] = id
	}
	member, err := store.DocID(id)
	if err != nil {
		return err
	}

	if old, exists := s.docs[id]; exists {
		for _, tok := range old.Tokens {
			if bm := s.postings[tok]; bm != nil {
				bm.Remove(member)
				if bm.IsEmpty() {
					delete(s.postings, tok)
				}
			}
		}
	}

	d.ID = id
	d = copyDoc(d)
	d.Tokens = uniqueStrings(d.Tokens)
	for _, tok := range d.Tokens {
		bm := s.postings[tok]
		if bm == nil {
			bm = roaring.New()
			s.postings[tok] = bm
		}
		bm.Add(member)
	}
	s.docs[id] = d
	return nil
}

// GetDoc returns a document by ID.
func (s *Store) GetDoc(ctx context.Context, id int64) (store.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if doc, ok := s.docs[id]; ok {
		return copyDoc(doc), nil
	}
	return store.Doc{}, fmt.Errorf("doc %d: %w", id, internalerr.ErrNotFound)
}

// GetDocByURL returns a document by URL.
func (s *Store) GetDocByURL(ctx context.Context, url string) (store.Doc, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.urlIndex[url]; ok {
		if doc, exists := s.docs[id]; exists {
			return copyDoc(doc), true, nil
		}
	}
	return store.Doc{}, false, nil
}

// GetDocsByTokens returns documents that contain any of the provided
// tokens, newest first.
func (s *Store) GetDocsByTokens(ctx context.Context, tokens []string, limit int) ([]store.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	matched := roaring.New()
	for _, tok := range tokens {
		if bm := s.postings[tok]; bm != nil {
			matched.Or(bm)
		}
	}

	type scored struct {
		doc store.Doc
		ts  time.Time
	}
	results := make([]scored, 0, matched.GetCardinality())
	it := matched.Iterator()
	for it.HasNext() {
		doc := s.docs[int64(it.Next())]
		results = append(results, scored{doc: copyDoc(doc), ts: doc.PublishedAt})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ts.After(results[j].ts)
	})
	if len(results) > limit {
		results = results[:limit]
	}

	out := make([]store.Doc, len(results))
	for i, res := range results {
		out[i] = res.doc
	}
	return out, nil
}

// DocSet implements store.Store.
func (s *Store) DocSet(ctx context.Context, f store.Filter) (*roaring.Bitmap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f.Range == nil {
		if bm := s.postings[f.Token]; bm != nil {
			return bm.Clone(), nil
		}
		return roaring.New(), nil
	}

	q := *f.Range
	q.Docs = nil
	out := roaring.New()
	for id, doc := range s.docs {
		if matchesField(doc, q) {
			out.Add(uint32(id))
		}
	}
	return out, nil
}

// RangeCount implements store.Store.
func (s *Store) RangeCount(ctx context.Context, q store.RangeQuery) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for id, doc := range s.docs {
		if q.Docs != nil && !q.Docs.Contains(uint32(id)) {
			continue
		}
		if matchesField(doc, q) {
			n++
		}
	}
	return n, nil
}

func matchesField(doc store.Doc, q store.RangeQuery) bool {
	f, ok := doc.Fields[q.Field]
	return ok && q.Matches(f)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func copyDoc(d store.Doc) store.Doc {
	tokens := make([]string, len(d.Tokens))
	copy(tokens, d.Tokens)

	var fields map[string]store.Field
	if d.Fields != nil {
		fields = make(map[string]store.Field, len(d.Fields))
		for k, v := range d.Fields {
			fields[k] = v
		}
	}

	return store.Doc{
		ID:          d.ID,
		URL:         d.URL,
		Title:       d.Title,
		PublishedAt: d.PublishedAt,
		Tokens:      tokens,
		Fields:      fields,
	}
}
