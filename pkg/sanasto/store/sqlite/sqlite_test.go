package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

func num(n store.Number) *store.Number { return &n }

func openSeeded(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	docs := []store.Doc{
		{
			URL:         "https://example.com/a",
			Title:       "Moottorisaha",
			PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Tokens:      []string{"moottorisaha", "moottori", "saha"},
			Fields: map[string]store.Field{
				"year":  store.Point(store.Int(1950)),
				"price": store.Point(store.Float(12.5)),
			},
		},
		{
			URL:         "https://example.com/b",
			Title:       "Taidemaalaus",
			PublishedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Tokens:      []string{"taidemaalaus", "taide", "maalaus"},
			Fields: map[string]store.Field{
				"year":  store.Point(store.Int(1980)),
				"price": store.Point(store.Float(40)),
			},
		},
		{
			URL:         "https://example.com/c",
			Title:       "Saha",
			PublishedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Tokens:      []string{"saha"},
			Fields: map[string]store.Field{
				"year": store.Interval(store.Int(1900), store.Int(1960)),
			},
		},
	}
	for _, d := range docs {
		if err := st.UpsertDoc(ctx, d); err != nil {
			t.Fatalf("UpsertDoc %s: %v", d.URL, err)
		}
	}
	return st
}

func TestSQLiteUpsertAndLoad(t *testing.T) {
	st := openSeeded(t)
	ctx := context.Background()

	doc, ok, err := st.GetDocByURL(ctx, "https://example.com/a")
	if err != nil || !ok {
		t.Fatalf("GetDocByURL: ok=%v err=%v", ok, err)
	}
	if doc.Title != "Moottorisaha" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if !doc.PublishedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published_at %v", doc.PublishedAt)
	}
	if len(doc.Tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %v", doc.Tokens)
	}
	year, ok := doc.Fields["year"]
	if !ok || year.Low.IsFloat || year.Low.I != 1950 || year.High.I != 1950 {
		t.Fatalf("unexpected year field %+v", year)
	}
	price := doc.Fields["price"]
	if !price.Low.IsFloat || price.Low.F != 12.5 {
		t.Fatalf("unexpected price field %+v", price)
	}

	// Upsert replaces tokens and fields in place.
	if err := st.UpsertDoc(ctx, store.Doc{URL: "https://example.com/a", Title: "Saha", Tokens: []string{"saha"}}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	again, err := st.GetDoc(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDoc: %v", err)
	}
	if again.Title != "Saha" || len(again.Tokens) != 1 || len(again.Fields) != 0 {
		t.Fatalf("upsert did not replace doc: %+v", again)
	}
}

func TestSQLiteMissingDoc(t *testing.T) {
	st := openSeeded(t)
	ctx := context.Background()

	if _, ok, err := st.GetDocByURL(ctx, "https://example.com/missing"); err != nil || ok {
		t.Fatalf("expected missing doc, ok=%v err=%v", ok, err)
	}
	if _, err := st.GetDoc(ctx, 999); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.UpsertDoc(ctx, store.Doc{Title: "no url"}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSQLiteGetDocsByTokens(t *testing.T) {
	st := openSeeded(t)
	ctx := context.Background()

	docs, err := st.GetDocsByTokens(ctx, []string{"saha", "saha"}, 10)
	if err != nil {
		t.Fatalf("GetDocsByTokens: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].URL != "https://example.com/c" {
		t.Fatalf("expected newest doc first, got %s", docs[0].URL)
	}

	docs, err = st.GetDocsByTokens(ctx, nil, 10)
	if err != nil || len(docs) != 0 {
		t.Fatalf("expected no docs for empty tokens, got %v err=%v", docs, err)
	}
}

func TestSQLiteDocSet(t *testing.T) {
	st := openSeeded(t)
	ctx := context.Background()

	saha, err := st.DocSet(ctx, store.Filter{Token: "saha"})
	if err != nil {
		t.Fatalf("DocSet: %v", err)
	}
	if saha.GetCardinality() != 2 || !saha.Contains(1) || !saha.Contains(3) {
		t.Fatalf("unexpected saha set %v", saha.ToArray())
	}

	rng := &store.RangeQuery{Field: "year", Low: num(store.Int(1955)), High: num(store.Int(1990)), IncludeLower: true}
	years, err := st.DocSet(ctx, store.Filter{Range: rng})
	if err != nil {
		t.Fatalf("DocSet range: %v", err)
	}
	// doc 3 spans 1900..1960 and overlaps the range.
	if got := years.ToArray(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("unexpected year set %v", got)
	}
}

func TestSQLiteRangeCount(t *testing.T) {
	st := openSeeded(t)
	ctx := context.Background()

	tests := []struct {
		name string
		q    store.RangeQuery
		want int
	}{
		{
			name: "half open",
			q:    store.RangeQuery{Field: "year", Low: num(store.Int(1950)), High: num(store.Int(1980)), IncludeLower: true},
			want: 2,
		},
		{
			name: "closed",
			q:    store.RangeQuery{Field: "year", Low: num(store.Int(1950)), High: num(store.Int(1980)), IncludeLower: true, IncludeUpper: true},
			want: 3,
		},
		{
			name: "open low",
			q:    store.RangeQuery{Field: "year", High: num(store.Int(1950))},
			want: 1,
		},
		{
			name: "open high",
			q:    store.RangeQuery{Field: "year", Low: num(store.Int(1960)), IncludeLower: true},
			want: 2,
		},
		{
			name: "float bounds",
			q:    store.RangeQuery{Field: "price", Low: num(store.Float(10)), High: num(store.Float(20)), IncludeLower: true},
			want: 1,
		},
		{
			name: "int bounds on float field",
			q:    store.RangeQuery{Field: "price", Low: num(store.Int(13)), High: num(store.Int(50)), IncludeLower: true},
			want: 1,
		},
		{
			name: "restricted",
			q:    store.RangeQuery{Field: "year", Low: num(store.Int(1900)), IncludeLower: true, Docs: roaring.BitmapOf(2)},
			want: 1,
		},
		{
			name: "empty restriction",
			q:    store.RangeQuery{Field: "year", Docs: roaring.New()},
			want: 0,
		},
		{
			name: "unknown field",
			q:    store.RangeQuery{Field: "missing"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.RangeCount(ctx, tt.q)
			if err != nil {
				t.Fatalf("RangeCount: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSQLiteMatchesMemoryRangeSemantics(t *testing.T) {
	st := openSeeded(t)
	ctx := context.Background()

	q := store.RangeQuery{Field: "year", Low: num(store.Int(1960)), High: num(store.Int(1970)), IncludeLower: false, IncludeUpper: true}
	got, err := st.RangeCount(ctx, q)
	if err != nil {
		t.Fatalf("RangeCount: %v", err)
	}
	// Interval 1900..1960 touches only the excluded lower bound.
	want := 0
	for _, f := range []store.Field{
		store.Point(store.Int(1950)),
		store.Point(store.Int(1980)),
		store.Interval(store.Int(1900), store.Int(1960)),
	} {
		if q.Matches(f) {
			want++
		}
	}
	if got != want {
		t.Fatalf("expected %d (Matches), got %d", want, got)
	}
}
