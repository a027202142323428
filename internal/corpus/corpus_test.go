package corpus

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

func writeJSONL(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromJSONL(t *testing.T) {
	path := writeJSONL(t, `{"url":"https://example.com/a","title":"Saha","published_at":"2024-01-15T00:00:00Z","text":"Moottorisaha myynnissä","fields":{"year":1950,"price":12.5}}
not json

{"url":"https://example.com/b","html":"<p>Taide<script>x()</script></p><p>maalaus</p>","fields":{"period":[1960,1995],"built":"2001-05-01T00:00:00Z"}}
`)

	items, err := LoadFromJSONL(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	a := items[0]
	require.Equal(t, "Moottorisaha myynnissä", a.Text())
	require.True(t, a.PublishedAt.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, store.Point(store.Int(1950)), a.Fields["year"].Field)
	require.Equal(t, store.Point(store.Float(12.5)), a.Fields["price"].Field)

	b := items[1]
	require.Equal(t, "Taide\nmaalaus", b.Text())
	require.Equal(t, store.Interval(store.Int(1960), store.Int(1995)), b.Fields["period"].Field)
	require.Equal(t, store.Point(store.Time(time.Date(2001, 5, 1, 0, 0, 0, 0, time.UTC))), b.Fields["built"].Field)

	doc := b.IngestDoc()
	require.Equal(t, "https://example.com/b", doc.URL)
	require.Equal(t, "Taide\nmaalaus", doc.BodyText)
	require.Len(t, doc.Fields, 2)
}

func TestLoadFromJSONLBadField(t *testing.T) {
	// Bad field values make the whole line malformed.
	path := writeJSONL(t, `{"url":"a","fields":{"year":[1,2,3]}}
{"url":"b","fields":{"year":true}}
{"url":"c","fields":{"year":"yesterday"}}
{"url":"d"}
`)

	items, err := LoadFromJSONL(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "d", items[0].URL)
	require.Nil(t, items[0].IngestDoc().Fields)
}

func TestLoadFromJSONLErrors(t *testing.T) {
	_, err := LoadFromJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)

	_, err = LoadFromJSONL(writeJSONL(t, "\n\nnot json\n"))
	require.Error(t, err)
}

func TestStripHTMLFallsBackOnPlainText(t *testing.T) {
	require.Equal(t, "plain text", stripHTML("plain text"))
	require.Equal(t, "", Item{}.Text())
}
