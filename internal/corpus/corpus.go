// Package corpus reads documents to index from JSONL files.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cognicore/sanasto/pkg/sanasto"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

// Item is one document line.
type Item struct {
	URL         string           `json:"url"`
	Title       string           `json:"title"`
	PublishedAt time.Time        `json:"published_at"`
	Body        string           `json:"text"`
	HTML        string           `json:"html"`
	Fields      map[string]Value `json:"fields"`
}

// Value is a field value: a number, a date string, or a two element
// [low, high] interval of either.
type Value struct {
	store.Field
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []json.RawMessage
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("interval needs 2 values, got %d", len(pair))
		}
		low, err := parseScalar(pair[0])
		if err != nil {
			return err
		}
		high, err := parseScalar(pair[1])
		if err != nil {
			return err
		}
		v.Field = store.Interval(low, high)
		return nil
	}

	n, err := parseScalar(data)
	if err != nil {
		return err
	}
	v.Field = store.Point(n)
	return nil
}

func parseScalar(data json.RawMessage) (store.Number, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return store.Number{}, err
	}

	switch val := raw.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return store.Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return store.Number{}, err
		}
		return store.Float(f), nil
	case string:
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return store.Number{}, fmt.Errorf("date %q: %w", val, err)
		}
		return store.Time(t), nil
	}
	return store.Number{}, fmt.Errorf("unsupported field value %s", data)
}

// Text returns the plain text body, extracting it from HTML when the
// item has no text.
func (it Item) Text() string {
	if it.Body != "" || it.HTML == "" {
		return it.Body
	}
	return stripHTML(it.HTML)
}

// IngestDoc converts the item for indexing.
func (it Item) IngestDoc() sanasto.IngestDoc {
	doc := sanasto.IngestDoc{
		URL:         it.URL,
		Title:       it.Title,
		PublishedAt: it.PublishedAt,
		BodyText:    it.Text(),
	}
	if len(it.Fields) > 0 {
		doc.Fields = make(map[string]store.Field, len(it.Fields))
		for name, v := range it.Fields {
			doc.Fields[name] = v.Field
		}
	}
	return doc
}

// LoadFromJSONL loads items from a JSONL file, skipping malformed lines
func LoadFromJSONL(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var items []Item
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found in %s", path)
	}

	return items, nil
}

// stripHTML returns the text content of an HTML fragment. Script and
// style elements are dropped and block elements end with a newline.
func stripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteByte('\n')
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}
