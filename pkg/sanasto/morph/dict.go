package morph

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// ErrClosed is returned by analyzers used after Close.
var ErrClosed = errors.New("morph: analyzer closed")

// DictAnalyzer serves analyses from a dictionary file mapped into memory.
//
// File format, UTF-8, one analysis per line:
//
//	surface<TAB>NAME=value<TAB>NAME=value...
//
// Blank lines and lines starting with '#' are skipped. Several lines for
// the same surface form give several analyses, in file order. Lookups
// ignore case. Only the index is kept on the heap; attribute text is read
// from the mapping on demand.
type DictAnalyzer struct {
	mu     sync.RWMutex
	data   mmap.MMap
	index  map[string][]span
	closed bool
}

// span locates the attribute part of one line in the mapping.
type span struct {
	start, end int
}

// OpenDict maps the dictionary at path and indexes its surface forms.
func OpenDict(path string) (*DictAnalyzer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat dictionary: %w", err)
	}

	d := &DictAnalyzer{index: make(map[string][]span)}
	if info.Size() == 0 {
		// mmap refuses empty files; an empty dictionary knows no words.
		return d, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap dictionary: %w", err)
	}
	d.data = data
	d.buildIndex()
	return d, nil
}

func (d *DictAnalyzer) buildIndex() {
	data := d.data
	for pos := 0; pos < len(data); {
		end := bytes.IndexByte(data[pos:], '\n')
		if end < 0 {
			end = len(data)
		} else {
			end += pos
		}
		line := data[pos:end]
		lineStart := pos
		pos = end + 1

		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		tab := bytes.IndexByte(line, '\t')
		if tab <= 0 {
			continue
		}
		surface := strings.ToLower(string(line[:tab]))
		d.index[surface] = append(d.index[surface], span{
			start: lineStart + tab + 1,
			end:   lineStart + len(line),
		})
	}
}

// Analyze implements Analyzer.
func (d *DictAnalyzer) Analyze(word string) ([]Analysis, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}

	spans := d.index[strings.ToLower(word)]
	if len(spans) == 0 {
		return nil, nil
	}
	analyses := make([]Analysis, 0, len(spans))
	for _, sp := range spans {
		analyses = append(analyses, parseAttributes(d.data[sp.start:sp.end]))
	}
	return analyses, nil
}

// Len returns the number of distinct surface forms in the dictionary.
func (d *DictAnalyzer) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.index)
}

// Close unmaps the dictionary. It is safe to call more than once.
func (d *DictAnalyzer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.index = nil
	if d.data == nil {
		return nil
	}
	err := d.data.Unmap()
	d.data = nil
	return err
}

// parseAttributes copies NAME=value fields out of the mapping. Values may
// themselves contain '=' (di=oksidi), so only the first one splits.
func parseAttributes(b []byte) Analysis {
	fields := bytes.Split(b, []byte{'\t'})
	a := make(Analysis, 0, len(fields))
	for _, field := range fields {
		eq := bytes.IndexByte(field, '=')
		if eq <= 0 {
			continue
		}
		a = append(a, Attribute{
			Name:  string(field[:eq]),
			Value: string(field[eq+1:]),
		})
	}
	return a
}
