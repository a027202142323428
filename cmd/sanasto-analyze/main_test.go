package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/sanasto/internal/engine"
	"github.com/cognicore/sanasto/pkg/sanasto"
	"github.com/cognicore/sanasto/pkg/sanasto/analysis"
	"github.com/cognicore/sanasto/pkg/sanasto/decompound"
	"github.com/cognicore/sanasto/pkg/sanasto/morph"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

func TestRun(t *testing.T) {
	analyzer := morph.NewStaticAnalyzer(map[string][]morph.Analysis{
		"moottorisaha": {morph.NewAnalysis(morph.AttrBaseform, "moottorisaha", morph.AttrWordBases, "+moottori(moottori)+saha(saha)")},
	})
	cfg := decompound.DefaultConfig()
	cfg.ExpandCompounds = true
	factory, err := decompound.NewFactory(cfg, analyzer)
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	pipeline := analysis.NewPipeline(factory, analysis.Lowercase)
	defer pipeline.Close()

	var out bytes.Buffer
	in := strings.NewReader("Moottorisaha\n\nja\n")
	if err := run(in, &out, pipeline, factory, true, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := "# Moottorisaha: moottorisaha@1/2 moottori@1/1 saha@2/1\n" +
		"moottorisaha [1:0:12:2]\n" +
		"moottori [0:0:12:1]\n" +
		"saha [1:0:12:1]\n" +
		"# ja:\n" +
		"ja [1:0:2:1]\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRunListsDocuments(t *testing.T) {
	ctx := context.Background()
	e, err := engine.Open(ctx, "", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer e.Close()

	docs := []sanasto.IngestDoc{
		{URL: "https://example.com/talo", Title: "Talo", BodyText: "talo myydään"},
		{URL: "https://example.com/auto", Title: "Auto", BodyText: "auto myydään"},
	}
	for _, d := range docs {
		if _, err := e.Ingest(ctx, d); err != nil {
			t.Fatalf("Ingest %s: %v", d.URL, err)
		}
	}

	var looked []string
	lookup := func(text string) ([]store.Doc, error) {
		looked = append(looked, text)
		return e.Documents(ctx, text, 5)
	}

	var out bytes.Buffer
	if err := run(strings.NewReader("Talo\n"), &out, e.Components.Pipeline, e.Components.Factory, false, lookup); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := "talo [1:0:4:1]\n" +
		"= https://example.com/talo Talo\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
	if len(looked) != 1 || looked[0] != "Talo" {
		t.Fatalf("unexpected lookups %v", looked)
	}
}
