package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cognicore/sanasto/internal/engine"
	"github.com/cognicore/sanasto/pkg/sanasto/analysis"
	"github.com/cognicore/sanasto/pkg/sanasto/config"
	"github.com/cognicore/sanasto/pkg/sanasto/decompound"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (optional)")
		dbPath     = flag.String("db", "", "Database to list matching documents from (optional)")
		limit      = flag.Int("limit", 5, "Documents listed per line with --db")
		verbose    = flag.Bool("v", false, "Print the decomposition of every word")
	)
	flag.Parse()

	if *dbPath != "" {
		ctx := context.Background()
		e, err := engine.Open(ctx, *configPath, *dbPath)
		if err != nil {
			log.Fatal("Failed to open engine:", err)
		}
		defer e.Close()

		lookup := func(text string) ([]store.Doc, error) {
			return e.Documents(ctx, text, *limit)
		}
		if err := run(os.Stdin, os.Stdout, e.Components.Pipeline, e.Components.Factory, *verbose, lookup); err != nil {
			log.Fatal(err)
		}
		return
	}

	loader := config.Loader{Path: *configPath}
	comp, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	defer comp.Close()

	if err := run(os.Stdin, os.Stdout, comp.Pipeline, comp.Factory, *verbose, nil); err != nil {
		log.Fatal(err)
	}
}

// run analyzes every input line and prints the resulting tokens. When
// lookup is set the documents sharing a term with the line follow as
// "= url title" lines.
func run(in io.Reader, out io.Writer, pipeline *analysis.Pipeline, factory *decompound.Factory, verbose bool,
	lookup func(string) ([]store.Doc, error)) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if verbose && factory != nil {
			words, err := analysis.Collect(analysis.NewTokenizer(line))
			if err != nil {
				return err
			}
			for _, w := range words {
				parts, err := factory.Decompose(w.Term)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "# %s:", w.Term)
				for _, p := range parts {
					fmt.Fprintf(out, " %s@%d/%d", p.Text, p.Position, p.PositionLength)
				}
				fmt.Fprintln(out)
			}
		}

		tokens, err := pipeline.Analyze(line)
		if err != nil {
			return err
		}
		for _, tok := range tokens {
			fmt.Fprintf(out, "%s [%d:%d:%d:%d]\n", tok.Term, tok.PositionIncrement, tok.Start, tok.End, tok.PositionLength)
		}

		if lookup != nil {
			docs, err := lookup(line)
			if err != nil {
				return err
			}
			for _, d := range docs {
				fmt.Fprintf(out, "= %s %s\n", d.URL, d.Title)
			}
		}
	}
	return scanner.Err()
}
