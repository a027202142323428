package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"

	"github.com/cognicore/sanasto/internal/engine"
	"github.com/cognicore/sanasto/pkg/sanasto/facet"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (optional)")
		dbPath     = flag.String("db", "", "Database path (required)")
		params     = flag.String("params", "", "Facet parameters as a query string (required)")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *params == "" {
		log.Fatal("--params required")
	}

	ctx := context.Background()

	e, err := engine.Open(ctx, *configPath, *dbPath)
	if err != nil {
		log.Fatal("Failed to open engine:", err)
	}

	code := run(ctx, e, *params, os.Stdout)
	e.Close()
	os.Exit(code)
}

// run executes the request and returns the exit status: 2 for a bad
// request, 1 for a failure while counting.
func run(ctx context.Context, e *engine.Engine, raw string, out io.Writer) int {
	values, err := url.ParseQuery(raw)
	if err != nil {
		log.Printf("Invalid parameters: %v", err)
		return 2
	}
	for name, vals := range e.Components.Facets {
		if _, ok := values[name]; !ok {
			values[name] = vals
		}
	}

	resp, err := e.FacetParams(ctx, values)
	if err != nil {
		if facet.IsClientError(err) {
			log.Printf("Bad request: %v", err)
			return 2
		}
		log.Printf("Faceting failed: %v", err)
		return 1
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
