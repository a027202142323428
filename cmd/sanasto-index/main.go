package main

import (
	"context"
	"flag"
	"log"

	"github.com/cognicore/sanasto/internal/corpus"
	"github.com/cognicore/sanasto/internal/engine"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (optional)")
		dbPath     = flag.String("db", "", "Database path (required)")
		dataPath   = flag.String("data", "", "Input JSONL file (required)")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *dataPath == "" {
		log.Fatal("--data required")
	}

	ctx := context.Background()

	e, err := engine.Open(ctx, *configPath, *dbPath)
	if err != nil {
		log.Fatal("Failed to open engine:", err)
	}
	defer e.Close()

	log.Println("Sanasto indexer started")

	items, err := corpus.LoadFromJSONL(*dataPath)
	if err != nil {
		log.Fatal("Failed to load documents:", err)
	}

	log.Printf("Loaded %d documents from %s", len(items), *dataPath)

	failed := 0
	for i, item := range items {
		if _, err := e.Ingest(ctx, item.IngestDoc()); err != nil {
			log.Printf("Failed to ingest document %d (%s): %v", i, item.Title, err)
			failed++
			continue
		}

		if (i+1)%10 == 0 {
			log.Printf("Ingested %d/%d documents", i+1, len(items))
		}
	}

	e.LogStats()
	log.Printf("Indexing complete: %d documents processed, %d failed", len(items), failed)
}
