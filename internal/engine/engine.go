// Package engine wires configuration and storage for the binaries.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/cognicore/sanasto/pkg/sanasto"
	"github.com/cognicore/sanasto/pkg/sanasto/config"
	"github.com/cognicore/sanasto/pkg/sanasto/stats"
	"github.com/cognicore/sanasto/pkg/sanasto/store/sqlite"
)

// Engine is a Sanasto instance over a SQLite database.
type Engine struct {
	*sanasto.Sanasto
	Components *config.Components
}

// Open loads the configuration at configPath (defaults when empty) and
// opens the database at dbPath.
func Open(ctx context.Context, configPath, dbPath string) (*Engine, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path required")
	}

	loader := config.Loader{Path: configPath, Logger: log.Default()}
	comp, err := loader.Load()
	if err != nil {
		return nil, err
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		comp.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := sanasto.New(sanasto.Options{
		Store:    st,
		Pipeline: comp.Pipeline,
		Schema:   comp.Schema,
	})
	return &Engine{Sanasto: s, Components: comp}, nil
}

// LogStats prints the analyzer statistics when they are being recorded.
func (e *Engine) LogStats() {
	if e.Components.Factory == nil {
		return
	}
	if r, ok := e.Components.Factory.Observer().(*stats.Recorder); ok {
		r.Log()
	}
}
