package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/cratergraph/cratergraph/src/graph"
	"github.com/cratergraph/cratergraph/src/ingest"
)

// loadGraph runs a one-shot ingestion of the configured data directory,
// shared by the offline subcommands (search, graph, badge) that operate
// without a running server.
func loadGraph(ctx context.Context) (*graph.Graph, error) {
	progress := func(format string, a ...any) {
		if verbose {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		}
	}
	g, err := ingest.Build(ctx, cfg.Data.Dir, cfg.Data.TargetsFile, progress)
	if err != nil {
		return nil, fmt.Errorf("building graph from %s: %w", cfg.Data.Dir, err)
	}
	return g, nil
}
