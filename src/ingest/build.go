// Package ingest reconstructs a normalized in-memory Graph from a
// directory of crates.io dump CSVs.
package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/cratergraph/cratergraph/src/graph"
	"github.com/cratergraph/cratergraph/src/schema"
	"github.com/cratergraph/cratergraph/src/targets"
)

// Progress is an optional progress-line sink for ingestion narration.
// A nil Progress is a silent build.
type Progress func(format string, args ...any)

// Build reads the seven CSV tables from dataDir plus the target table at
// targetsPath and assembles a fully populated, immutable Graph. Any I/O,
// decode, or referential-integrity failure aborts the build and returns
// an error — the caller (src/supervisor) is responsible for retaining
// its previous Graph on failure.
func Build(ctx context.Context, dataDir, targetsPath string, progress Progress) (*graph.Graph, error) {
	if progress == nil {
		progress = func(string, ...any) {}
	}
	start := time.Now()

	table, err := targets.Load(targetsPath)
	if err != nil {
		return nil, fmt.Errorf("loading target table: %w", err)
	}

	// The three base vertex loads touch disjoint CSV files and disjoint
	// maps, so they run concurrently bounded by a weighted semaphore.
	var (
		crates           map[string]*schema.Crate
		crateIDToName    map[int]string
		categories       map[string]*schema.Category
		categoryIDToName map[int]string
		keywords         map[string]*schema.Keyword
		keywordIDToName  map[int]string
	)

	sem := semaphore.NewWeighted(3)
	loads := []struct {
		name string
		run  func() error
	}{
		{"crates", func() (err error) {
			crates, crateIDToName, err = loadCrates(dataDir)
			return err
		}},
		{"categories", func() (err error) {
			categories, categoryIDToName, err = loadCategories(dataDir)
			return err
		}},
		{"keywords", func() (err error) {
			keywords, keywordIDToName, err = loadKeywords(dataDir)
			return err
		}},
	}

	errCh := make(chan error, len(loads))
	for _, l := range loads {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("acquiring load slot for %s: %w", l.name, err)
		}
		go func(l struct {
			name string
			run  func() error
		}) {
			defer sem.Release(1)
			if err := l.run(); err != nil {
				errCh <- fmt.Errorf("loading %s: %w", l.name, err)
				return
			}
			errCh <- nil
		}(l)
	}
	for range loads {
		if err := <-errCh; err != nil {
			return nil, err
		}
	}
	progress("Loaded %d crates, %d categories, %d keywords", len(crates), len(categories), len(keywords))

	versions, conflicts, err := loadVersions(dataDir)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}

	versionToCrate := make(map[int]string, len(versions))
	for crateID, v := range versions {
		name, ok := crateIDToName[crateID]
		if !ok {
			return nil, fmt.Errorf("version row references dangling crate id %d", crateID)
		}
		versionToCrate[v.ID] = name

		c := crates[name]
		features, err := featureMap(v.Features)
		if err != nil {
			return nil, fmt.Errorf("crate %s: %w", name, err)
		}
		c.Version = v.Num
		c.CreatedAt = v.CreatedAt
		c.Features = features
	}
	progress("Selected canonical versions for %d crates (%d conflicts resolved)", len(versions), conflicts)

	depCount, err := loadDependencies(dataDir, crates, versionToCrate, crateIDToName)
	if err != nil {
		return nil, fmt.Errorf("loading dependencies: %w", err)
	}
	progress("Loaded %d dependency rows", depCount)

	if _, err := loadCrateCategories(dataDir, crates, categories, crateIDToName, categoryIDToName); err != nil {
		return nil, fmt.Errorf("joining crate categories: %w", err)
	}
	if _, err := loadCrateKeywords(dataDir, crates, keywords, crateIDToName, keywordIDToName); err != nil {
		return nil, fmt.Errorf("joining crate keywords: %w", err)
	}

	sortCrateContents(crates)

	cfgNames := observedCfgNames(crates)
	progress("Observed %d distinct cfg names across dependency targets", len(cfgNames))

	g := graph.New(crates, categories, keywords, cfgNames, table, time.Now())
	progress("Build completed in %s", time.Since(start))
	return g, nil
}
