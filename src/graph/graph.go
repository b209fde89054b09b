// Package graph holds the immutable, read-only aggregate produced by a
// single ingestion pass.
package graph

import (
	"sort"
	"time"

	"github.com/cratergraph/cratergraph/src/schema"
	"github.com/cratergraph/cratergraph/src/targets"
)

// Graph is the in-memory result of ingestion: three vertex maps, their
// sorted name sets, the observed cfg names, the target table, and the
// timestamp of the refresh that produced it. Once built it is never
// mutated — the supervisor republishes a new Graph rather than editing
// this one.
type Graph struct {
	crates     map[string]*schema.Crate
	categories map[string]*schema.Category
	keywords   map[string]*schema.Keyword

	crateNames    []string
	categoryNames []string
	keywordNames  []string

	// observedCfgNames collects every bare cfg(NAME) name seen while
	// parsing dependency targets during ingestion, distinct
	// from the target table's own bare-name universe.
	observedCfgNames map[string]struct{}

	targets *targets.Table

	lastRefresh time.Time
}

// New assembles a Graph from fully-populated vertex maps. Callers
// (src/ingest) are responsible for referential integrity and sorted
// member lists before calling this — New only derives the name sets.
func New(
	crates map[string]*schema.Crate,
	categories map[string]*schema.Category,
	keywords map[string]*schema.Keyword,
	observedCfgNames map[string]struct{},
	table *targets.Table,
	refreshedAt time.Time,
) *Graph {
	g := &Graph{
		crates:           crates,
		categories:       categories,
		keywords:         keywords,
		observedCfgNames: observedCfgNames,
		targets:          table,
		lastRefresh:      refreshedAt,
	}
	g.crateNames = sortedKeys(crates)
	g.categoryNames = sortedKeysCat(categories)
	g.keywordNames = sortedKeysKw(keywords)
	return g
}

func sortedKeys(m map[string]*schema.Crate) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sortedKeysCat(m map[string]*schema.Category) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sortedKeysKw(m map[string]*schema.Keyword) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Crate looks up a crate by name.
func (g *Graph) Crate(name string) (*schema.Crate, bool) {
	c, ok := g.crates[name]
	return c, ok
}

// Category looks up a category by name.
func (g *Graph) Category(name string) (*schema.Category, bool) {
	c, ok := g.categories[name]
	return c, ok
}

// Keyword looks up a keyword by name.
func (g *Graph) Keyword(name string) (*schema.Keyword, bool) {
	k, ok := g.keywords[name]
	return k, ok
}

// CrateNames returns the sorted list of every crate name.
func (g *Graph) CrateNames() []string { return g.crateNames }

// CategoryNames returns the sorted list of every category name.
func (g *Graph) CategoryNames() []string { return g.categoryNames }

// KeywordNames returns the sorted list of every keyword name.
func (g *Graph) KeywordNames() []string { return g.keywordNames }

// CrateCount returns the number of crate vertices.
func (g *Graph) CrateCount() int { return len(g.crates) }

// ObservedCfgNames returns the set of bare cfg names seen in dependency
// targets during ingestion.
func (g *Graph) ObservedCfgNames() map[string]struct{} { return g.observedCfgNames }

// Targets returns the static compiler target table.
func (g *Graph) Targets() *targets.Table { return g.targets }

// LastRefresh returns the timestamp this Graph was built.
func (g *Graph) LastRefresh() time.Time { return g.lastRefresh }
