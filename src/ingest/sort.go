package ingest

import (
	"sort"

	"github.com/cratergraph/cratergraph/src/schema"
)

// sortCrateContents sorts each crate's categories, keywords, and
// dependencies lexicographically (by destination name for dependencies)
// and drops duplicates, so the lists are sorted and duplicate-free by
// construction even if the dump repeats a join or dependency row.
func sortCrateContents(crates map[string]*schema.Crate) {
	for _, c := range crates {
		c.Categories = sortedUnique(c.Categories)
		c.Keywords = sortedUnique(c.Keywords)
		sort.Slice(c.Dependencies, func(i, j int) bool {
			return c.Dependencies[i].To < c.Dependencies[j].To
		})
		c.Dependencies = uniqueByTo(c.Dependencies)
	}
}

func sortedUnique(names []string) []string {
	sort.Strings(names)
	out := names[:0]
	for i, n := range names {
		if i == 0 || n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}

func uniqueByTo(deps []schema.Dependency) []schema.Dependency {
	out := deps[:0]
	for i, d := range deps {
		if i == 0 || d.To != out[len(out)-1].To {
			out = append(out, d)
		}
	}
	return out
}
