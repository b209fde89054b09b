package ingest

import (
	"github.com/cratergraph/cratergraph/src/schema"
	"github.com/cratergraph/cratergraph/src/targets"
)

// observedCfgNames walks every dependency's target string across all
// crates, collecting the bare cfg(NAME) names. More
// complex cfg expressions are left on the dependency verbatim for the
// resolver's platform matcher to interpret.
func observedCfgNames(crates map[string]*schema.Crate) map[string]struct{} {
	names := make(map[string]struct{})
	for _, c := range crates {
		for _, dep := range c.Dependencies {
			if name, ok := targets.ParseCfgName(dep.Target); ok {
				names[name] = struct{}{}
			}
		}
	}
	return names
}
