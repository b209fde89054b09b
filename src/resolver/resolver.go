// Package resolver computes the feature- and platform-aware transitive
// dependency closure of a crate, equivalent to Cargo's own feature
// expansion rules.
package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cratergraph/cratergraph/src/graph"
	"github.com/cratergraph/cratergraph/src/schema"
	"github.com/cratergraph/cratergraph/src/targets"
)

// DefaultTarget and DefaultCfgName are the platform context assumed when
// a caller omits them.
const (
	DefaultTarget  = "x86_64-unknown-linux-gnu"
	DefaultCfgName = "unix"
)

// ErrNotFound is returned when the root crate does not exist.
var ErrNotFound = errors.New("crate not found")

// BadOptionsError is returned when the caller's target triple or cfg
// name is not present in the target table.
type BadOptionsError struct {
	Nonexistent []string
}

func (e *BadOptionsError) Error() string {
	return fmt.Sprintf("unknown target/cfg options: %s", strings.Join(e.Nonexistent, ", "))
}

// ResolvedCrate is one crate vertex in a resolution result, carrying its
// attributes plus the computed BFS distance and accumulated feature set.
type ResolvedCrate struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Downloads       int64     `json:"downloads"`
	CreatedAt       time.Time `json:"created_at"`
	Version         string    `json:"version"`
	Categories      []string  `json:"categories"`
	Keywords        []string  `json:"keywords"`
	Distance        int       `json:"distance"`
	EnabledFeatures []string  `json:"enabled_features"`
}

// Result is the output of a successful resolution: the reachable crates
// in BFS order plus the edges that connected them.
type Result struct {
	Crates       []ResolvedCrate     `json:"crates"`
	Dependencies []schema.Dependency `json:"dependencies"`
}

// queueItem is one pending expansion: the caller (from) requests
// features on a destination crate (to), at the caller's distance plus
// one. The distance is recorded only if this is the destination's first
// visit.
type queueItem struct {
	from     string
	to       string
	features []string
	distance int
}

// Resolve performs the feature-aware BFS. target and cfgName, if empty,
// default to DefaultTarget/DefaultCfgName. Returns ErrNotFound if root
// does not exist, or a *BadOptionsError if target/cfgName are not in the
// graph's target table.
func Resolve(g *graph.Graph, root string, requestedFeatures []string, target, cfgName string) (*Result, error) {
	if _, ok := g.Crate(root); !ok {
		return nil, ErrNotFound
	}

	if target == "" {
		target = DefaultTarget
	}
	if cfgName == "" {
		cfgName = DefaultCfgName
	}

	attrs, ok := g.Targets().Lookup(target)
	var nonexistent []string
	if !ok {
		nonexistent = append(nonexistent, target)
	}
	if !g.Targets().HasCfgName(cfgName) {
		nonexistent = append(nonexistent, cfgName)
	}
	if len(nonexistent) > 0 {
		return nil, &BadOptionsError{Nonexistent: nonexistent}
	}

	r := &resolution{
		g:                g,
		attrs:            attrs,
		triple:           target,
		cfgName:          cfgName,
		distanceOf:       map[string]int{},
		activeFeaturesOf: map[string]map[string]struct{}{},
		dependenciesSeen: map[[2]string]struct{}{},
	}
	return r.run(root, requestedFeatures)
}

// resolution holds the mutable state of a single BFS run. Built fresh per
// call — never shared across goroutines or reused.
type resolution struct {
	g       *graph.Graph
	attrs   []targets.Cfg
	triple  string
	cfgName string

	order            []string
	distanceOf       map[string]int
	activeFeaturesOf map[string]map[string]struct{}

	dependencies     []schema.Dependency
	dependenciesSeen map[[2]string]struct{}

	queue []queueItem
}

func (r *resolution) run(root string, requestedFeatures []string) (*Result, error) {
	rootActive := map[string]struct{}{"default": {}}
	for _, f := range requestedFeatures {
		rootActive[f] = struct{}{}
	}

	r.order = append(r.order, root)
	r.distanceOf[root] = 0
	r.activeFeaturesOf[root] = rootActive

	rootCrate, _ := r.g.Crate(root)
	if err := r.enqueueFrom(root, rootCrate, rootActive, 0); err != nil {
		return nil, err
	}

	for len(r.queue) > 0 {
		item := r.queue[0]
		r.queue = r.queue[1:]

		key := [2]string{item.from, item.to}
		if _, seen := r.dependenciesSeen[key]; !seen {
			r.dependenciesSeen[key] = struct{}{}
			fromCrate, _ := r.g.Crate(item.from)
			if dep, ok := fromCrate.DependencyByName(item.to); ok {
				r.dependencies = append(r.dependencies, dep)
			}
		}

		toCrate, ok := r.g.Crate(item.to)
		if !ok {
			continue
		}

		existing, visited := r.activeFeaturesOf[item.to]
		if !visited {
			active := toSet(item.features)
			r.activeFeaturesOf[item.to] = active
			r.distanceOf[item.to] = item.distance
			r.order = append(r.order, item.to)
			if err := r.enqueueFrom(item.to, toCrate, active, item.distance); err != nil {
				return nil, err
			}
			continue
		}

		newFeatures := setDifference(item.features, existing)
		if len(newFeatures) == 0 {
			continue
		}
		for _, f := range newFeatures {
			existing[f] = struct{}{}
		}
		if err := r.enqueueFrom(item.to, toCrate, existing, r.distanceOf[item.to]); err != nil {
			return nil, err
		}
	}

	return r.buildResult(), nil
}

// enqueueFrom expands crate under the given (mutable) active feature set
// and pushes a queue item for every destination that survives optional
// gating and platform filtering.
func (r *resolution) enqueueFrom(name string, crate *schema.Crate, active map[string]struct{}, distance int) error {
	depFeatures := expandFeatures(crate, active)

	for _, dep := range crate.Dependencies {
		feats, ok := depFeatures[dep.To]
		if !ok {
			continue
		}
		if dep.DefaultFeatures {
			feats = append(feats, "default")
		}
		matched, err := targets.MatchesTarget(dep.Target, r.triple, r.attrs, r.cfgName)
		if err != nil {
			return fmt.Errorf("crate %s dependency %s: %w", name, dep.To, err)
		}
		if !matched {
			continue
		}
		r.queue = append(r.queue, queueItem{
			from:     name,
			to:       dep.To,
			features: feats,
			distance: distance + 1,
		})
	}
	return nil
}

// expandFeatures computes the set of dependency destinations activated
// by crate's features given the supplied active feature set, mutating
// active in place as feature-to-feature activations are discovered.
// The returned map is destination name → requested
// features on that destination; a selected destination is present as a
// key even when its feature list is empty or nil.
func expandFeatures(crate *schema.Crate, active map[string]struct{}) map[string][]string {
	depFeatures := make(map[string][]string)
	for _, dep := range crate.Dependencies {
		if dep.Optional {
			continue
		}
		depFeatures[dep.To] = append([]string(nil), dep.Features...)
	}

	defaultOn := false
	if _, ok := active["default"]; ok {
		defaultOn = true
	}
	defaultBody := crate.Features["default"]

	processed := map[string]struct{}{}
	var worklist []string
	queued := map[string]struct{}{}

	var activate func(f string)
	enqueueWork := func(f string) {
		if f == "default" {
			return
		}
		if _, ok := queued[f]; ok {
			return
		}
		queued[f] = struct{}{}
		worklist = append(worklist, f)
	}
	activate = func(f string) {
		if f == "default" {
			if !defaultOn {
				defaultOn = true
				active["default"] = struct{}{}
				for _, g := range defaultBody {
					activate(g)
				}
			}
			return
		}
		active[f] = struct{}{}
		enqueueWork(f)
	}

	for f := range active {
		enqueueWork(f)
	}
	if defaultOn {
		for _, f := range defaultBody {
			activate(f)
		}
	}

	for len(worklist) > 0 {
		f := worklist[0]
		worklist = worklist[1:]
		if _, ok := processed[f]; ok {
			continue
		}
		processed[f] = struct{}{}

		body, isFeature := crate.Features[f]
		if !isFeature {
			continue
		}
		for _, t := range body {
			if _, ok := crate.Features[t]; ok {
				activate(t)
				continue
			}
			if idx := strings.IndexByte(t, '/'); idx >= 0 {
				depName, depFeature := t[:idx], t[idx+1:]
				if _, isDep := crate.DependencyByName(depName); isDep {
					depFeatures[depName] = append(depFeatures[depName], depFeature)
				}
				continue
			}
			if _, isDep := crate.DependencyByName(t); isDep {
				if _, ok := depFeatures[t]; !ok {
					depFeatures[t] = []string{}
				}
			}
		}
	}

	return depFeatures
}

func (r *resolution) buildResult() *Result {
	crates := make([]ResolvedCrate, 0, len(r.order))
	for _, name := range r.order {
		c, _ := r.g.Crate(name)
		active := r.activeFeaturesOf[name]
		enabled := make([]string, 0, len(active))
		for f := range active {
			if f == "default" {
				continue
			}
			enabled = append(enabled, f)
		}
		sort.Strings(enabled)

		crates = append(crates, ResolvedCrate{
			Name:            c.Name,
			Description:     c.Description,
			Downloads:       c.Downloads,
			CreatedAt:       c.CreatedAt,
			Version:         c.Version,
			Categories:      c.Categories,
			Keywords:        c.Keywords,
			Distance:        r.distanceOf[name],
			EnabledFeatures: enabled,
		})
	}
	return &Result{Crates: crates, Dependencies: r.dependencies}
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// setDifference returns the members of items not present in existing.
func setDifference(items []string, existing map[string]struct{}) []string {
	var out []string
	for _, it := range items {
		if _, ok := existing[it]; !ok {
			out = append(out, it)
		}
	}
	return out
}
