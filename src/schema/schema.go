// Package schema defines the vertex and edge types of the registry graph.
package schema

import "time"

// Category is a grouping of crates, e.g. "command-line-interface".
type Category struct {
	Name        string   `json:"category"`
	Description string   `json:"description"`
	Crates      []string `json:"crates"`

	// SQLID is the source dump's integer id; never exposed outside ingestion.
	SQLID int `json:"-"`
}

// Popularity returns the number of member crates.
func (c *Category) Popularity() int { return len(c.Crates) }

// ID returns the vertex's natural key.
func (c *Category) ID() string { return c.Name }

// Keyword is a free-text tag attached to crates.
type Keyword struct {
	Name      string   `json:"keyword"`
	CratesCnt int      `json:"crates_cnt"`
	Crates    []string `json:"crates"`

	SQLID int `json:"-"`
}

// Popularity returns the member-crate count recorded at dump time. This is
// independent of len(Crates), which is populated later by the join pass.
func (k *Keyword) Popularity() int { return k.CratesCnt }

// ID returns the vertex's natural key.
func (k *Keyword) ID() string { return k.Name }

// Dependency is a directed edge from one crate to another, surviving only
// for kind == 0 ("normal") rows (see ingest.Build).
type Dependency struct {
	From string `json:"from"`
	To   string `json:"to"`

	DefaultFeatures bool     `json:"-"`
	Features        []string `json:"-"`
	Optional        bool     `json:"-"`

	// Target is the raw cfg-expression or triple string from the dump.
	// Empty means the dependency applies unconditionally.
	Target string `json:"target,omitempty"`
}

// Crate is a published package and the central vertex of the graph.
type Crate struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Downloads   int64    `json:"downloads"`
	CreatedAt   time.Time `json:"created_at"`
	Version     string   `json:"version"`

	// Features maps a feature name to the list of tokens it activates.
	Features map[string][]string `json:"features"`

	Categories   []string     `json:"categories"`
	Keywords     []string     `json:"keywords"`
	Dependencies []Dependency `json:"dependencies"`

	SQLID int `json:"-"`
}

// Popularity returns the crate's download count, read from the crate row
// and never summed across versions.
func (c *Crate) Popularity() int { return int(c.Downloads) }

// ID returns the vertex's natural key.
func (c *Crate) ID() string { return c.Name }

// DependencyByName returns the edge to the named dependency, if the crate
// declares one.
func (c *Crate) DependencyByName(name string) (Dependency, bool) {
	for _, d := range c.Dependencies {
		if d.To == name {
			return d, true
		}
	}
	return Dependency{}, false
}
