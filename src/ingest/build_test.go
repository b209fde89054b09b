package ingest

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// fixture is a minimal but feature-complete crates.io dump: canonical
// version conflicts, optional and platform-gated dependencies, build
// dependencies to drop, and join rows for both relationship kinds.
type fixture struct {
	dir     string
	targets string
}

func writeCSV(t *testing.T, dir, name string, rows [][]string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name+".csv"))
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	writeCSV(t, dir, "categories", [][]string{
		{"id", "category", "description"},
		{"1", "web-programming", "Web servers and clients"},
		{"2", "asynchronous", "Async runtimes"},
	})
	writeCSV(t, dir, "keywords", [][]string{
		{"id", "keyword", "crates_cnt"},
		{"1", "http", "2"},
		{"2", "server", "1"},
	})
	writeCSV(t, dir, "crates", [][]string{
		{"id", "name", "description", "downloads"},
		{"1", "warp", "composable web server framework", "5000"},
		{"2", "hyper", "fast HTTP implementation", "9000"},
		{"3", "tokio", "async runtime", "12000"},
		{"4", "native-tls", "TLS bindings", "3000"},
		{"5", "winapi", "windows API bindings", "8000"},
		{"6", "chrono", "date and time", "11000"},
		{"7", "wasm-bindgen", "wasm interop", "7000"},
		{"8", "oldstyle", "predates semver", "10"},
	})
	writeCSV(t, dir, "versions", [][]string{
		{"crate_id", "created_at", "features", "id", "num"},
		{"1", "2020-01-01 00:00:00", `{}`, "10", "0.3.0"},
		{"1", "2020-06-01 00:00:00", `{"default":["ws"],"ws":[],"tls":["native-tls"],"compression":["hyper/stream"]}`, "11", "0.3.1"},
		{"1", "2021-01-01 00:00:00", `{}`, "12", "0.4.0-rc.1"},
		{"2", "2020-03-01 00:00:00", `{"default":["http1"],"http1":[],"stream":[]}`, "20", "0.14.5"},
		{"3", "2020-02-01 00:00:00.123456", `{"default":[],"full":[]}`, "30", "1.2.3"},
		{"4", "2020-01-15 00:00:00", `{}`, "40", "0.2.7"},
		{"5", "2020-01-20 00:00:00", `{}`, "50", "0.3.9"},
		{"6", "2020-04-01 00:00:00", `{"default":["clock"],"clock":[],"wasmbind":["wasm-bindgen"]}`, "60", "0.4.19"},
		{"7", "2020-05-01 00:00:00", `{}`, "70", "0.2.70"},
		{"8", "2019-01-01 00:00:00", `{}`, "80", "not.a.version"},
		{"8", "2019-06-01 00:00:00", `{}`, "81", "also-bad"},
	})
	writeCSV(t, dir, "dependencies", [][]string{
		{"id", "version_id", "crate_id", "default_features", "optional", "features", "kind", "target"},
		{"100", "11", "2", "t", "f", "{}", "0", ""},
		{"101", "11", "3", "t", "f", "{full}", "0", ""},
		{"102", "11", "4", "t", "t", "{}", "0", ""},
		{"103", "11", "5", "t", "f", "{}", "0", "cfg(windows)"},
		{"104", "11", "6", "t", "f", "{}", "2", ""},
		{"105", "10", "5", "t", "f", "{}", "0", ""},
		{"110", "60", "7", "t", "t", "{}", "0", `cfg(target_arch = "wasm32")`},
	})
	writeCSV(t, dir, "crates_categories", [][]string{
		{"crate_id", "category_id"},
		{"1", "1"},
		{"2", "1"},
		{"3", "2"},
	})
	writeCSV(t, dir, "crates_keywords", [][]string{
		{"crate_id", "keyword_id"},
		{"1", "2"},
		{"1", "1"},
		{"2", "1"},
	})

	targetsPath := filepath.Join(dir, "targets.txt")
	table := `triple;cfgs
x86_64-unknown-linux-gnu;[["target_arch","x86_64"],["target_os","linux"],["unix"]]
x86_64-pc-windows-msvc;[["target_arch","x86_64"],["target_os","windows"],["windows"]]
wasm32-unknown-unknown;[["target_arch","wasm32"]]
`
	if err := os.WriteFile(targetsPath, []byte(table), 0o644); err != nil {
		t.Fatalf("write targets table: %v", err)
	}

	return &fixture{dir: dir, targets: targetsPath}
}

func TestBuild(t *testing.T) {
	fx := newFixture(t)

	g, err := Build(context.Background(), fx.dir, fx.targets, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.CrateCount() != 8 {
		t.Fatalf("crate count = %d, want 8", g.CrateCount())
	}
	if got := len(g.CategoryNames()); got != 2 {
		t.Fatalf("category count = %d, want 2", got)
	}
	if got := len(g.KeywordNames()); got != 2 {
		t.Fatalf("keyword count = %d, want 2", got)
	}

	warp, ok := g.Crate("warp")
	if !ok {
		t.Fatal("warp not found")
	}
	if warp.Version != "0.3.1" {
		t.Fatalf("warp version = %q, want 0.3.1 (stable beats pre-release, higher patch wins)", warp.Version)
	}
	if warp.Downloads != 5000 {
		t.Fatalf("warp downloads = %d, want the crate-row value 5000", warp.Downloads)
	}
	if _, ok := warp.Features["tls"]; !ok {
		t.Fatalf("warp features = %v, missing tls", warp.Features)
	}

	old, _ := g.Crate("oldstyle")
	if old.Version != "also-bad" {
		t.Fatalf("oldstyle version = %q, want latest-by-created_at among non-semver", old.Version)
	}
}

func TestBuildDependencies(t *testing.T) {
	fx := newFixture(t)
	g, err := Build(context.Background(), fx.dir, fx.targets, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	warp, _ := g.Crate("warp")
	var tos []string
	for _, d := range warp.Dependencies {
		tos = append(tos, d.To)
		if d.From != "warp" {
			t.Fatalf("dependency From = %q, want warp", d.From)
		}
		if _, ok := g.Crate(d.To); !ok {
			t.Fatalf("dependency To %q does not resolve", d.To)
		}
	}
	// build-kind chrono row and the stale-version winapi row are gone;
	// what's left is sorted by destination.
	want := []string{"hyper", "native-tls", "tokio", "winapi"}
	if !reflect.DeepEqual(tos, want) {
		t.Fatalf("warp dependencies = %v, want %v", tos, want)
	}

	tls, _ := warp.DependencyByName("native-tls")
	if !tls.Optional {
		t.Fatal("native-tls edge should be optional")
	}
	tok, _ := warp.DependencyByName("tokio")
	if !reflect.DeepEqual(tok.Features, []string{"full"}) {
		t.Fatalf("tokio edge features = %v, want [full]", tok.Features)
	}
	win, _ := warp.DependencyByName("winapi")
	if win.Target != "cfg(windows)" {
		t.Fatalf("winapi edge target = %q", win.Target)
	}
}

func TestBuildJoins(t *testing.T) {
	fx := newFixture(t)
	g, err := Build(context.Background(), fx.dir, fx.targets, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	warp, _ := g.Crate("warp")
	if !reflect.DeepEqual(warp.Categories, []string{"web-programming"}) {
		t.Fatalf("warp categories = %v", warp.Categories)
	}
	if !reflect.DeepEqual(warp.Keywords, []string{"http", "server"}) {
		t.Fatalf("warp keywords = %v, want sorted [http server]", warp.Keywords)
	}

	web, ok := g.Category("web-programming")
	if !ok {
		t.Fatal("web-programming not found")
	}
	if len(web.Crates) != 2 {
		t.Fatalf("web-programming crates = %v", web.Crates)
	}
	if web.Popularity() != 2 {
		t.Fatalf("category popularity = %d, want member count", web.Popularity())
	}

	http, _ := g.Keyword("http")
	if http.Popularity() != 2 {
		t.Fatalf("keyword popularity = %d, want crates_cnt 2", http.Popularity())
	}
}

func TestBuildObservedCfgNames(t *testing.T) {
	fx := newFixture(t)
	g, err := Build(context.Background(), fx.dir, fx.targets, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	names := g.ObservedCfgNames()
	if _, ok := names["windows"]; !ok {
		t.Fatalf("observed cfg names = %v, missing windows", names)
	}
	// key/value expressions stay verbatim on the edge, never in the set
	if _, ok := names["target_arch"]; ok {
		t.Fatalf("observed cfg names = %v, target_arch should not appear", names)
	}
	if len(names) != 1 {
		t.Fatalf("observed cfg names = %v, want exactly {windows}", names)
	}
}

func TestBuildDeduplicatesRepeatedRows(t *testing.T) {
	fx := newFixture(t)
	writeCSV(t, fx.dir, "crates_keywords", [][]string{
		{"crate_id", "keyword_id"},
		{"1", "1"},
		{"1", "1"},
	})
	writeCSV(t, fx.dir, "dependencies", [][]string{
		{"id", "version_id", "crate_id", "default_features", "optional", "features", "kind", "target"},
		{"100", "11", "2", "t", "f", "{}", "0", ""},
		{"106", "11", "2", "t", "f", "{}", "0", ""},
	})

	g, err := Build(context.Background(), fx.dir, fx.targets, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	warp, _ := g.Crate("warp")
	if !reflect.DeepEqual(warp.Keywords, []string{"http"}) {
		t.Fatalf("warp keywords = %v, want deduplicated [http]", warp.Keywords)
	}
	if len(warp.Dependencies) != 1 || warp.Dependencies[0].To != "hyper" {
		t.Fatalf("warp dependencies = %v, want a single hyper edge", warp.Dependencies)
	}
}

func TestBuildErrorNamesRowAndTable(t *testing.T) {
	fx := newFixture(t)
	writeCSV(t, fx.dir, "crates", [][]string{
		{"id", "name", "description", "downloads"},
		{"1", "warp", "ok", "5000"},
		{"2", "hyper", "bad downloads", "many"},
	})

	_, err := Build(context.Background(), fx.dir, fx.targets, nil)
	if err == nil {
		t.Fatal("Build succeeded on a bad row")
	}
	if !strings.Contains(err.Error(), "crates row 2") {
		t.Fatalf("error %q does not name the table and row", err)
	}
}

func TestBuildDanglingJoinID(t *testing.T) {
	fx := newFixture(t)
	writeCSV(t, fx.dir, "crates_categories", [][]string{
		{"crate_id", "category_id"},
		{"1", "99"},
	})

	_, err := Build(context.Background(), fx.dir, fx.targets, nil)
	if err == nil {
		t.Fatal("Build succeeded on a dangling category id")
	}
	if !strings.Contains(err.Error(), "dangling category id 99") {
		t.Fatalf("error %q does not cite the dangling id", err)
	}
}

func TestBuildBadFeaturesJSON(t *testing.T) {
	fx := newFixture(t)
	writeCSV(t, fx.dir, "versions", [][]string{
		{"crate_id", "created_at", "features", "id", "num"},
		{"1", "2020-01-01 00:00:00", `not json`, "10", "0.3.0"},
	})

	_, err := Build(context.Background(), fx.dir, fx.targets, nil)
	if err == nil {
		t.Fatal("Build succeeded on malformed features JSON")
	}
	if !strings.Contains(err.Error(), "features JSON") {
		t.Fatalf("error %q does not cite the features decode", err)
	}
}

func TestBuildMissingTable(t *testing.T) {
	fx := newFixture(t)
	if err := os.Remove(filepath.Join(fx.dir, "dependencies.csv")); err != nil {
		t.Fatal(err)
	}
	if _, err := Build(context.Background(), fx.dir, fx.targets, nil); err == nil {
		t.Fatal("Build succeeded without dependencies.csv")
	}
}
