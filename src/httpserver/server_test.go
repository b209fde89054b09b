package httpserver

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cratergraph/cratergraph/src/supervisor"
)

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

func writeDump(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	writeCSV(t, dir, "categories", [][]string{
		{"id", "category", "description"},
		{"1", "web-programming", "Web servers and clients"},
	})
	writeCSV(t, dir, "keywords", [][]string{
		{"id", "keyword", "crates_cnt"},
		{"1", "http", "2"},
	})
	writeCSV(t, dir, "crates", [][]string{
		{"id", "name", "description", "downloads"},
		{"1", "warp", "composable web server framework", "5000"},
		{"2", "hyper", "fast HTTP implementation", "9000"},
		{"3", "native-tls", "TLS bindings", "3000"},
		{"4", "warpgrapher", "graphql for warp", "100"},
		{"5", "chrono", "date and time", "11000"},
		{"6", "wasm-bindgen", "wasm interop", "7000"},
	})
	writeCSV(t, dir, "versions", [][]string{
		{"crate_id", "created_at", "features", "id", "num"},
		{"1", "2020-06-01 00:00:00", `{"default":[],"tls":["native-tls"]}`, "11", "0.3.1"},
		{"2", "2020-03-01 00:00:00", `{}`, "20", "0.14.5"},
		{"3", "2020-01-15 00:00:00", `{}`, "30", "0.2.7"},
		{"4", "2020-07-01 00:00:00", `{}`, "40", "0.1.0"},
		{"5", "2020-04-01 00:00:00", `{"default":[],"wasmbind":["wasm-bindgen"]}`, "50", "0.4.19"},
		{"6", "2020-05-01 00:00:00", `{}`, "60", "0.2.70"},
	})
	writeCSV(t, dir, "dependencies", [][]string{
		{"id", "version_id", "crate_id", "default_features", "optional", "features", "kind", "target"},
		{"100", "11", "2", "t", "f", "{}", "0", ""},
		{"101", "11", "3", "t", "t", "{}", "0", ""},
		{"110", "50", "6", "t", "t", "{}", "0", `cfg(target_arch = "wasm32")`},
	})
	writeCSV(t, dir, "crates_categories", [][]string{
		{"crate_id", "category_id"},
		{"1", "1"},
	})
	writeCSV(t, dir, "crates_keywords", [][]string{
		{"crate_id", "keyword_id"},
		{"1", "1"},
		{"2", "1"},
	})

	targetsPath := filepath.Join(dir, "targets.txt")
	table := `triple;cfgs
x86_64-unknown-linux-gnu;[["target_arch","x86_64"],["target_os","linux"],["unix"]]
wasm32-unknown-unknown;[["target_arch","wasm32"]]
`
	if err := os.WriteFile(targetsPath, []byte(table), 0o644); err != nil {
		t.Fatalf("write targets: %v", err)
	}
	return dir, targetsPath
}

func newTestServer(t *testing.T, interval time.Duration) *Server {
	t.Helper()
	dir, targetsPath := writeDump(t)
	sup := supervisor.New(dir, targetsPath, interval, nil, nil)
	if err := sup.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return New(sup, 0, "", "", nil)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
}

func TestGetCrate(t *testing.T) {
	s := newTestServer(t, 0)

	rec := get(t, s, "/crates/warp")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body struct {
		Name      string `json:"name"`
		Version   string `json:"version"`
		Downloads int64  `json:"downloads"`
	}
	decode(t, rec, &body)
	if body.Name != "warp" || body.Version != "0.3.1" || body.Downloads != 5000 {
		t.Fatalf("body = %+v", body)
	}
}

func TestGetCrateNotFound(t *testing.T) {
	s := newTestServer(t, 0)

	rec := get(t, s, "/crates/nonexistent")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var msg string
	decode(t, rec, &msg)
	if msg != "Crate with id nonexistent not found." {
		t.Fatalf("body = %q", msg)
	}
}

func TestGetCategoryAndKeyword(t *testing.T) {
	s := newTestServer(t, 0)

	rec := get(t, s, "/categories/web-programming")
	if rec.Code != http.StatusOK {
		t.Fatalf("category status = %d", rec.Code)
	}
	rec = get(t, s, "/keywords/http")
	if rec.Code != http.StatusOK {
		t.Fatalf("keyword status = %d", rec.Code)
	}
	rec = get(t, s, "/keywords/absent")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing keyword status = %d", rec.Code)
	}
}

type graphBody struct {
	Crates []struct {
		Name     string `json:"name"`
		Distance int    `json:"distance"`
	} `json:"crates"`
	Dependencies []struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"dependencies"`
}

func TestGetGraph(t *testing.T) {
	s := newTestServer(t, 0)

	rec := get(t, s, "/graph/warp")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body graphBody
	decode(t, rec, &body)
	if body.Crates[0].Name != "warp" || body.Crates[0].Distance != 0 {
		t.Fatalf("first crate = %+v", body.Crates[0])
	}
	for _, c := range body.Crates[1:] {
		if c.Distance < 1 {
			t.Fatalf("crate %s distance %d", c.Name, c.Distance)
		}
	}
	if len(body.Dependencies) == 0 {
		t.Fatal("dependencies empty")
	}
}

func TestGetGraphFeatureSuperset(t *testing.T) {
	s := newTestServer(t, 0)

	var base, withTLS graphBody
	decode(t, get(t, s, "/graph/warp"), &base)
	decode(t, get(t, s, "/graph/warp?features=tls"), &withTLS)

	names := map[string]struct{}{}
	for _, c := range withTLS.Crates {
		names[c.Name] = struct{}{}
	}
	for _, c := range base.Crates {
		if _, ok := names[c.Name]; !ok {
			t.Fatalf("feature request dropped crate %s", c.Name)
		}
	}
	if len(withTLS.Crates) <= len(base.Crates) {
		t.Fatal("tls feature did not grow the crate set")
	}
}

func TestGetGraphPlatformGate(t *testing.T) {
	s := newTestServer(t, 0)

	var body graphBody
	rec := get(t, s, "/graph/chrono?features=wasmbind&target=x86_64-unknown-linux-gnu")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	decode(t, rec, &body)
	for _, c := range body.Crates {
		if c.Name == "wasm-bindgen" {
			t.Fatal("wasm32-gated dependency appeared on a linux target")
		}
	}
}

func TestGetGraphBadOptions(t *testing.T) {
	s := newTestServer(t, 0)

	rec := get(t, s, "/graph/warp?target=made-up-triple")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	rec = get(t, s, "/graph/warp?cfg_name=made_up")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchCrates(t *testing.T) {
	s := newTestServer(t, 0)

	rec := get(t, s, "/search/crates/warp")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var results []struct {
		Name string `json:"name"`
	}
	decode(t, rec, &results)
	if len(results) != 2 {
		t.Fatalf("results = %v", results)
	}
	if results[0].Name != "warp" {
		t.Fatalf("exact match not first: %v", results)
	}
	for _, r := range results[1:] {
		if !strings.HasPrefix(r.Name, "warp") {
			t.Fatalf("non-prefixed result %q", r.Name)
		}
	}
}

func TestSearchUnknownKind(t *testing.T) {
	s := newTestServer(t, 0)
	rec := get(t, s, "/search/owners/foo")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRandom(t *testing.T) {
	s := newTestServer(t, 0)
	for _, kind := range []string{"crates", "categories", "keywords"} {
		rec := get(t, s, "/random/"+kind)
		if rec.Code != http.StatusOK {
			t.Fatalf("random %s status = %d", kind, rec.Code)
		}
	}
	rec := get(t, s, "/random/graph")
	if rec.Code != http.StatusOK {
		t.Fatalf("random graph status = %d", rec.Code)
	}
	rec = get(t, s, "/random/planets")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("random unknown kind status = %d", rec.Code)
	}
}

func TestLastUpdated(t *testing.T) {
	s := newTestServer(t, 0)
	rec := get(t, s, "/state/last-updated")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		LastUpdated string `json:"last_updated"`
	}
	decode(t, rec, &body)
	if _, err := time.Parse(time.RFC3339, body.LastUpdated); err != nil {
		t.Fatalf("last_updated %q: %v", body.LastUpdated, err)
	}
}

func TestResetRateLimited(t *testing.T) {
	s := newTestServer(t, 0) // default 23h55m interval

	req := httptest.NewRequest(http.MethodPut, "/state/reset", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 within the interval", rec.Code)
	}
}

func TestResetAfterInterval(t *testing.T) {
	s := newTestServer(t, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	req := httptest.NewRequest(http.MethodPut, "/state/reset", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}
