package httpserver

import (
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cratergraph/cratergraph/src/graph"
	"github.com/cratergraph/cratergraph/src/resolver"
)

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	g, ok := s.currentGraph()
	if !ok {
		serviceUnavailable(w)
		return
	}
	kind := mux.Vars(r)["kind"]

	switch kind {
	case "crates":
		name, ok := randomName(g.CrateNames())
		if !ok {
			writeError(w, http.StatusNotFound, "no crates in graph")
			return
		}
		c, _ := g.Crate(name)
		writeJSON(w, http.StatusOK, c)
	case "categories":
		name, ok := randomName(g.CategoryNames())
		if !ok {
			writeError(w, http.StatusNotFound, "no categories in graph")
			return
		}
		c, _ := g.Category(name)
		writeJSON(w, http.StatusOK, c)
	case "keywords":
		name, ok := randomName(g.KeywordNames())
		if !ok {
			writeError(w, http.StatusNotFound, "no keywords in graph")
			return
		}
		k, _ := g.Keyword(name)
		writeJSON(w, http.StatusOK, k)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown vertex kind %q", kind))
	}
}

// handleRandomGraph resolves the dependency graph of a uniformly-chosen
// random crate under the server's default platform context.
func (s *Server) handleRandomGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.currentGraph()
	if !ok {
		serviceUnavailable(w)
		return
	}
	name, ok := randomName(g.CrateNames())
	if !ok {
		writeError(w, http.StatusNotFound, "no crates in graph")
		return
	}
	writeResolved(w, g, name, nil, s.target, s.cfgName)
}

func randomName(names []string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	return names[rand.N(len(names))], true
}

func writeResolved(w http.ResponseWriter, g *graph.Graph, crate string, features []string, target, cfgName string) {
	res, err := resolver.Resolve(g, crate, features, target, cfgName)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errIsNotFound(err):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Crate with id %s not found.", crate))
	case errIsBadOptions(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
