package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cratergraph/cratergraph/src/graph"
	"github.com/cratergraph/cratergraph/src/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	g, ok := s.currentGraph()
	if !ok {
		serviceUnavailable(w)
		return
	}
	vars := mux.Vars(r)
	kind, term := vars["kind"], vars["term"]

	results, status, err := searchKind(g, kind, term, s.searchCap)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// searchKind dispatches to the vertex map named by kind and returns the
// matched vertex records (as `any`, since the three kinds have different
// shapes) in ranked order.
func searchKind(g *graph.Graph, kind, term string, cap int) ([]any, int, error) {
	switch kind {
	case "crates":
		_, exact := g.Crate(term)
		names := search.Search(g.CrateNames(), term, func(n string) int {
			c, _ := g.Crate(n)
			return c.Popularity()
		}, cap, exact)
		out := make([]any, 0, len(names))
		for _, n := range names {
			c, _ := g.Crate(n)
			out = append(out, c)
		}
		return out, http.StatusOK, nil
	case "categories":
		_, exact := g.Category(term)
		names := search.Search(g.CategoryNames(), term, func(n string) int {
			c, _ := g.Category(n)
			return c.Popularity()
		}, cap, exact)
		out := make([]any, 0, len(names))
		for _, n := range names {
			c, _ := g.Category(n)
			out = append(out, c)
		}
		return out, http.StatusOK, nil
	case "keywords":
		_, exact := g.Keyword(term)
		names := search.Search(g.KeywordNames(), term, func(n string) int {
			k, _ := g.Keyword(n)
			return k.Popularity()
		}, cap, exact)
		out := make([]any, 0, len(names))
		for _, n := range names {
			k, _ := g.Keyword(n)
			out = append(out, k)
		}
		return out, http.StatusOK, nil
	default:
		return nil, http.StatusBadRequest, fmt.Errorf("unknown vertex kind %q", kind)
	}
}
