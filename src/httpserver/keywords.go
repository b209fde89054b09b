package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleKeyword(w http.ResponseWriter, r *http.Request) {
	g, ok := s.currentGraph()
	if !ok {
		serviceUnavailable(w)
		return
	}
	id := mux.Vars(r)["id"]
	k, ok := g.Keyword(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Keyword with id %s not found.", id))
		return
	}
	writeJSON(w, http.StatusOK, k)
}
