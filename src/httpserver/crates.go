package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleCrate(w http.ResponseWriter, r *http.Request) {
	g, ok := s.currentGraph()
	if !ok {
		serviceUnavailable(w)
		return
	}
	id := mux.Vars(r)["id"]
	c, ok := g.Crate(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Crate with id %s not found.", id))
		return
	}
	writeJSON(w, http.StatusOK, c)
}
