package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	g, ok := s.currentGraph()
	if !ok {
		serviceUnavailable(w)
		return
	}
	id := mux.Vars(r)["id"]
	c, ok := g.Category(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Category with id %s not found.", id))
		return
	}
	writeJSON(w, http.StatusOK, c)
}
