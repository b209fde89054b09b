package httpserver

import (
	"errors"
	"net/http"

	"github.com/cratergraph/cratergraph/src/supervisor"
)

type lastUpdatedBody struct {
	LastUpdated string `json:"last_updated"`
}

func (s *Server) handleLastUpdated(w http.ResponseWriter, r *http.Request) {
	g, ok := s.currentGraph()
	if !ok {
		serviceUnavailable(w)
		return
	}
	writeJSON(w, http.StatusOK, lastUpdatedBody{LastUpdated: g.LastRefresh().Format("2006-01-02T15:04:05Z07:00")})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	err := s.sup.Refresh(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, "refreshed")
	case errors.Is(err, supervisor.ErrRateLimited):
		writeError(w, http.StatusForbidden, "refresh requested too soon; try again later")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
