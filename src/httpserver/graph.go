package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cratergraph/cratergraph/src/resolver"
)

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.currentGraph()
	if !ok {
		serviceUnavailable(w)
		return
	}
	crate := mux.Vars(r)["crate"]

	q := r.URL.Query()
	var features []string
	if raw := q.Get("features"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f != "" {
				features = append(features, f)
			}
		}
	}
	target := q.Get("target")
	if target == "" {
		target = s.target
	}
	cfgName := q.Get("cfg_name")
	if cfgName == "" {
		cfgName = s.cfgName
	}

	writeResolved(w, g, crate, features, target, cfgName)
}

func errIsNotFound(err error) bool {
	return errors.Is(err, resolver.ErrNotFound)
}

func errIsBadOptions(err error) bool {
	var bad *resolver.BadOptionsError
	return errors.As(err, &bad)
}
