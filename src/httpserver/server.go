// Package httpserver binds the registry graph's read operations to
// HTTP. Every handler here does nothing but read query parameters, call
// into src/graph, src/search, src/resolver, or src/supervisor, and
// encode the result as JSON.
package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cratergraph/cratergraph/src/graph"
	"github.com/cratergraph/cratergraph/src/supervisor"
)

// Server wires the HTTP surface to a Supervisor-owned Graph.
type Server struct {
	sup       *supervisor.Supervisor
	router    *mux.Router
	searchCap int
	target    string
	cfgName   string
}

// New builds the route table. searchCap overrides search.DefaultCap;
// pass 0 to use the package default. defaultTarget/defaultCfgName seed
// /graph and /random/graph requests that omit their own query params.
func New(sup *supervisor.Supervisor, searchCap int, defaultTarget, defaultCfgName string, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		sup:       sup,
		router:    mux.NewRouter(),
		searchCap: searchCap,
		target:    defaultTarget,
		cfgName:   defaultCfgName,
	}

	s.router.HandleFunc("/crates/{id}", s.handleCrate).Methods(http.MethodGet)
	s.router.HandleFunc("/categories/{id}", s.handleCategory).Methods(http.MethodGet)
	s.router.HandleFunc("/keywords/{id}", s.handleKeyword).Methods(http.MethodGet)
	s.router.HandleFunc("/random/graph", s.handleRandomGraph).Methods(http.MethodGet)
	s.router.HandleFunc("/random/{kind}", s.handleRandom).Methods(http.MethodGet)
	s.router.HandleFunc("/search/{kind}/{term}", s.handleSearch).Methods(http.MethodGet)
	s.router.HandleFunc("/graph/{crate}", s.handleGraph).Methods(http.MethodGet)
	s.router.HandleFunc("/state/last-updated", s.handleLastUpdated).Methods(http.MethodGet)
	s.router.HandleFunc("/state/reset", s.handleReset).Methods(http.MethodPut)
	if gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// currentGraph returns the live Graph, or (nil, false) if the supervisor
// has not completed its initial Bootstrap yet.
func (s *Server) currentGraph() (*graph.Graph, bool) {
	g := s.sup.Graph()
	return g, g != nil
}
