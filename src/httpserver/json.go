package httpserver

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError encodes message as a bare JSON string, e.g. a 404 body of
// exactly `"Crate with id nonexistent not found."`.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, message)
}

func serviceUnavailable(w http.ResponseWriter) {
	writeError(w, http.StatusServiceUnavailable, "graph not yet loaded")
}
