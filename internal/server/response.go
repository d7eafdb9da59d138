package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkmbinder/pkmbinder/internal/cards"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Error: msg})
}

// respondCatalogError translates a card client failure into an HTTP status.
// The catalog is an upstream of this API, so its faults surface as gateway
// errors rather than server errors.
func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cards.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cards.ErrRateLimited):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		// ErrUnauthorized lands here too: a bad upstream key is this
		// service's misconfiguration, not the caller's.
		respondError(w, http.StatusBadGateway, err.Error())
	}
}
