package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkmbinder/pkmbinder/internal/cards"
)

// setFilterParams are the sets filters the API forwards, in wire order.
var setFilterParams = []string{"name", "series", "ptcgoCode", "legalities.standard"}

// cardFilterParams become q terms for card listings, in wire order.
var cardFilterParams = []string{"rarity", "types", "name"}

type setPageResponse struct {
	Data       any `json:"data"`
	TotalCount int `json:"totalCount"`
}

func (s *Server) handleListSets(w http.ResponseWriter, r *http.Request) {
	page, pageSize, ok := s.pagination(w, r)
	if !ok {
		return
	}

	resp, err := s.catalog.ListSets(r.Context(), cards.SetListOptions{
		Page:     page,
		PageSize: pageSize,
		Filters:  queryFilters(r, setFilterParams),
	})
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, setPageResponse{Data: resp.Sets, TotalCount: resp.TotalCount})
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	page, pageSize, ok := s.pagination(w, r)
	if !ok {
		return
	}

	resp, err := s.catalog.CardsBySetID(r.Context(), chi.URLParam(r, "id"), cards.CardListOptions{
		Page:     page,
		PageSize: pageSize,
		Filters:  queryFilters(r, cardFilterParams),
	})
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, setPageResponse{Data: resp.Cards, TotalCount: resp.TotalCount})
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.catalog.CardByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	if card == nil {
		respondError(w, http.StatusNotFound, "card not found")
		return
	}
	respondJSON(w, http.StatusOK, card)
}

// pagination parses page/pageSize, falling back to the configured default
// size. A malformed value is the caller's error.
func (s *Server) pagination(w http.ResponseWriter, r *http.Request) (page, pageSize int, ok bool) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid page")
		return 0, 0, false
	}
	pageSize, err = queryInt(r, "pageSize", s.pageSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid pageSize")
		return 0, 0, false
	}
	return page, pageSize, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryFilters(r *http.Request, keys []string) []cards.Filter {
	q := r.URL.Query()
	filters := make([]cards.Filter, 0, len(keys))
	for _, key := range keys {
		if v := q.Get(key); v != "" {
			filters = append(filters, cards.Filter{Field: key, Value: v})
		}
	}
	return filters
}
