package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkmbinder/pkmbinder/internal/collection"
	"github.com/pkmbinder/pkmbinder/internal/report"
)

func (s *Server) handleListCollection(w http.ResponseWriter, r *http.Request) {
	entries, err := s.binder.List(r.Context(), r.URL.Query().Get("set"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*collection.Entry{}
	}
	respondJSON(w, http.StatusOK, setPageResponse{Data: entries, TotalCount: len(entries)})
}

func (s *Server) handleAddToCollection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CardID        string   `json:"cardId"`
		Quantity      int      `json:"quantity"`
		Condition     string   `json:"condition"`
		PurchasePrice *float64 `json:"purchasePrice"`
		Notes         string   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.CardID == "" {
		respondError(w, http.StatusBadRequest, "cardId is required")
		return
	}
	if req.Condition != "" && !collection.Condition(req.Condition).Valid() {
		respondError(w, http.StatusBadRequest, "unknown condition "+req.Condition)
		return
	}

	card, err := s.catalog.CardByID(r.Context(), req.CardID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	if card == nil {
		respondError(w, http.StatusNotFound, "card not found")
		return
	}

	entry := collection.NewEntry(card, req.Quantity, collection.Condition(req.Condition), req.PurchasePrice, req.Notes)
	if err := s.binder.Upsert(r.Context(), entry); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Re-read so repeated adds report the accumulated quantity.
	stored, err := s.binder.Get(r.Context(), req.CardID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdateCollectionEntry(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	var req struct {
		Quantity      *int     `json:"quantity"`
		Condition     *string  `json:"condition"`
		PurchasePrice *float64 `json:"purchasePrice"`
		Notes         *string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	entry, err := s.binder.Get(r.Context(), cardID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entry == nil {
		respondError(w, http.StatusNotFound, "card not in collection")
		return
	}

	if req.Quantity != nil {
		if *req.Quantity < 1 {
			respondError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
		entry.Quantity = *req.Quantity
	}
	if req.Condition != nil {
		if !collection.Condition(*req.Condition).Valid() {
			respondError(w, http.StatusBadRequest, "unknown condition "+*req.Condition)
			return
		}
		entry.Condition = collection.Condition(*req.Condition)
	}
	if req.PurchasePrice != nil {
		entry.PurchasePrice = req.PurchasePrice
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := s.binder.UpdateEntry(r.Context(), entry); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleRemoveFromCollection(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	entry, err := s.binder.Get(r.Context(), cardID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entry == nil {
		respondError(w, http.StatusNotFound, "card not in collection")
		return
	}
	if err := s.binder.Remove(r.Context(), cardID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCollectionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.binder.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCollectionHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 30)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	snaps, err := s.binder.ValueHistory(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snaps == nil {
		snaps = []*collection.ValueSnapshot{}
	}
	respondJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleExportCollection(w http.ResponseWriter, r *http.Request) {
	entries, err := s.binder.List(r.Context(), r.URL.Query().Get("set"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="binder.csv"`)
	if err := report.WriteBinderCSV(w, entries); err != nil {
		// Headers are gone; all we can do is log.
		s.logger.Error("export collection", "error", err)
	}
}

func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	summary, err := s.refresher.RefreshPrices(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
