package server

import (
	"encoding/json"
	"net/http"

	"github.com/dohyun-p/aircue/internal/models"
)

// PlaylistLister lists persisted playlist records.
type PlaylistLister interface {
	ListByDate(date string) ([]*models.PlaylistRecord, error)
	ListRecent(limit int) ([]*models.PlaylistRecord, error)
}

// PlaylistHandler serves generated playlist records as JSON.
// Implements the Handler interface for registration with a Router.
type PlaylistHandler struct {
	store PlaylistLister
}

// NewPlaylistHandler creates a handler backed by the given store.
func NewPlaylistHandler(store PlaylistLister) *PlaylistHandler {
	return &PlaylistHandler{store: store}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{"/playlists", "/health"}
}

// ServeHTTP handles playlist listing requests.
//
// GET /playlists returns recent records; GET /playlists?date=YYYY-MM-DD
// filters to one broadcast date. GET /health reports liveness.
func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path == "/health" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	var records []*models.PlaylistRecord
	var err error
	if date := r.URL.Query().Get("date"); date != "" {
		records, err = h.store.ListByDate(date)
	} else {
		records, err = h.store.ListRecent(20)
	}
	if err != nil {
		http.Error(w, "Failed to list playlists", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []*models.PlaylistRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(records),
		"playlists": records,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
