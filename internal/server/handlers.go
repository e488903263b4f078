package server

import (
	"errors"
	"net/http"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/go-chi/chi/v5"
)

// ChatRequest is the body of POST /api/ai/chat.
type ChatRequest struct {
	Query *string `json:"query" validate:"required"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requireQuery(r *http.Request) (string, error) {
	q := r.URL.Query().Get("q")
	if q == "" {
		return "", shared.NewValidationError("Query parameter 'q' is required",
			shared.FieldError{Field: "q", Message: "is required"})
	}
	return q, nil
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.store.ListTracks()
	if err != nil {
		s.fail(w, r, err, "Failed to fetch tracks")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (s *Server) handleTrendingTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.store.ListTrendingTracks()
	if err != nil {
		s.fail(w, r, err, "Failed to fetch trending tracks")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (s *Server) handleSearchTracks(w http.ResponseWriter, r *http.Request) {
	q, err := requireQuery(r)
	if err != nil {
		s.fail(w, r, err, "Failed to search tracks")
		return
	}
	tracks, err := s.store.SearchTracks(q)
	if err != nil {
		s.fail(w, r, err, "Failed to search tracks")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	track, err := s.store.GetTrack(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch track")
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleCreateTrack(w http.ResponseWriter, r *http.Request) {
	const failed = "Failed to create track"
	var in models.NewTrack
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err, failed)
		return
	}
	if err := in.Validate(); err != nil {
		s.fail(w, r, err, failed)
		return
	}

	track, err := s.store.CreateTrack(in)
	if err != nil {
		s.fail(w, r, err, failed)
		return
	}
	writeJSON(w, http.StatusCreated, track)
}

func (s *Server) handleUpdateTrack(w http.ResponseWriter, r *http.Request) {
	const failed = "Failed to update track"
	var patch models.TrackPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err, failed)
		return
	}
	if err := patch.Validate(); err != nil {
		s.fail(w, r, err, failed)
		return
	}

	track, err := s.store.UpdateTrack(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err, failed)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.store.ListPlaylists()
	if err != nil {
		s.fail(w, r, err, "Failed to fetch playlists")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.store.GetPlaylist(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	const failed = "Failed to create playlist"
	var in models.NewPlaylist
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err, failed)
		return
	}
	if err := in.Validate(); err != nil {
		s.fail(w, r, err, failed)
		return
	}

	playlist, err := s.store.CreatePlaylist(in)
	if err != nil {
		s.fail(w, r, err, failed)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	const failed = "Failed to update playlist"
	var patch models.PlaylistPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err, failed)
		return
	}
	if err := patch.Validate(); err != nil {
		s.fail(w, r, err, failed)
		return
	}

	playlist, err := s.store.UpdatePlaylist(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err, failed)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.DeletePlaylist(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "Failed to delete playlist")
		return
	}
	if !deleted {
		s.fail(w, r, shared.ErrPlaylistNotFound, "Failed to delete playlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	interactions, err := s.store.ListAiInteractions()
	if err != nil {
		s.fail(w, r, err, "Failed to fetch AI interactions")
		return
	}
	writeJSON(w, http.StatusOK, interactions)
}

func (s *Server) handleGetInteraction(w http.ResponseWriter, r *http.Request) {
	interaction, err := s.store.GetAiInteraction(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch AI interaction")
		return
	}
	writeJSON(w, http.StatusOK, interaction)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	const failed = "Failed to process AI chat request"
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err, failed)
		return
	}
	if err := shared.Validate(req, "Query is required"); err != nil {
		s.fail(w, r, err, failed)
		return
	}

	interaction, err := s.assistant.Ask(*req.Query)
	if err != nil {
		s.fail(w, r, err, failed)
		return
	}
	writeJSON(w, http.StatusOK, interaction)
}

func (s *Server) handleExternalSearch(w http.ResponseWriter, r *http.Request) {
	q, err := requireQuery(r)
	if err != nil {
		s.fail(w, r, err, "Failed to search external platforms")
		return
	}

	tracks := []models.Track{}
	if s.search != nil {
		tracks = s.search.Search(r.Context(), q, r.URL.Query().Get("platform"))
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.store.GetUserPreferences()
	if errors.Is(err, shared.ErrPreferencesNotFound) {
		writeJSON(w, http.StatusOK, models.NewUserPreferences(models.DefaultPreferencesID))
		return
	}
	if err != nil {
		s.fail(w, r, err, "Failed to fetch user preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	const failed = "Failed to update user preferences"
	var patch models.PreferencesPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err, failed)
		return
	}

	prefs, err := s.store.UpdateUserPreferences(patch)
	if err != nil {
		s.fail(w, r, err, failed)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
