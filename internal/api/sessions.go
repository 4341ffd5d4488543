package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/pico-bridge/internal/ui"
)

// PageResponse is returned whenever a page is rendered.
type PageResponse struct {
	SessionID string   `json:"session_id"`
	Page      *ui.Node `json:"page"`
}

// WidgetChange is the request body for a widget change.
type WidgetChange struct {
	Value any `json:"value"`
}

// RegionResponse is the current content of a display region.
type RegionResponse struct {
	Region string `json:"region"`
	Text   string `json:"text"`
}

// handleOpenSession starts a session and runs its first render.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	rt, err := s.app.Open()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	page, err := rt.Render(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, PageResponse{SessionID: rt.ID(), Page: page})
}

// handleRenderPage reruns the page script for a session.
func (s *Server) handleRenderPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rt, err := s.app.Runtime(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	page, err := rt.Render(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PageResponse{SessionID: id, Page: page})
}

// handleChangeWidget applies a widget input and returns the re-rendered page.
func (s *Server) handleChangeWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key := chi.URLParam(r, "key")

	rt, err := s.app.Runtime(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req WidgetChange
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Value == nil {
		writeBadRequest(w, "value is required")
		return
	}

	page, err := rt.Change(r.Context(), key, req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PageResponse{SessionID: id, Page: page})
}

// handleGetRegion returns the current content of a display region.
func (s *Server) handleGetRegion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	region := chi.URLParam(r, "region")

	rt, err := s.app.Runtime(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	text, err := rt.Region(region)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RegionResponse{Region: region, Text: text})
}

// handleCloseSession ends a session and stops its fragment.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Close(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
