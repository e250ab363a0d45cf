package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lromao/salesforce-automation-workbench/internal/models"
)

// componentType parses and validates the {type} URL parameter.
func componentType(r *http.Request) (models.ComponentType, bool) {
	t := models.ComponentType(chi.URLParam(r, "type"))
	return t, t.Valid()
}

func (s *Server) ListComponents(w http.ResponseWriter, r *http.Request) {
	m := s.manager(chi.URLParam(r, "id"))
	if m == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	t, ok := componentType(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown component type: "+chi.URLParam(r, "type"))
		return
	}
	comps := m.Components(t)
	if comps == nil {
		comps = []*models.Component{}
	}
	writeJSON(w, http.StatusOK, comps)
}

func (s *Server) ToggleComponent(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupComponent(w, r)
	if !ok {
		return
	}
	c.Toggle()
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) SetComponentActive(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupComponent(w, r)
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	c.SetActive(req.Active)
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) RollbackComponents(w http.ResponseWriter, r *http.Request) {
	m := s.manager(chi.URLParam(r, "id"))
	if m == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	t, ok := componentType(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown component type: "+chi.URLParam(r, "type"))
		return
	}

	var lastLine string
	count := m.RollbackAll(t, func(line string) { lastLine = line })
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rolled_back": count,
		"message":     lastLine,
	})
}

func (s *Server) lookupComponent(w http.ResponseWriter, r *http.Request) (*models.Component, bool) {
	m := s.manager(chi.URLParam(r, "id"))
	if m == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	t, ok := componentType(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown component type: "+chi.URLParam(r, "type"))
		return nil, false
	}
	c := m.Component(t, chi.URLParam(r, "recordId"))
	if c == nil {
		writeError(w, http.StatusNotFound, "component not found")
		return nil, false
	}
	return c, true
}
