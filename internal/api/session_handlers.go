package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lromao/salesforce-automation-workbench/internal/models"
	"github.com/lromao/salesforce-automation-workbench/internal/salesforce"
)

// sessionView is the Session shape returned to the UI, with the bearer
// token masked.
type sessionView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	InstanceURL string `json:"instance_url"`
	AccessToken string `json:"access_token"`
	APIVersion  string `json:"api_version"`
}

func viewOf(s *models.Session) sessionView {
	return sessionView{
		ID:          s.ID,
		Name:        s.Name,
		InstanceURL: s.InstanceURL,
		AccessToken: s.MaskedToken(),
		APIVersion:  s.APIVersion,
	}
}

func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var sess models.Session
	if err := json.NewDecoder(r.Body).Decode(&sess); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if sess.InstanceURL == "" {
		writeError(w, http.StatusBadRequest, "instance_url is required")
		return
	}
	if sess.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "access_token is required")
		return
	}
	if sess.APIVersion == "" {
		sess.APIVersion = "62.0"
	}
	if sess.Name == "" {
		sess.Name = sess.InstanceURL
	}
	s.Sessions.Create(&sess)
	writeJSON(w, http.StatusCreated, viewOf(&sess))
}

func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.Sessions.List()
	views := make([]sessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, viewOf(sess))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Sessions.Delete(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.dropManager(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) TestSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := s.Sessions.Get(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	client := salesforce.NewClient(sess)
	if err := client.Ping(); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
	})
}
