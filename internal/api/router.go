package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lromao/salesforce-automation-workbench/internal/models"
	"github.com/lromao/salesforce-automation-workbench/internal/salesforce"
	"github.com/lromao/salesforce-automation-workbench/internal/switching"
)

// Server holds shared state for all API handlers.
type Server struct {
	Sessions *models.SessionStore
	Jobs     *models.JobStore
	Deploy   switching.Config

	mu       sync.Mutex
	managers map[string]*switching.Manager
}

// NewServer creates a Server with empty stores.
func NewServer(deploy switching.Config) *Server {
	return &Server{
		Sessions: models.NewSessionStore(),
		Jobs:     models.NewJobStore(),
		Deploy:   deploy,
		managers: make(map[string]*switching.Manager),
	}
}

// manager returns the switch manager for a session, creating it on first
// use. Returns nil if the session does not exist.
func (s *Server) manager(sessionID string) *switching.Manager {
	sess := s.Sessions.Get(sessionID)
	if sess == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.managers[sessionID]; ok {
		return m
	}
	m := switching.NewManager(salesforce.NewClient(sess), s.Deploy)
	s.managers[sessionID] = m
	return m
}

// dropManager discards the manager owned by a deleted session.
func (s *Server) dropManager(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.managers, sessionID)
}

// NewRouter builds the chi router with all API routes.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Sessions
		r.Post("/sessions", s.CreateSession)
		r.Get("/sessions", s.ListSessions)
		r.Delete("/sessions/{id}", s.DeleteSession)
		r.Post("/sessions/{id}/test", s.TestSession)

		// Org browsing
		r.Get("/sessions/{id}/objects", s.ListObjects)
		r.Post("/sessions/{id}/query", s.RunQuery)

		// Components
		r.Post("/sessions/{id}/components/fetch", s.RunFetch)
		r.Get("/sessions/{id}/components/{type}", s.ListComponents)
		r.Post("/sessions/{id}/components/{type}/rollback", s.RollbackComponents)
		r.Post("/sessions/{id}/components/{type}/deploy", s.RunDeploy)
		r.Post("/sessions/{id}/components/{type}/{recordId}/toggle", s.ToggleComponent)
		r.Post("/sessions/{id}/components/{type}/{recordId}/active", s.SetComponentActive)

		// Export
		r.Post("/sessions/{id}/export", s.RunExport)

		// Jobs
		r.Get("/jobs", s.ListJobs)
		r.Get("/jobs/{id}", s.GetJob)
		r.Post("/jobs/{id}/cancel", s.CancelJob)
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/jobs/{id}/logs", s.StreamJobLogs)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
