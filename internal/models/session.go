package models

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Session represents an authenticated Salesforce org connection. The
// credential is acquired elsewhere (OAuth, CLI, SOAP login); the workbench
// only consumes the resulting instance URL, bearer token, and API version.
type Session struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	InstanceURL string `json:"instance_url"` // e.g. https://acme.my.salesforce.com
	AccessToken string `json:"access_token"`
	APIVersion  string `json:"api_version"` // e.g. "62.0"
}

// BaseURL returns the instance URL without a trailing slash.
func (s *Session) BaseURL() string {
	return strings.TrimRight(s.InstanceURL, "/")
}

// MaskedToken returns a masked representation of the access token for display.
func (s *Session) MaskedToken() string {
	if s.AccessToken == "" {
		return ""
	}
	return "••••••••"
}

// SessionStore is an in-memory thread-safe store for sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create adds a new session, assigning it a UUID.
func (st *SessionStore) Create(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s.ID = uuid.New().String()
	st.sessions[s.ID] = s
}

// Get returns a session by ID, or nil if not found.
func (st *SessionStore) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// List returns all sessions.
func (st *SessionStore) List() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	result := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		result = append(result, s)
	}
	return result
}

// Delete removes a session by ID.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}
