package models

import (
	"sync"
	"testing"
)

func TestSession_BaseURL(t *testing.T) {
	tests := []struct {
		name   string
		sess   Session
		expect string
	}{
		{"plain", Session{InstanceURL: "https://acme.my.salesforce.com"}, "https://acme.my.salesforce.com"},
		{"trailing slash", Session{InstanceURL: "https://acme.my.salesforce.com/"}, "https://acme.my.salesforce.com"},
		{"sandbox", Session{InstanceURL: "https://acme--dev.sandbox.my.salesforce.com"}, "https://acme--dev.sandbox.my.salesforce.com"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.sess.BaseURL()
			if got != tc.expect {
				t.Errorf("BaseURL() = %q, want %q", got, tc.expect)
			}
		})
	}
}

func TestSession_MaskedToken(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		expect string
	}{
		{"non-empty", "00Dxx0000001gEH!secret", "••••••••"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &Session{AccessToken: tc.token}
			got := s.MaskedToken()
			if got != tc.expect {
				t.Errorf("MaskedToken() = %q, want %q", got, tc.expect)
			}
		})
	}
}

func TestSessionStore_CRUD(t *testing.T) {
	store := NewSessionStore()

	s := &Session{Name: "prod", InstanceURL: "https://acme.my.salesforce.com"}
	store.Create(s)
	if s.ID == "" {
		t.Fatal("Create should assign an ID")
	}

	if got := store.Get(s.ID); got != s {
		t.Error("Get should return the stored session")
	}
	if got := store.Get("missing"); got != nil {
		t.Error("Get on unknown id should return nil")
	}

	if len(store.List()) != 1 {
		t.Errorf("List() returned %d sessions, want 1", len(store.List()))
	}

	if !store.Delete(s.ID) {
		t.Error("Delete should return true for an existing session")
	}
	if store.Delete(s.ID) {
		t.Error("Delete should return false for a missing session")
	}
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	store := NewSessionStore()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Create(&Session{Name: "s", InstanceURL: "https://x"})
			store.List()
		}()
	}
	wg.Wait()
	if len(store.List()) != 10 {
		t.Errorf("List() returned %d sessions, want 10", len(store.List()))
	}
}
