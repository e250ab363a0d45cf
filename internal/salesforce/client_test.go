package salesforce

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lromao/salesforce-automation-workbench/internal/models"
)

func newTestClient(ts *httptest.Server) *Client {
	return &Client{
		baseURL:     ts.URL,
		accessToken: "00Dxx!token",
		apiVersion:  "62.0",
		httpClient:  ts.Client(),
	}
}

func TestClient_Get_BearerHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer 00Dxx!token" {
			t.Errorf("Authorization = %q, want Bearer 00Dxx!token", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		w.Write([]byte("{}"))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.Get("/test", nil)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
}

func TestClient_Get_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`[{"message":"Session expired or invalid","errorCode":"INVALID_SESSION_ID"}]`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.Get("/services/data/v62.0/limits/", nil)
	if err == nil {
		t.Fatal("Get should return error for 401")
	}
}

func TestClient_ToolingQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/data/v62.0/tooling/query/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "SELECT Id FROM ApexTrigger" {
			t.Errorf("q = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"totalSize": 2,
			"done":      true,
			"records": []interface{}{
				map[string]interface{}{"Id": "01q000000000001"},
				map[string]interface{}{"Id": "01q000000000002"},
			},
		})
	}))
	defer ts.Close()

	c := newTestClient(ts)
	records, err := c.ToolingQuery("SELECT Id FROM ApexTrigger")
	if err != nil {
		t.Fatalf("ToolingQuery returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ToolingQuery returned %d records, want 2", len(records))
	}
	if records[0].StringField("Id") != "01q000000000001" {
		t.Errorf("records[0].Id = %v", records[0]["Id"])
	}
}

func TestClient_Query_UsesDataEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/data/v62.0/query/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"records": []interface{}{}})
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if _, err := c.Query("SELECT Id FROM Account"); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
}

func TestClient_Patch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PATCH" {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["Metadata"]; !ok {
			t.Error("PATCH body should carry a Metadata key")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, status, err := c.Patch("/services/data/v62.0/tooling/sobjects/ValidationRule/03d000",
		map[string]interface{}{"Metadata": map[string]interface{}{"active": true}})
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if status != 204 {
		t.Errorf("status = %d, want 204", status)
	}
}

func TestClient_Post(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"1dc000000000001","success":true}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	body, status, err := c.Post("/services/data/v62.0/tooling/sobjects/MetadataContainer",
		map[string]string{"Name": "TriggerContainer_1"})
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if status != 201 {
		t.Errorf("status = %d, want 201", status)
	}
	if string(body) != `{"id":"1dc000000000001","success":true}` {
		t.Errorf("body = %q", string(body))
	}
}

func TestClient_Delete(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"no content", http.StatusNoContent, false},
		{"accepted", http.StatusAccepted, false},
		{"already gone", http.StatusNotFound, false},
		{"server error", http.StatusInternalServerError, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer ts.Close()

			c := newTestClient(ts)
			err := c.Delete("/services/data/v62.0/tooling/sobjects/MetadataContainer/1dc000")
			if (err != nil) != tc.wantErr {
				t.Errorf("Delete error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestClient_DescribeGlobal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/data/v62.0/sobjects/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sobjects": []interface{}{
				map[string]interface{}{"name": "Contact", "queryable": true, "deprecatedAndHidden": false},
				map[string]interface{}{"name": "Account", "queryable": true, "deprecatedAndHidden": false},
				map[string]interface{}{"name": "LegacyThing", "queryable": true, "deprecatedAndHidden": true},
				map[string]interface{}{"name": "SecretThing", "queryable": false, "deprecatedAndHidden": false},
			},
		})
	}))
	defer ts.Close()

	c := newTestClient(ts)
	names, err := c.DescribeGlobal()
	if err != nil {
		t.Fatalf("DescribeGlobal returned error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("DescribeGlobal returned %d names, want 2: %v", len(names), names)
	}
	if names[0] != "Account" || names[1] != "Contact" {
		t.Errorf("names = %v, want sorted [Account Contact]", names)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		expect string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"empty", "", 5, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.input, tc.maxLen)
			if got != tc.expect {
				t.Errorf("truncate(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.expect)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	sess := &models.Session{
		InstanceURL: "https://acme.my.salesforce.com/",
		AccessToken: "tok",
		APIVersion:  "62.0",
	}
	c := NewClient(sess)
	if c.baseURL != "https://acme.my.salesforce.com" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.accessToken != "tok" || c.apiVersion != "62.0" {
		t.Error("session fields not carried over")
	}
	if got := c.ToolingPath("query/"); got != "/services/data/v62.0/tooling/query/" {
		t.Errorf("ToolingPath = %q", got)
	}
}
