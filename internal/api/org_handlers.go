package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lromao/salesforce-automation-workbench/internal/salesforce"
)

// maxQueryRows bounds the ad-hoc SOQL result size returned to the UI.
const maxQueryRows = 2000

// ListObjects returns the queryable SObject names of the org.
func (s *Server) ListObjects(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Get(chi.URLParam(r, "id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	client := salesforce.NewClient(sess)
	names, err := client.DescribeGlobal()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(names),
		"objects": names,
	})
}

// RunQuery executes an ad-hoc SOQL query against the regular data API.
func (s *Server) RunQuery(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Get(chi.URLParam(r, "id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	var req struct {
		SOQL string `json:"soql"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.SOQL) == "" {
		writeError(w, http.StatusBadRequest, "soql is required")
		return
	}

	client := salesforce.NewClient(sess)
	records, err := client.Query(req.SOQL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	truncated := false
	if len(records) > maxQueryRows {
		records = records[:maxQueryRows]
		truncated = true
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(records),
		"truncated": truncated,
		"records":   records,
	})
}
