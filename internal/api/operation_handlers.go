package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/lromao/salesforce-automation-workbench/internal/export"
)

// RunFetch refreshes all component collections for a session as an async
// job. Local edits are discarded in favor of the org baseline.
func (s *Server) RunFetch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := s.Sessions.Get(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	m := s.manager(id)

	job := s.Jobs.Create("fetch", id)
	go func() {
		job.AppendLog(fmt.Sprintf("Fetching components from %s", sess.BaseURL()))
		counts := m.Refresh(job.AppendLog)
		for t, n := range counts {
			job.AppendLog(fmt.Sprintf("%s: %d", t, n))
		}
		job.Complete()
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// RunDeploy deploys all modified components of one type as an async job.
func (s *Server) RunDeploy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := s.Sessions.Get(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	t, ok := componentType(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown component type: "+chi.URLParam(r, "type"))
		return
	}

	var req struct {
		RunTests bool `json:"run_tests"`
	}
	if r.Body != nil {
		// Optional body; a missing or empty body means run_tests=false.
		json.NewDecoder(r.Body).Decode(&req)
	}

	m := s.manager(id)
	comps := m.ModifiedComponents(t)

	job := s.Jobs.Create("deploy", id)
	go func() {
		result := m.DeployChanges(job.Context(), t, comps, req.RunTests, job.AppendLog)
		if result.Success {
			job.Complete()
		} else {
			job.Fail(result.Message)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":   job.ID,
		"modified": len(comps),
	})
}

// RunExport writes the fetched component inventories to CSV files.
func (s *Server) RunExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := s.Sessions.Get(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	m := s.manager(id)

	outputDir := filepath.Join(os.TempDir(), "sf-workbench-export", id)

	job := s.Jobs.Create("export", id)
	go func() {
		job.AppendLog("Exporting component inventory to: " + outputDir)
		count, err := export.WriteComponents(outputDir, m.Collections(), job.AppendLog)
		if err != nil {
			job.AppendLog("ERROR: " + err.Error())
			job.Fail(err.Error())
			return
		}
		job.AppendLog(fmt.Sprintf("Export complete: %d file(s) written", count))
		job.Complete()
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":     job.ID,
		"output_dir": outputDir,
	})
}
