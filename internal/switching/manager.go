package switching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lromao/salesforce-automation-workbench/internal/models"
	"github.com/lromao/salesforce-automation-workbench/internal/salesforce"
)

// Config holds the deploy tunables. The defaults are rate-limit
// accommodations, not protocol requirements.
type Config struct {
	BatchSize      int           // components per batch for non-trigger deploys
	BatchDelay     time.Duration // pause between batches
	TriggerDelay   time.Duration // pause between sequential trigger deploys
	PollInterval   time.Duration // container async request poll interval
	TriggerTimeout time.Duration // per-trigger compile+test deadline
	MaxRetries     int           // attempts per trigger
	RetryBackoff   time.Duration // base wait, multiplied by attempt number
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		BatchSize:      10,
		BatchDelay:     500 * time.Millisecond,
		TriggerDelay:   2 * time.Second,
		PollInterval:   2 * time.Second,
		TriggerTimeout: 5 * time.Minute,
		MaxRetries:     3,
		RetryBackoff:   2 * time.Second,
	}
}

// Manager owns the fetched component collections for one org session and
// orchestrates toggle, rollback, and deployment. Non-trigger kinds go
// through the synchronous batch read-modify-write path; triggers go through
// the asynchronous container pipeline one at a time.
type Manager struct {
	client *salesforce.Client
	cfg    Config

	mu   sync.RWMutex
	cols *salesforce.Collections
}

// NewManager creates a Manager with empty collections.
func NewManager(client *salesforce.Client, cfg Config) *Manager {
	return &Manager{client: client, cfg: cfg, cols: &salesforce.Collections{}}
}

// Refresh fetches all component kinds, replacing the current collections.
// Local edits are discarded; every component starts at its org baseline.
func (m *Manager) Refresh(logger func(string)) map[models.ComponentType]int {
	cols := salesforce.NewFetcher(m.client, logger).FetchAll()
	m.mu.Lock()
	m.cols = cols
	m.mu.Unlock()
	return cols.Counts()
}

// Collections returns the currently fetched collections.
func (m *Manager) Collections() *salesforce.Collections {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cols
}

// Components returns the collection for one component type.
func (m *Manager) Components(t models.ComponentType) []*models.Component {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cols.Get(t)
}

// Component looks up a component by record id within one type's collection.
func (m *Manager) Component(t models.ComponentType, recordID string) *models.Component {
	for _, c := range m.Components(t) {
		if c.RecordID == recordID {
			return c
		}
	}
	return nil
}

// ModifiedComponents returns the components of one type whose state
// differs from baseline.
func (m *Manager) ModifiedComponents(t models.ComponentType) []*models.Component {
	var modified []*models.Component
	for _, c := range m.Components(t) {
		if c.Modified() {
			modified = append(modified, c)
		}
	}
	return modified
}

// RollbackAll reverts every modified component of the given type to its
// baseline and returns how many were reverted. Zero means there was
// nothing to roll back.
func (m *Manager) RollbackAll(t models.ComponentType, logger func(string)) int {
	count := 0
	for _, c := range m.Components(t) {
		if c.Modified() {
			c.Rollback()
			count++
		}
	}
	if count > 0 {
		logger(fmt.Sprintf("Rolled back %d %s component(s) to original state", count, t))
	} else {
		logger(fmt.Sprintf("No modified %s components to roll back", t))
	}
	return count
}

// DeployChanges deploys the given components of one type. An empty input
// is an explicit no-op success with zero network calls. Each component
// that individually succeeds is committed even when siblings fail; the
// aggregate result names every failure.
func (m *Manager) DeployChanges(ctx context.Context, t models.ComponentType, comps []*models.Component, runTests bool, logger func(string)) models.DeployResult {
	if len(comps) == 0 {
		return models.NoChangesResult()
	}

	logger(fmt.Sprintf("=== Deploying %d %s component(s) ===", len(comps), t))

	var result models.DeployResult
	if t == models.TypeApexTrigger {
		result = m.deployTriggers(ctx, comps, runTests, logger)
	} else {
		result = m.batchDeploy(ctx, t, comps, logger)
	}
	logger(result.Message)
	return result
}

// batchDeploy processes non-trigger components in fixed-size groups with a
// pause between groups. Each update is an isolated read-modify-write; a
// failing item is recorded and the batch continues.
func (m *Manager) batchDeploy(ctx context.Context, t models.ComponentType, comps []*models.Component, logger func(string)) models.DeployResult {
	result := models.DeployResult{}
	batches := chunk(comps, m.cfg.BatchSize)

	for batchNum, batch := range batches {
		if ctx.Err() != nil {
			break
		}
		logger(fmt.Sprintf("Processing batch %d/%d (%d components)", batchNum+1, len(batches), len(batch)))

		for _, c := range batch {
			if ctx.Err() != nil {
				break
			}
			result.Attempted++
			if err := m.updateComponent(c); err != nil {
				result.Failed = append(result.Failed, models.ComponentFailure{Name: c.Name, Reason: err.Error()})
				logger(fmt.Sprintf("  FAIL %s: %v", c.Name, err))
				continue
			}
			c.Commit()
			result.Succeeded++
			logger(fmt.Sprintf("  OK %s", c.Name))
		}

		if batchNum < len(batches)-1 {
			sleepCtx(ctx, m.cfg.BatchDelay)
		}
	}

	result.Summarize(string(t))
	if ctx.Err() != nil && result.Attempted < len(comps) {
		result.Message += fmt.Sprintf("\nCancelled with %d component(s) not attempted", len(comps)-result.Attempted)
	}
	return result
}

// kindSpec describes how one component kind reads and patches its active
// flag, keeping the deploy loop kind-agnostic.
type kindSpec struct {
	// sobject is the Tooling API object the patch targets.
	sobject string
	// target resolves the record id of the patch target.
	target func(c *models.Component) (string, error)
	// mutate flips only the active-related field inside the fetched
	// metadata payload, preserving everything else verbatim.
	mutate func(c *models.Component, metadata map[string]interface{})
}

var kindSpecs = map[models.ComponentType]kindSpec{
	models.TypeValidationRule: {
		sobject: "ValidationRule",
		target:  ownRecord,
		mutate: func(c *models.Component, metadata map[string]interface{}) {
			metadata["active"] = c.IsActive()
		},
	},
	models.TypeWorkflowRule: {
		sobject: "WorkflowRule",
		target:  ownRecord,
		mutate: func(c *models.Component, metadata map[string]interface{}) {
			metadata["active"] = c.IsActive()
		},
	},
	models.TypeFlow: {
		// Flow activation is a property of the owning FlowDefinition:
		// its activeVersionNumber points at this version, or 0 for none.
		sobject: "FlowDefinition",
		target: func(c *models.Component) (string, error) {
			id := c.MetaString("definitionId")
			if id == "" {
				return "", errors.New("flow has no definition id")
			}
			return id, nil
		},
		mutate: func(c *models.Component, metadata map[string]interface{}) {
			if c.IsActive() {
				metadata["activeVersionNumber"] = c.Metadata["versionNumber"]
			} else {
				metadata["activeVersionNumber"] = 0
			}
		},
	},
}

func ownRecord(c *models.Component) (string, error) {
	return c.RecordID, nil
}

// updateComponent performs the read-modify-write for one non-trigger
// component: fetch the current full metadata payload, flip only the active
// flag, and PATCH the whole payload back. Success is exactly HTTP 204.
func (m *Manager) updateComponent(c *models.Component) error {
	if c.RecordID == "" {
		return errors.New("component has no record id")
	}
	spec, ok := kindSpecs[c.Type]
	if !ok {
		return fmt.Errorf("unsupported component type %q", c.Type)
	}

	targetID, err := spec.target(c)
	if err != nil {
		return err
	}
	path := m.client.ToolingPath(fmt.Sprintf("sobjects/%s/%s", spec.sobject, targetID))

	var record salesforce.Record
	if err := m.client.GetJSON(path, nil, &record); err != nil {
		return fmt.Errorf("reading current metadata: %w", err)
	}
	metadata := record.MapField("Metadata")
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	spec.mutate(c, metadata)

	body, status, err := m.client.Patch(path, map[string]interface{}{"Metadata": metadata})
	if err != nil {
		return err
	}
	if status != 204 {
		return fmt.Errorf("unexpected HTTP %d: %s", status, truncate(string(body), 200))
	}
	return nil
}

func chunk(comps []*models.Component, size int) [][]*models.Component {
	if size <= 0 {
		size = 1
	}
	var batches [][]*models.Component
	for start := 0; start < len(comps); start += size {
		end := start + size
		if end > len(comps) {
			end = len(comps)
		}
		batches = append(batches, comps[start:end])
	}
	return batches
}

// sleepCtx pauses for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
