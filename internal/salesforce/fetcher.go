package salesforce

import (
	"fmt"

	"github.com/lromao/salesforce-automation-workbench/internal/models"
)

// Collections holds the four fetched component lists. Ownership passes to
// the switch manager; a refresh replaces the whole value, never merges.
type Collections struct {
	ValidationRules []*models.Component
	WorkflowRules   []*models.Component
	Flows           []*models.Component
	Triggers        []*models.Component
}

// Get returns the list for one component type.
func (c *Collections) Get(t models.ComponentType) []*models.Component {
	switch t {
	case models.TypeValidationRule:
		return c.ValidationRules
	case models.TypeWorkflowRule:
		return c.WorkflowRules
	case models.TypeFlow:
		return c.Flows
	case models.TypeApexTrigger:
		return c.Triggers
	}
	return nil
}

// Counts returns the per-type component counts.
func (c *Collections) Counts() map[models.ComponentType]int {
	return map[models.ComponentType]int{
		models.TypeValidationRule: len(c.ValidationRules),
		models.TypeWorkflowRule:   len(c.WorkflowRules),
		models.TypeFlow:           len(c.Flows),
		models.TypeApexTrigger:    len(c.Triggers),
	}
}

// Fetcher materializes Component lists from Tooling API queries. Each
// kind has its own source query and its own rule for deriving the active
// state; a failure in one category never aborts the others.
type Fetcher struct {
	client *Client
	log    func(string)
}

// NewFetcher creates a Fetcher reporting progress to logger.
func NewFetcher(client *Client, logger func(string)) *Fetcher {
	if logger == nil {
		logger = func(string) {}
	}
	return &Fetcher{client: client, log: logger}
}

// FetchAll queries all four component kinds. Categories that fail are
// logged and returned as empty lists; the result always carries all four.
func (f *Fetcher) FetchAll() *Collections {
	f.log("=== Fetching automation components ===")
	cols := &Collections{}

	f.log("Fetching validation rules...")
	cols.ValidationRules = f.fetchCategory(models.TypeValidationRule, f.fetchValidationRules)

	f.log("Fetching workflow rules...")
	cols.WorkflowRules = f.fetchCategory(models.TypeWorkflowRule, f.fetchWorkflowRules)

	f.log("Fetching flows...")
	cols.Flows = f.fetchCategory(models.TypeFlow, f.fetchFlows)

	f.log("Fetching Apex triggers...")
	cols.Triggers = f.fetchCategory(models.TypeApexTrigger, f.fetchTriggers)

	f.log("=== Fetch complete ===")
	return cols
}

func (f *Fetcher) fetchCategory(t models.ComponentType, fetch func() ([]*models.Component, error)) []*models.Component {
	comps, err := fetch()
	if err != nil {
		f.log(fmt.Sprintf("ERROR fetching %s components: %v", t, err))
		return []*models.Component{}
	}
	f.log(fmt.Sprintf("Found %d %s component(s)", len(comps), t))
	return comps
}

// fetchValidationRules queries ValidationRule records; the active flag is
// a top-level column.
func (f *Fetcher) fetchValidationRules() ([]*models.Component, error) {
	records, err := f.client.ToolingQuery(
		"SELECT Id, ValidationName, EntityDefinition.QualifiedApiName, Active " +
			"FROM ValidationRule ORDER BY ValidationName")
	if err != nil {
		return nil, err
	}

	comps := make([]*models.Component, 0, len(records))
	for _, rec := range records {
		objectName := rec.NestedString("EntityDefinition", "QualifiedApiName")
		if objectName == "" {
			objectName = "Unknown"
		}
		ruleName := rec.StringField("ValidationName")
		comps = append(comps, models.NewComponent(
			fmt.Sprintf("%s - %s", objectName, ruleName),
			fmt.Sprintf("%s.%s", objectName, ruleName),
			models.TypeValidationRule,
			rec.StringField("Id"),
			rec.BoolField("Active"),
			rec.MapField("Metadata"),
		))
	}
	return comps, nil
}

// fetchWorkflowRules queries WorkflowRule records; unlike validation
// rules, the active flag lives inside the nested Metadata payload.
func (f *Fetcher) fetchWorkflowRules() ([]*models.Component, error) {
	records, err := f.client.ToolingQuery(
		"SELECT Id, Name, TableEnumOrId, Metadata FROM WorkflowRule ORDER BY TableEnumOrId, Name")
	if err != nil {
		return nil, err
	}

	comps := make([]*models.Component, 0, len(records))
	for _, rec := range records {
		objectName := rec.StringField("TableEnumOrId")
		if objectName == "" {
			objectName = "Unknown"
		}
		name := rec.StringField("Name")
		metadata := rec.MapField("Metadata")
		active := false
		if metadata != nil {
			active, _ = metadata["active"].(bool)
		}
		comps = append(comps, models.NewComponent(
			fmt.Sprintf("%s - %s", objectName, name),
			fmt.Sprintf("%s.%s", objectName, name),
			models.TypeWorkflowRule,
			rec.StringField("Id"),
			active,
			metadata,
		))
	}
	return comps, nil
}

// fetchFlows is a two-step resolution: FlowDefinition decides which
// version (if any) is active, then the versioned Flow record supplies the
// display name and process type. A flow is active exactly when its
// definition's active version is this version.
func (f *Fetcher) fetchFlows() ([]*models.Component, error) {
	definitions, err := f.client.ToolingQuery(
		"SELECT Id, ActiveVersionId, LatestVersionId, DeveloperName, MasterLabel " +
			"FROM FlowDefinition ORDER BY MasterLabel")
	if err != nil {
		return nil, err
	}

	comps := make([]*models.Component, 0, len(definitions))
	for _, def := range definitions {
		versionID := def.StringField("ActiveVersionId")
		if versionID == "" {
			versionID = def.StringField("LatestVersionId")
		}
		if versionID == "" {
			continue
		}

		records, err := f.client.ToolingQuery(fmt.Sprintf(
			"SELECT Id, MasterLabel, ProcessType, Status, VersionNumber FROM Flow WHERE Id = '%s'", versionID))
		if err != nil {
			f.log(fmt.Sprintf("WARNING: flow version %s: %v", versionID, err))
			continue
		}
		if len(records) == 0 {
			continue
		}

		rec := records[0]
		name := rec.StringField("MasterLabel")
		processType := rec.StringField("ProcessType")
		if processType == "" {
			processType = "Flow"
		}
		status := rec.StringField("Status")
		version := rec.IntField("VersionNumber")
		if version == 0 {
			version = 1
		}

		comps = append(comps, models.NewComponent(
			fmt.Sprintf("%s (%s)", name, flowTypeLabel(processType)),
			name,
			models.TypeFlow,
			rec.StringField("Id"),
			status == "Active",
			map[string]interface{}{
				"status":        status,
				"processType":   processType,
				"versionNumber": version,
				"definitionId":  def.StringField("Id"),
			},
		))
	}
	return comps, nil
}

// fetchTriggers queries ApexTrigger records. The source body and compiled
// API version are retained: both are required to redeploy the trigger
// through the container pipeline.
func (f *Fetcher) fetchTriggers() ([]*models.Component, error) {
	records, err := f.client.ToolingQuery(
		"SELECT Id, Name, TableEnumOrId, Status, Body, ApiVersion FROM ApexTrigger ORDER BY TableEnumOrId, Name")
	if err != nil {
		return nil, err
	}

	comps := make([]*models.Component, 0, len(records))
	for _, rec := range records {
		objectName := rec.StringField("TableEnumOrId")
		if objectName == "" {
			objectName = "Unknown"
		}
		name := rec.StringField("Name")
		status := rec.StringField("Status")
		comps = append(comps, models.NewComponent(
			fmt.Sprintf("%s - %s", objectName, name),
			name,
			models.TypeApexTrigger,
			rec.StringField("Id"),
			status == "Active",
			map[string]interface{}{
				"status":     status,
				"body":       rec.StringField("Body"),
				"apiVersion": rec["ApiVersion"],
			},
		))
	}
	return comps, nil
}

// flowTypeLabel maps a Flow ProcessType to its display label.
func flowTypeLabel(processType string) string {
	switch processType {
	case "Workflow":
		return "Process Builder"
	case "AutoLaunchedFlow":
		return "Autolaunched Flow"
	case "CustomEvent":
		return "Record-Triggered Flow"
	case "InvocableProcess":
		return "Invocable Process"
	default:
		return processType
	}
}
