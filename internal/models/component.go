package models

import "encoding/json"

// ComponentType identifies one of the four automation component kinds.
type ComponentType string

const (
	TypeValidationRule ComponentType = "ValidationRule"
	TypeWorkflowRule   ComponentType = "WorkflowRule"
	TypeFlow           ComponentType = "Flow"
	TypeApexTrigger    ComponentType = "ApexTrigger"
)

// ComponentTypes lists all component kinds in display order.
var ComponentTypes = []ComponentType{
	TypeValidationRule,
	TypeWorkflowRule,
	TypeFlow,
	TypeApexTrigger,
}

// Valid reports whether t is one of the four known kinds.
func (t ComponentType) Valid() bool {
	switch t {
	case TypeValidationRule, TypeWorkflowRule, TypeFlow, TypeApexTrigger:
		return true
	}
	return false
}

// Component represents one automation artifact (validation rule, workflow
// rule, flow, or trigger) tracked for activation state. The active state is
// only mutated through Toggle/SetActive/Rollback/Commit so that Modified
// always equals IsActive != OriginalIsActive.
type Component struct {
	Name     string
	FullName string
	Type     ComponentType
	RecordID string

	// Metadata holds the kind-specific payload needed at deploy time
	// (trigger body + api version, flow definition id + version number).
	Metadata map[string]interface{}

	isActive         bool
	originalIsActive bool
}

// NewComponent creates a component with its baseline set to the fetched
// active state, so a fresh component is never modified.
func NewComponent(name, fullName string, t ComponentType, recordID string, active bool, metadata map[string]interface{}) *Component {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &Component{
		Name:             name,
		FullName:         fullName,
		Type:             t,
		RecordID:         recordID,
		Metadata:         metadata,
		isActive:         active,
		originalIsActive: active,
	}
}

// IsActive returns the current desired active state.
func (c *Component) IsActive() bool { return c.isActive }

// OriginalIsActive returns the baseline state as last committed or fetched.
func (c *Component) OriginalIsActive() bool { return c.originalIsActive }

// Modified reports whether the current state differs from the baseline.
func (c *Component) Modified() bool { return c.isActive != c.originalIsActive }

// Toggle flips the active state.
func (c *Component) Toggle() { c.isActive = !c.isActive }

// SetActive sets a specific active state.
func (c *Component) SetActive(active bool) { c.isActive = active }

// Rollback reverts to the baseline state.
func (c *Component) Rollback() { c.isActive = c.originalIsActive }

// Commit advances the baseline to the current state after a successful
// deploy of this component.
func (c *Component) Commit() { c.originalIsActive = c.isActive }

// MetaString returns a string value from the metadata payload, or "".
func (c *Component) MetaString(key string) string {
	if v, ok := c.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// MarshalJSON exposes the derived state alongside the static fields.
func (c *Component) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name             string        `json:"name"`
		FullName         string        `json:"full_name"`
		Type             ComponentType `json:"type"`
		RecordID         string        `json:"record_id"`
		IsActive         bool          `json:"is_active"`
		OriginalIsActive bool          `json:"original_is_active"`
		Modified         bool          `json:"modified"`
	}{
		Name:             c.Name,
		FullName:         c.FullName,
		Type:             c.Type,
		RecordID:         c.RecordID,
		IsActive:         c.isActive,
		OriginalIsActive: c.originalIsActive,
		Modified:         c.Modified(),
	})
}
