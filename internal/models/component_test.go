package models

import (
	"encoding/json"
	"testing"
)

func TestNewComponent_Baseline(t *testing.T) {
	tests := []struct {
		name   string
		active bool
	}{
		{"active", true},
		{"inactive", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewComponent("Account - Rule", "Account.Rule", TypeValidationRule, "01Q000", tc.active, nil)
			if c.Modified() {
				t.Error("fresh component should not be modified")
			}
			if c.IsActive() != tc.active {
				t.Errorf("IsActive() = %v, want %v", c.IsActive(), tc.active)
			}
			if c.IsActive() != c.OriginalIsActive() {
				t.Error("IsActive should equal OriginalIsActive after construction")
			}
		})
	}
}

func TestComponent_Toggle(t *testing.T) {
	c := NewComponent("Account - Rule", "Account.Rule", TypeValidationRule, "01Q000", true, nil)

	c.Toggle()
	if c.IsActive() {
		t.Error("IsActive() = true after toggle, want false")
	}
	if !c.Modified() {
		t.Error("component should be modified after one toggle")
	}

	c.Toggle()
	if !c.IsActive() {
		t.Error("IsActive() = false after second toggle, want true")
	}
	if c.Modified() {
		t.Error("component should not be modified after toggling back")
	}
}

func TestComponent_SetActive(t *testing.T) {
	c := NewComponent("Account - Rule", "Account.Rule", TypeWorkflowRule, "01Q000", false, nil)

	c.SetActive(false)
	if c.Modified() {
		t.Error("setting the same state should not mark modified")
	}

	c.SetActive(true)
	if !c.Modified() {
		t.Error("setting a different state should mark modified")
	}
}

func TestComponent_Rollback(t *testing.T) {
	c := NewComponent("Account - Rule", "Account.Rule", TypeFlow, "301000", true, nil)
	c.Toggle()
	c.Rollback()

	if !c.IsActive() {
		t.Error("rollback should restore the baseline state")
	}
	if c.Modified() {
		t.Error("rollback should clear the dirty flag")
	}

	// Rolling back an unmodified component is a no-op.
	c.Rollback()
	if c.Modified() || !c.IsActive() {
		t.Error("second rollback should change nothing")
	}
}

func TestComponent_Commit(t *testing.T) {
	c := NewComponent("Account - Trg", "Trg", TypeApexTrigger, "01q000", true, nil)
	c.SetActive(false)
	c.Commit()

	if c.OriginalIsActive() {
		t.Error("commit should advance the baseline to the current state")
	}
	if c.Modified() {
		t.Error("component should not be modified after commit")
	}

	// A later rollback now returns to the committed state, not the
	// original fetched one.
	c.SetActive(true)
	c.Rollback()
	if c.IsActive() {
		t.Error("rollback after commit should restore the committed baseline")
	}
}

func TestComponentType_Valid(t *testing.T) {
	for _, ct := range ComponentTypes {
		if !ct.Valid() {
			t.Errorf("%s should be valid", ct)
		}
	}
	if ComponentType("ApexClass").Valid() {
		t.Error("ApexClass should not be a valid component type")
	}
	if ComponentType("").Valid() {
		t.Error("empty type should not be valid")
	}
}

func TestComponent_MarshalJSON(t *testing.T) {
	c := NewComponent("Account - Rule", "Account.Rule", TypeValidationRule, "01Q000", true, nil)
	c.Toggle()

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if out["is_active"] != false {
		t.Errorf("is_active = %v, want false", out["is_active"])
	}
	if out["original_is_active"] != true {
		t.Errorf("original_is_active = %v, want true", out["original_is_active"])
	}
	if out["modified"] != true {
		t.Errorf("modified = %v, want true", out["modified"])
	}
	if out["type"] != "ValidationRule" {
		t.Errorf("type = %v, want ValidationRule", out["type"])
	}
}

func TestComponent_MetaString(t *testing.T) {
	c := NewComponent("Trg", "Trg", TypeApexTrigger, "01q000", true, map[string]interface{}{
		"body":       "trigger Trg on Account (before insert) {}",
		"apiVersion": 62.0,
	})
	if got := c.MetaString("body"); got != "trigger Trg on Account (before insert) {}" {
		t.Errorf("MetaString(body) = %q", got)
	}
	if got := c.MetaString("apiVersion"); got != "" {
		t.Errorf("MetaString on non-string value = %q, want empty", got)
	}
	if got := c.MetaString("missing"); got != "" {
		t.Errorf("MetaString on missing key = %q, want empty", got)
	}
}
