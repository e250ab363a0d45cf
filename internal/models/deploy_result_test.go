package models

import (
	"fmt"
	"strings"
	"testing"
)

func TestNoChangesResult(t *testing.T) {
	r := NoChangesResult()
	if !r.Success {
		t.Error("no-op result should be a success")
	}
	if r.Message != "No changes to deploy" {
		t.Errorf("Message = %q", r.Message)
	}
	if r.Attempted != 0 || r.Succeeded != 0 {
		t.Error("no-op result should have zero counts")
	}
}

func TestSummarize_AllSucceeded(t *testing.T) {
	r := DeployResult{Attempted: 3, Succeeded: 3}
	r.Summarize("ValidationRule")
	if !r.Success {
		t.Error("result with no failures should be a success")
	}
	if r.Message != "Successfully deployed 3 ValidationRule(s)" {
		t.Errorf("Message = %q", r.Message)
	}
}

func TestSummarize_PartialFailure(t *testing.T) {
	r := DeployResult{Attempted: 3, Succeeded: 2}
	r.Failed = append(r.Failed, ComponentFailure{Name: "Account - Rule", Reason: "HTTP 400"})
	r.Summarize("WorkflowRule")

	if r.Success {
		t.Error("result with failures should not be a success")
	}
	if !strings.Contains(r.Message, "Deployed 2 WorkflowRule(s), 1 failed") {
		t.Errorf("Message = %q", r.Message)
	}
	if !strings.Contains(r.Message, "Account - Rule: HTTP 400") {
		t.Errorf("Message should name the failed component, got %q", r.Message)
	}
}

func TestSummarize_TruncatesFailureList(t *testing.T) {
	r := DeployResult{Attempted: 25, Succeeded: 0}
	for i := 0; i < 25; i++ {
		r.Failed = append(r.Failed, ComponentFailure{
			Name:   fmt.Sprintf("Rule%02d", i),
			Reason: "HTTP 400",
		})
	}
	r.Summarize("ValidationRule")

	if !strings.Contains(r.Message, "... and 15 more") {
		t.Errorf("Message should truncate with a +N suffix, got %q", r.Message)
	}
	if strings.Contains(r.Message, "Rule10:") {
		t.Errorf("Message should only name the first 10 failures, got %q", r.Message)
	}
	if !strings.Contains(r.Message, "Rule09:") {
		t.Errorf("Message should name the tenth failure, got %q", r.Message)
	}
}
