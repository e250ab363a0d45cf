package models

import (
	"fmt"
	"strings"
)

// maxNamedFailures bounds how many failed component names appear in a
// deploy result message before the "+N more" suffix.
const maxNamedFailures = 10

// ComponentFailure names one component that failed to deploy and why.
type ComponentFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// DeployResult is the outcome of one deploy call. Partial failure is a
// first-class shape: Success is false when any component failed, but
// Succeeded still counts the components whose baseline was committed.
type DeployResult struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Attempted int                `json:"attempted"`
	Succeeded int                `json:"succeeded"`
	Failed    []ComponentFailure `json:"failed,omitempty"`
}

// NoChangesResult is the explicit no-op outcome for an empty deploy input,
// distinguishable from "all succeeded".
func NoChangesResult() DeployResult {
	return DeployResult{Success: true, Message: "No changes to deploy"}
}

// Summarize fills in Success and Message from the counts and failure list.
func (r *DeployResult) Summarize(label string) {
	r.Success = len(r.Failed) == 0
	if r.Success {
		r.Message = fmt.Sprintf("Successfully deployed %d %s(s)", r.Succeeded, label)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Deployed %d %s(s), %d failed", r.Succeeded, label, len(r.Failed))
	b.WriteString("\n\nFailed components:")
	for i, f := range r.Failed {
		if i == maxNamedFailures {
			fmt.Fprintf(&b, "\n... and %d more", len(r.Failed)-maxNamedFailures)
			break
		}
		fmt.Fprintf(&b, "\n- %s: %s", f.Name, f.Reason)
	}
	r.Message = b.String()
}
