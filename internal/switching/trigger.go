package switching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lromao/salesforce-automation-workbench/internal/models"
	"github.com/lromao/salesforce-automation-workbench/internal/salesforce"
)

// DeployError is a trigger deployment failure. Transient failures
// (timeouts, transport errors) are worth retrying; terminal ones
// (compilation or validation errors reported by the org) are not.
type DeployError struct {
	Reason    string
	Transient bool
}

func (e *DeployError) Error() string { return e.Reason }

// IsTransient reports whether err is a retryable deployment failure.
func IsTransient(err error) bool {
	var de *DeployError
	return errors.As(err, &de) && de.Transient
}

// classify wraps a client error from a pipeline step. Transport-level
// failures are transient; HTTP-status failures carry an org-side reason
// and are terminal.
func classify(step string, err error) *DeployError {
	var ue *url.Error
	transient := errors.As(err, &ue) || errors.Is(err, context.DeadlineExceeded)
	return &DeployError{Reason: fmt.Sprintf("%s: %v", step, err), Transient: transient}
}

// TriggerDeployer implements the asynchronous container protocol required
// for Apex trigger changes: trigger code must pass compilation (and, in
// production orgs, the test suite) before its status can change, so a
// simple field patch is not possible.
type TriggerDeployer struct {
	client       *salesforce.Client
	pollInterval time.Duration
	log          func(string)
}

// NewTriggerDeployer creates a deployer polling at the given interval.
func NewTriggerDeployer(client *salesforce.Client, pollInterval time.Duration, logger func(string)) *TriggerDeployer {
	if logger == nil {
		logger = func(string) {}
	}
	return &TriggerDeployer{client: client, pollInterval: pollInterval, log: logger}
}

// Deploy runs the full pipeline for one trigger: create container, create
// trigger member, request deployment, poll to a terminal state, delete the
// container. The container is deleted on every path after it exists;
// cleanup failures are logged, never escalated.
func (d *TriggerDeployer) Deploy(triggerID, body string, apiVersion interface{}, active bool, timeout time.Duration) error {
	containerID, err := d.createContainer()
	if err != nil {
		// No container, nothing to clean up.
		return err
	}
	defer d.cleanupContainer(containerID)

	if err := d.createTriggerMember(containerID, triggerID, body, apiVersion, active); err != nil {
		return err
	}

	requestID, err := d.requestDeploy(containerID)
	if err != nil {
		return err
	}

	return d.monitor(requestID, timeout)
}

// createContainer allocates a short-lived server-side metadata container.
func (d *TriggerDeployer) createContainer() (string, error) {
	payload := map[string]interface{}{
		"Name": fmt.Sprintf("TriggerContainer_%d", time.Now().Unix()),
	}
	body, status, err := d.client.Post(d.client.ToolingPath("sobjects/MetadataContainer"), payload)
	if err != nil {
		return "", classify("creating metadata container", err)
	}
	if status != 201 {
		return "", &DeployError{Reason: fmt.Sprintf("creating metadata container: HTTP %d", status)}
	}
	id, err := createdID(body)
	if err != nil {
		return "", &DeployError{Reason: fmt.Sprintf("creating metadata container: %v", err)}
	}
	return id, nil
}

// createTriggerMember stages the trigger source plus the desired status in
// the container.
func (d *TriggerDeployer) createTriggerMember(containerID, triggerID, body string, apiVersion interface{}, active bool) error {
	status := "Inactive"
	if active {
		status = "Active"
	}
	payload := map[string]interface{}{
		"MetadataContainerId": containerID,
		"ContentEntityId":     triggerID,
		"Body":                body,
		"Metadata": map[string]interface{}{
			"status":     status,
			"apiVersion": apiVersion,
		},
	}
	_, code, err := d.client.Post(d.client.ToolingPath("sobjects/ApexTriggerMember"), payload)
	if err != nil {
		return classify("creating trigger member", err)
	}
	if code != 201 {
		return &DeployError{Reason: fmt.Sprintf("creating trigger member: HTTP %d", code)}
	}
	return nil
}

// requestDeploy submits the container for asynchronous deployment and
// returns the request id to poll.
func (d *TriggerDeployer) requestDeploy(containerID string) (string, error) {
	payload := map[string]interface{}{
		"MetadataContainerId": containerID,
		"IsCheckOnly":         false,
	}
	body, status, err := d.client.Post(d.client.ToolingPath("sobjects/ContainerAsyncRequest"), payload)
	if err != nil {
		return "", classify("requesting deployment", err)
	}
	if status != 201 {
		return "", &DeployError{Reason: fmt.Sprintf("requesting deployment: HTTP %d", status)}
	}
	id, err := createdID(body)
	if err != nil {
		return "", &DeployError{Reason: fmt.Sprintf("requesting deployment: %v", err)}
	}
	return id, nil
}

// asyncRequestState is the polled ContainerAsyncRequest shape.
type asyncRequestState struct {
	State         string `json:"State"`
	ErrorMsg      string `json:"ErrorMsg"`
	DeployDetails struct {
		ComponentFailures []struct {
			Problem string `json:"problem"`
		} `json:"componentFailures"`
	} `json:"DeployDetails"`
}

// monitor polls the async request until it reaches a terminal state or
// the timeout elapses. Queued, Invalidated, and unknown states are treated
// as still pending.
func (d *TriggerDeployer) monitor(requestID string, timeout time.Duration) error {
	path := d.client.ToolingPath("sobjects/ContainerAsyncRequest/" + requestID)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		var req asyncRequestState
		if err := d.client.GetJSON(path, nil, &req); err != nil {
			return classify("checking deployment status", err)
		}

		switch req.State {
		case "Completed":
			return nil
		case "Failed":
			msg := req.ErrorMsg
			if msg == "" {
				msg = "unknown error"
			}
			return &DeployError{Reason: "deployment failed: " + msg}
		case "Error":
			problems := make([]string, 0, len(req.DeployDetails.ComponentFailures))
			for _, cf := range req.DeployDetails.ComponentFailures {
				problems = append(problems, cf.Problem)
			}
			return &DeployError{Reason: "compilation error: " + strings.Join(problems, "\n")}
		}
		// Queued, Invalidated, or anything unrecognized: keep polling.
		time.Sleep(d.pollInterval)
	}

	return &DeployError{
		Reason:    fmt.Sprintf("deployment timed out after %s", timeout),
		Transient: true,
	}
}

// cleanupContainer deletes the metadata container. The deployment outcome
// is independent of cleanup outcome, so failures are only logged.
func (d *TriggerDeployer) cleanupContainer(containerID string) {
	path := d.client.ToolingPath("sobjects/MetadataContainer/" + containerID)
	if err := d.client.Delete(path); err != nil {
		d.log(fmt.Sprintf("WARNING: failed to clean up container %s: %v", containerID, err))
	}
}

func createdID(body []byte) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", errors.New("response missing id")
	}
	return created.ID, nil
}

// deployTriggers runs the trigger pipeline strictly sequentially, one full
// create-member-deploy-poll-cleanup cycle per trigger, with a pause between
// triggers. Retries happen here at the caller level, not in the deployer.
func (m *Manager) deployTriggers(ctx context.Context, comps []*models.Component, runTests bool, logger func(string)) models.DeployResult {
	logger("Starting trigger deployment (this may take several minutes)")
	if runTests {
		logger("Note: all Apex tests will run for trigger deployments in production")
	}

	deployer := NewTriggerDeployer(m.client, m.cfg.PollInterval, logger)
	result := models.DeployResult{}

	for idx, c := range comps {
		if ctx.Err() != nil {
			break
		}
		logger(fmt.Sprintf("Deploying trigger %d/%d: %s", idx+1, len(comps), c.Name))
		result.Attempted++

		if err := m.deployTriggerWithRetry(deployer, c, logger); err != nil {
			result.Failed = append(result.Failed, models.ComponentFailure{Name: c.Name, Reason: err.Error()})
			logger(fmt.Sprintf("  FAIL %s: %v", c.Name, err))
		} else {
			c.Commit()
			result.Succeeded++
			logger(fmt.Sprintf("  OK %s", c.Name))
		}

		if idx < len(comps)-1 {
			sleepCtx(ctx, m.cfg.TriggerDelay)
		}
	}

	result.Summarize("trigger")
	if ctx.Err() != nil && result.Attempted < len(comps) {
		result.Message += fmt.Sprintf("\nCancelled with %d trigger(s) not attempted", len(comps)-result.Attempted)
	}
	return result
}

// deployTriggerWithRetry attempts one trigger up to MaxRetries times.
// Only transient failures are retried, with a wait that grows linearly
// with the attempt number; compilation and validation failures surface
// immediately.
func (m *Manager) deployTriggerWithRetry(deployer *TriggerDeployer, c *models.Component, logger func(string)) error {
	if c.RecordID == "" {
		return errors.New("component has no record id")
	}
	body := c.MetaString("body")
	apiVersion, hasVersion := c.Metadata["apiVersion"]
	if body == "" || !hasVersion || apiVersion == nil {
		return errors.New("missing trigger body or api version")
	}

	var lastErr error
	for attempt := 1; attempt <= m.cfg.MaxRetries; attempt++ {
		err := deployer.Deploy(c.RecordID, body, apiVersion, c.IsActive(), m.cfg.TriggerTimeout)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsTransient(err) {
			return err
		}
		if attempt < m.cfg.MaxRetries {
			wait := time.Duration(attempt) * m.cfg.RetryBackoff
			logger(fmt.Sprintf("  %v, retrying in %s", err, wait))
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", m.cfg.MaxRetries, lastErr)
}
