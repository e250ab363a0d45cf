package salesforce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/lromao/salesforce-automation-workbench/internal/models"
)

// Client is a bearer-authenticated REST client for one Salesforce org.
// Paths are relative to the instance base URL; Tooling API helpers build
// the /services/data/v{version}/tooling/ prefix.
type Client struct {
	baseURL     string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
}

// NewClient creates a Client from an authenticated Session.
func NewClient(s *models.Session) *Client {
	return &Client{
		baseURL:     s.BaseURL(),
		accessToken: s.AccessToken,
		apiVersion:  s.APIVersion,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// queryResponse is the standard Salesforce query response envelope.
type queryResponse struct {
	TotalSize int      `json:"totalSize"`
	Done      bool     `json:"done"`
	Records   []Record `json:"records"`
}

// APIVersion returns the org API version this client speaks.
func (c *Client) APIVersion() string { return c.apiVersion }

// DataPath returns /services/data/v{version}/{resource}.
func (c *Client) DataPath(resource string) string {
	return fmt.Sprintf("/services/data/v%s/%s", c.apiVersion, resource)
}

// ToolingPath returns /services/data/v{version}/tooling/{resource}.
func (c *Client) ToolingPath(resource string) string {
	return c.DataPath("tooling/" + resource)
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Get performs an authenticated GET request and returns the response body.
func (c *Client) Get(path string, params url.Values) ([]byte, error) {
	u := path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := c.newRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("GET %s: HTTP %d: %s", path, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// GetJSON performs an authenticated GET and unmarshals the response into dest.
func (c *Client) GetJSON(path string, params url.Values, dest interface{}) error {
	body, err := c.Get(path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

// Post performs an authenticated POST request with a JSON body.
func (c *Client) Post(path string, payload interface{}) ([]byte, int, error) {
	return c.send("POST", path, payload)
}

// Patch performs an authenticated PATCH request with a JSON body.
func (c *Client) Patch(path string, payload interface{}) ([]byte, int, error) {
	return c.send("PATCH", path, payload)
}

func (c *Client) send(method, path string, payload interface{}) ([]byte, int, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := c.newRequest(method, path, bodyReader)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, resp.StatusCode, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, truncate(string(body), 200))
	}
	return body, resp.StatusCode, nil
}

// Delete performs an authenticated DELETE request.
func (c *Client) Delete(path string) error {
	req, err := c.newRequest("DELETE", path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("DELETE %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == 204, resp.StatusCode == 202:
		return nil
	case resp.StatusCode == 404:
		return nil // already gone
	default:
		return fmt.Errorf("DELETE %s: HTTP %d", path, resp.StatusCode)
	}
}

// ToolingQuery executes a SOQL query against the Tooling API.
func (c *Client) ToolingQuery(soql string) ([]Record, error) {
	return c.runQuery(c.ToolingPath("query/"), soql)
}

// Query executes a SOQL query against the regular data API.
func (c *Client) Query(soql string) ([]Record, error) {
	return c.runQuery(c.DataPath("query/"), soql)
}

func (c *Client) runQuery(path, soql string) ([]Record, error) {
	params := url.Values{"q": {soql}}
	var result queryResponse
	if err := c.GetJSON(path, params, &result); err != nil {
		return nil, err
	}
	return result.Records, nil
}

// DescribeGlobal returns the API names of all queryable, non-hidden
// SObjects in the org, sorted alphabetically.
func (c *Client) DescribeGlobal() ([]string, error) {
	var resp struct {
		SObjects []struct {
			Name                string `json:"name"`
			Queryable           bool   `json:"queryable"`
			DeprecatedAndHidden bool   `json:"deprecatedAndHidden"`
		} `json:"sobjects"`
	}
	if err := c.GetJSON(c.DataPath("sobjects/"), nil, &resp); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.SObjects))
	for _, o := range resp.SObjects {
		if o.Queryable && !o.DeprecatedAndHidden {
			names = append(names, o.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Ping verifies the session is live by hitting the limits endpoint.
func (c *Client) Ping() error {
	_, err := c.Get(c.DataPath("limits/"), nil)
	return err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
