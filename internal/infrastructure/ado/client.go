// Package ado implements the Azure DevOps REST client used to inventory
// an organization. It speaks api-version 7.1 with PAT basic auth and
// follows the continuation-token pagination convention.
package ado

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
)

const apiVersion = "7.1"

// ErrAuthFailed means Azure DevOps redirected to its login page instead
// of serving the API, the typical symptom of an expired or revoked PAT.
var ErrAuthFailed = errors.New("authentication failed: verify the PAT is valid and has not expired")

// statusError reports a non-2xx response. Collectors inspect the code
// to tell "feature not enabled" apart from real failures.
type statusError struct {
	code int
	path string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.code, e.path)
}

// Client is an Azure DevOps REST API client bound to one organization.
type Client struct {
	baseURL     string
	authHeader  string
	httpClient  *http.Client
	retryConfig retry.Config
}

// Compile-time check that Client implements the collector contract
var _ assessment.Collector = (*Client)(nil)

// New creates a client for the given organization URL and PAT.
func New(organizationURL, pat string) *Client {
	return &Client{
		baseURL: strings.TrimRight(organizationURL, "/"),
		// ADO expects Basic auth with an empty username and the PAT as password.
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+pat)),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Auth failures surface as redirects to the login page;
			// following them would hide the failure behind an HTML 200.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  100 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// apiURL builds an _apis URL, project-scoped when project is non-empty.
func (c *Client) apiURL(project, path string) string {
	base := c.baseURL + "/_apis"
	if project != "" {
		base = c.baseURL + "/" + url.PathEscape(project) + "/_apis"
	}
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return base + "/" + path + separator + "api-version=" + apiVersion
}

func (c *Client) get(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, rawURL string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther:
		return ErrAuthFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, path: req.URL.Path}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getAll pages through a value-list endpoint, accumulating every item.
// The whole listing retries as a unit; individual pages are not safe to
// resume after an error because the continuation token may be stale.
func getAll[T any](ctx context.Context, c *Client, project, path string) ([]T, error) {
	retryer := retry.New[[]T](c.retryConfig)

	return retryer.Do(ctx, func(ctx context.Context) ([]T, error) {
		var items []T
		token := ""
		for {
			pageURL := c.apiURL(project, path)
			if token != "" {
				pageURL += "&continuationToken=" + url.QueryEscape(token)
			}

			var page struct {
				Value             []T    `json:"value"`
				ContinuationToken string `json:"continuationToken"`
			}
			if err := c.get(ctx, pageURL, &page); err != nil {
				return nil, err
			}

			items = append(items, page.Value...)
			if page.ContinuationToken == "" {
				return items, nil
			}
			token = page.ContinuationToken
		}
	})
}
