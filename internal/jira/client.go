// Package jira checks whether ticket keys exist in a Jira instance.
package jira

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/models"
)

const issuePath = "/rest/api/2/issue/"

// Credentials authenticate tracker requests (HTTP Basic, username + API token)
type Credentials struct {
	Username string
	Token    string
}

// Client performs issue existence lookups. One request per lookup, no retries.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each lookup; zero means no deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the Jira instance at baseURL
func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		creds:   creds,
		http:    &http.Client{},
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IssueURL builds the lookup URL for key
func IssueURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + issuePath + key
}

// IssueExists asks the tracker for key and maps the answer to a LookupResult.
// Transport failures are reported as LookupFailed, never as errors.
func (c *Client) IssueExists(ctx context.Context, key string) models.LookupResult {
	url := IssueURL(c.baseURL, key)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.LookupFailed(fmt.Sprintf("Invalid request for %s: %v", url, err))
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warnw("jira request failed", "key", key, "url", url, "error", err)
		return models.LookupFailed(fmt.Sprintf("Request to %s failed: %v", url, err))
	}
	defer resp.Body.Close()
	// Body is not used; drain it so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debugw("jira request",
		"key", key,
		"url", url,
		"status", resp.StatusCode,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)

	return StatusResult(resp.StatusCode, key, url)
}

// StatusResult maps a tracker status code to a LookupResult
func StatusResult(status int, key, url string) models.LookupResult {
	switch {
	case status == http.StatusOK:
		return models.Exists
	case status == http.StatusNotFound:
		return models.NotFound
	case status == http.StatusUnauthorized:
		return models.LookupFailed(fmt.Sprintf(
			"Unauthorized (401): Failed to authenticate with Jira at %s. Check credentials.", url))
	case status == http.StatusForbidden:
		return models.LookupFailed(fmt.Sprintf(
			"Forbidden (403): Insufficient permissions for Jira issue %s at %s.", key, url))
	case status >= 500 && status <= 599:
		return models.LookupFailed(fmt.Sprintf(
			"Jira server error (%d %s) for issue %s at %s.", status, http.StatusText(status), key, url))
	default:
		return models.LookupFailed(fmt.Sprintf(
			"Jira returned unexpected status (%d %s) for issue %s at %s.", status, http.StatusText(status), key, url))
	}
}
