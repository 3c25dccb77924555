// Package backend relays requests to the external services that do the heavy
// lifting: connection fetching, cold-email generation, skill-class lookup,
// resume annotation and the profile directory.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/types"
)

// DefaultTimeout bounds a single upstream call. Calls are never retried.
const DefaultTimeout = 2 * time.Minute

// Upstream paths, relative to the configured base URLs.
const (
	PathFetchConnections = "/connection/fetchConnections"
	PathColdEmail        = "/gemini/coldEmail"
	PathLookupClasses    = "/Gemini/lookupSkillClasses"
	PathAnnotate         = "/annotation/annotate"
	PathSearchByName     = "/api/database/searchByName"
	PathSearchByIndustry = "/api/database/searchByIndustry"
)

// Error describes a failed upstream call. Status is zero when the request
// never produced a response.
type Error struct {
	URL     string
	Status  int
	Body    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("backend error for %s: %s: %v", e.URL, e.Message, e.Cause)
	case e.Status != 0:
		return fmt.Sprintf("backend error for %s: HTTP status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("backend error for %s: %s", e.URL, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Transport reports whether the call failed before any response arrived.
func (e *Error) Transport() bool {
	return e.Status == 0
}

// Options configures a Client.
type Options struct {
	// ServiceURL is the base of the connection, Gemini and annotation services.
	ServiceURL string
	// DirectoryURL is the base of the profile directory API.
	DirectoryURL string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Response is a successful upstream reply.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Client talks to the upstream services.
type Client struct {
	serviceURL   string
	directoryURL string
	http         *http.Client
	logger       *zap.Logger
}

// New creates a Client. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		serviceURL:   strings.TrimRight(opts.ServiceURL, "/"),
		directoryURL: strings.TrimRight(opts.DirectoryURL, "/"),
		http:         httpClient,
		logger:       logger.Named("backend"),
	}
}

// HasService reports whether a service base URL is configured.
func (c *Client) HasService() bool {
	return c.serviceURL != ""
}

// ServiceURL returns the full URL for a service path.
func (c *Client) ServiceURL(path string) string {
	return c.serviceURL + path
}

// do sends one request and reads the whole reply. Non-2xx replies are
// returned as *Error carrying the upstream status and body.
func (c *Client) do(ctx context.Context, method, target, contentType string, body io.Reader) (*Response, error) {
	resp, err := c.open(ctx, method, target, contentType, body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: target, Message: "failed to read response body", Cause: err}
	}
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// open sends one request and returns the live response. The caller owns the body.
func (c *Client) open(ctx context.Context, method, target, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{URL: target, Message: "failed to create request", Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("upstream request failed", zap.String("url", target), zap.Error(err))
		return nil, &Error{URL: target, Message: "HTTP request failed", Cause: err}
	}

	c.logger.Debug("upstream response",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		data, _ := io.ReadAll(resp.Body)
		c.logger.Warn("upstream error status",
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", preview(data)),
		)
		return nil, &Error{URL: target, Status: resp.StatusCode, Body: string(data)}
	}
	return resp, nil
}

func preview(b []byte) []byte {
	const limit = 512
	if len(b) > limit {
		return b[:limit]
	}
	return b
}

// SearchProfiles queries the profile directory.
func (c *Client) SearchProfiles(ctx context.Context, field types.SearchField, query string) ([]types.Profile, error) {
	path := PathSearchByName
	if field == types.SearchByIndustry {
		path = PathSearchByIndustry
	}
	target := c.directoryURL + path + "?query=" + url.QueryEscape(query)

	resp, err := c.do(ctx, http.MethodGet, target, "", nil)
	if err != nil {
		return nil, err
	}

	var profiles []types.Profile
	if err := json.Unmarshal(resp.Body, &profiles); err != nil {
		return nil, &Error{URL: target, Message: "invalid profile list", Cause: err}
	}
	if profiles == nil {
		profiles = []types.Profile{}
	}
	return profiles, nil
}

// LookupSkillClasses asks the service for classes matching skills at a
// university. The returned body has any markdown code fence removed.
func (c *Client) LookupSkillClasses(ctx context.Context, university string, skills []string) ([]byte, error) {
	payload, err := json.Marshal(types.SkillClassRequest{University: university, Skills: skills})
	if err != nil {
		return nil, fmt.Errorf("failed to encode lookup request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.ServiceURL(PathLookupClasses), "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return []byte(StripJSONFence(string(resp.Body))), nil
}
