package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"ozzus/check-jenkins-agent/internal/domain"
)

const (
	// ComputerAPIPath lists every agent known to the controller.
	ComputerAPIPath = "/manage/computer/api/json"

	defaultTimeout = 10 * time.Second
	maxBodySize    = 16 << 20
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client executes requests against the Jenkins management API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
}

// NewClient constructs a controller client. Credentials are optional; without
// them requests are sent anonymously.
func NewClient(baseURL, username, password string, timeout time.Duration) (*Client, error) {
	normalizedURL, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: normalizedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		username: username,
		password: password,
	}, nil
}

// WithHTTPClient overrides the default http.Client. Primarily useful for testing.
func (c *Client) WithHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

// BaseURL returns the normalised controller URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchRoster downloads and decodes the controller's computer list.
// Every failure is returned as a *FetchError.
func (c *Client) FetchRoster(ctx context.Context) (*domain.Roster, error) {
	req, err := c.newRequest(ctx, http.MethodGet, ComputerAPIPath, nil)
	if err != nil {
		return nil, c.fetchError(ErrTransport, fmt.Errorf("create roster request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, c.fetchError(ErrTransport, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, c.fetchError(ErrUnauthorized, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.fetchError(ErrTransport, fmt.Errorf("read response: %w", err))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, c.fetchError(ErrEmptyResponse, fmt.Errorf("status %d with empty body", resp.StatusCode))
	}

	var roster domain.Roster
	if err := json.Unmarshal(body, &roster); err != nil {
		return nil, c.fetchError(ErrMalformedJSON, fmt.Errorf("decode response: %w", err))
	}

	return &roster, nil
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("controller base URL is required")
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid controller base URL: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid controller base URL: %s", raw)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return strings.TrimSuffix(parsed.String(), "/"), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return req, nil
}

func (c *Client) fetchError(kind, err error) *FetchError {
	return &FetchError{
		URL:  c.baseURL + ComputerAPIPath,
		Kind: kind,
		Err:  err,
	}
}
