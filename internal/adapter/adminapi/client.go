// Package adminapi runs SQL on the hosted database through its management
// HTTP API. It is used by maintenance commands, never by the ingestion path.
package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrEmptyToken means the token file held no usable token.
var ErrEmptyToken = errors.New("admin api token is empty")

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("admin api error: status %d: %s", e.Status, e.Body)
}

// Client posts queries to /v1/projects/{ref}/database/query.
type Client struct {
	token      string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for one project.
func NewClient(baseURL, projectRef, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token:    token,
		endpoint: strings.TrimRight(baseURL, "/") + "/v1/projects/" + url.PathEscape(projectRef) + "/database/query",
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Query runs sql and returns the result rows.
func (c *Client) Query(ctx context.Context, sql string) ([]map[string]any, error) {
	body, err := json.Marshal(queryRequest{Query: sql})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("admin api request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("admin api query", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}

// Exec runs a statement whose rows are not needed. The API does not report
// affected row counts, so the count is always -1.
func (c *Client) Exec(ctx context.Context, statement string) (int64, error) {
	if _, err := c.Query(ctx, statement); err != nil {
		return 0, err
	}
	return -1, nil
}

// ReadToken reads a token file holding either the raw token or KEY=token.
// Everything after the first '=' is the token.
func ReadToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return ParseToken(string(b))
}

// ParseToken extracts the token from the contents of a token file.
func ParseToken(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, after, ok := strings.Cut(s, "="); ok {
		s = strings.TrimSpace(after)
	}
	if s == "" {
		return "", ErrEmptyToken
	}
	return s, nil
}

type queryRequest struct {
	Query string `json:"query"`
}
