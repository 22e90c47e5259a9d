// Package execution talks to the JDoodle remote code runner.
package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/domain"
)

// DefaultEndpoint is JDoodle's execute API.
const DefaultEndpoint = "https://api.jdoodle.com/v1/execute"

const maxResponseBytes = 1 << 20

// APIError is a non-2xx reply from the runner. Body is the upstream payload, kept as is so
// it can be shown to the user.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jdoodle: status %d: %s", e.StatusCode, string(e.Body))
}

// Client executes programs through JDoodle. It is safe for concurrent use.
type Client struct {
	endpoint     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClient creates a client for the given credentials. An empty endpoint selects
// DefaultEndpoint.
func NewClient(endpoint, clientID, clientSecret string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:     endpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type executeRequest struct {
	Script       string `json:"script"`
	Language     string `json:"language"`
	VersionIndex string `json:"versionIndex"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// Execute posts the program and returns the runner's reply.
func (c *Client) Execute(ctx context.Context, code, language, versionIndex string) (*domain.ExecutionResult, error) {
	body, err := json.Marshal(executeRequest{
		Script:       code,
		Language:     language,
		VersionIndex: versionIndex,
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call runner: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if !json.Valid(raw) {
			raw, _ = json.Marshal(string(raw))
		}
		logrus.WithFields(logrus.Fields{"status": resp.StatusCode, "language": language}).Warn("Runner rejected execution")
		return nil, &APIError{StatusCode: resp.StatusCode, Body: raw}
	}

	result := &domain.ExecutionResult{Raw: raw}
	if err := json.Unmarshal(raw, result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
