// Package optimizer is a thin HTTP client for the external
// feed-optimizer service. When the service is not configured the
// application falls back to the canned mixes in internal/feed.
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"farmstead/internal/feed"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Config describes how the optimizer client should be initialised.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the remote feed-optimizer service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Request is the payload forwarded to the optimizer service. Candidate
// ingredients are passed along for services that honour them.
type Request struct {
	TargetNutrition string            `json:"target_nutrition"`
	TargetGroup     string            `json:"target_group,omitempty"`
	BatchSizeKg     float64           `json:"batch_size_kg,omitempty"`
	Ingredients     []feed.Ingredient `json:"ingredients,omitempty"`
}

// Result is the mix returned by the optimizer service.
type Result struct {
	TargetNutrition string            `json:"target_nutrition"`
	Ingredients     []feed.Ingredient `json:"ingredients"`
	Nutrition       feed.Totals       `json:"nutrition"`
	TotalCost       float64           `json:"total_cost"`
	Message         string            `json:"message,omitempty"`
}

// StatusError reports a non-success response from the optimizer
// service, preserving the downstream status and message for callers.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("optimizer: service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("optimizer: service returned status %d: %s", e.StatusCode, e.Message)
}

// NewClient builds a Client for the given service endpoint.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("optimizer: base URL must not be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Optimize posts the request to the service and decodes the resulting
// mix. Downstream failures surface as *StatusError.
func (c *Client) Optimize(ctx context.Context, request Request) (Result, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return Result{}, fmt.Errorf("optimizer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/optimize", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("optimizer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("optimizer: call service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return Result{}, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("optimizer: decode response: %w", err)
	}

	return result, nil
}

func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
