package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"corpusview/internal/bundle"
	"corpusview/internal/domain"
	"corpusview/internal/ports"
)

// Client downloads a bundle published by the extraction pipeline.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

var _ ports.BundleSource = (*Client)(nil)

// NewClient creates a reusable HTTP client; timeout defaults to 30s.
func NewClient(endpoint, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: timeout},
	}
}

// Name identifies the source inside the registry.
func (c *Client) Name() string {
	return "http"
}

// Fetch GETs the bundle and runs it through the usual decode and validation.
func (c *Client) Fetch(ctx context.Context) (domain.Bundle, error) {
	if c.endpoint == "" {
		return domain.Bundle{}, fmt.Errorf("bundle url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "corpusview/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return domain.Bundle{}, fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return domain.Bundle{}, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	b, err := bundle.Decode(resp.Body)
	if err != nil {
		_ = resp.Body.Close()
		return domain.Bundle{}, err
	}

	if err := resp.Body.Close(); err != nil {
		return domain.Bundle{}, fmt.Errorf("close response body: %w", err)
	}

	return b, nil
}
