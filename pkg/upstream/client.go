// Package upstream fetches the current match collection from the
// match-scheduling API.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/match"
	"github.com/matchscope/matchscope/pkg/whttp"
)

// Source yields the current match collection. The processor only ever sees
// this interface, so tests and alternative feeds can stand in for the HTTP
// client.
type Source interface {
	FetchMatches(ctx context.Context) ([]match.Match, error)
}

// Client fetches matches over HTTP with retries.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient creates an upstream client for the given base URL. The matches
// endpoint is GET {base}/matches.
func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil
	return &Client{baseURL: baseURL, http: rc}
}

// FetchMatches retrieves and decodes the current match list. It accepts the
// same payload shapes as the snapshot loader (bare array, matches wrapper,
// matchlista wrapper).
func (c *Client) FetchMatches(ctx context.Context) ([]match.Match, error) {
	url := c.baseURL + "/matches"

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	utils.Log.Debugf("Fetching matches from %s", url)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read match list response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("match source returned status %d: %s", resp.StatusCode, whttp.ErrorSnippet(string(body)))
	}

	matches, err := match.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode match list: %w", err)
	}

	utils.Log.Infof("Fetched %d matches from upstream", len(matches))
	return matches, nil
}
