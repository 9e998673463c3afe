package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/match"
	"github.com/matchscope/matchscope/pkg/whttp"
)

// AvatarClient talks to the avatar-generation service.
type AvatarClient struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewAvatarClient creates a client for the avatar service at baseURL.
func NewAvatarClient(baseURL string) *AvatarClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil
	return &AvatarClient{baseURL: baseURL, http: rc}
}

// CreateAvatar asks the avatar service to render a group avatar for the two
// clubs of a match and returns the PNG bytes.
func (c *AvatarClient) CreateAvatar(m match.Match) ([]byte, error) {
	if !m.HomeClubID.IsSet() || !m.AwayClubID.IsSet() {
		return nil, fmt.Errorf("missing club IDs for avatar creation")
	}

	payload, err := json.Marshal(map[string]string{
		"team1_id": m.HomeClubID.String(),
		"team2_id": m.AwayClubID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode avatar request: %w", err)
	}

	utils.Log.Debugf("Creating avatar for %s vs %s", m.HomeClubID, m.AwayClubID)

	req, err := retryablehttp.NewRequest(http.MethodPost, c.baseURL+"/create_avatar", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create avatar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("avatar service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("avatar service returned status %d: %s", resp.StatusCode, whttp.ErrorSnippet(string(body)))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/png") {
		return nil, fmt.Errorf("unexpected Content-Type from avatar service: %s (%s)", ct, whttp.ErrorSnippet(string(body)))
	}

	return body, nil
}
