package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matchscope/matchscope/pkg/detect"
	"github.com/matchscope/matchscope/pkg/whttp"
)

// WebhookChannel POSTs each change as JSON to a configured endpoint.
type WebhookChannel struct {
	url          string
	client       *http.Client
	stakeholders []detect.Stakeholder
}

// NewWebhookChannel creates a webhook channel for the given URL.
func NewWebhookChannel(url string, stakeholders []detect.Stakeholder) *WebhookChannel {
	if len(stakeholders) == 0 {
		stakeholders = []detect.Stakeholder{detect.StakeholderAll}
	}
	return &WebhookChannel{
		url:          url,
		client:       &http.Client{Timeout: 10 * time.Second},
		stakeholders: stakeholders,
	}
}

func (c *WebhookChannel) Name() string { return "webhook" }

func (c *WebhookChannel) Stakeholders() []detect.Stakeholder { return c.stakeholders }

func (c *WebhookChannel) Send(ctx context.Context, change detect.Change) error {
	payload, err := json.Marshal(struct {
		Text   string        `json:"text"`
		Change detect.Change `json:"change"`
	}{
		Text:   RenderText(change),
		Change: change,
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, whttp.ErrorSnippet(string(body)))
	}
	return nil
}
