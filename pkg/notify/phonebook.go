package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/whttp"
)

// PhonebookClient triggers the contact/calendar sync service after cycles
// that touched referee assignments.
type PhonebookClient struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewPhonebookClient creates a client for the phonebook sync service.
func NewPhonebookClient(baseURL string) *PhonebookClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil
	return &PhonebookClient{baseURL: baseURL, http: rc}
}

// SyncContacts asks the phonebook service to re-sync referee contacts.
func (c *PhonebookClient) SyncContacts(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sync", nil)
	if err != nil {
		return fmt.Errorf("failed to create sync request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("phonebook sync request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("phonebook service returned status %d: %s", resp.StatusCode, whttp.ErrorSnippet(string(body)))
	}

	utils.Log.Info("Phonebook contact sync triggered")
	return nil
}
