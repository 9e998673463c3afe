package assets

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/whttp"
)

// DriveClient uploads generated files through the drive upload service.
type DriveClient struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewDriveClient creates a client for the drive upload service at baseURL.
func NewDriveClient(baseURL string) *DriveClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = 60 * time.Second
	rc.Logger = nil
	return &DriveClient{baseURL: baseURL, http: rc}
}

// Upload sends one file to the given folder path and returns the resulting
// shared file URL.
func (c *DriveClient) Upload(fileName string, content []byte, folderPath, mimeType string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("failed to write upload payload: %w", err)
	}
	if err := w.WriteField("folder_path", folderPath); err != nil {
		return "", fmt.Errorf("failed to write folder field: %w", err)
	}
	if err := w.WriteField("mime_type", mimeType); err != nil {
		return "", fmt.Errorf("failed to write mime field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, c.baseURL+"/upload_file", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload service returned status %d: %s", resp.StatusCode, whttp.ErrorSnippet(string(body)))
	}

	result := gjson.ParseBytes(body)
	if result.Get("status").String() != "success" {
		return "", fmt.Errorf("upload failed: %s", result.Get("message").String())
	}

	fileURL := result.Get("file_url").String()
	utils.Log.Infof("Uploaded %s to %s (%s)", fileName, folderPath, fileURL)
	return fileURL, nil
}
