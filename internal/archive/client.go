// Package archive stores record text as files in the external file
// storage service, one folder per category under a configured root.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no file storage base URL is set.
var ErrNotConfigured = errors.New("file storage not configured")

// SavedFile describes a file after a successful archive write.
type SavedFile struct {
	FileID      string `json:"fileId"`
	FileName    string `json:"fileName"`
	WebViewLink string `json:"webViewLink"`
}

// Client is an HTTP client for the file storage service.
type Client struct {
	baseURL    string
	token      string
	folder     string
	httpClient *http.Client
	now        func() time.Time
}

// New creates an archive client rooted at folder. An empty baseURL yields
// a client whose calls all return ErrNotConfigured.
func New(baseURL, token, folder string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		folder:     folder,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

// SaveCategoryFile writes content into the category's folder under the
// configured root, deriving the filename from title and category.
func (c *Client) SaveCategoryFile(ctx context.Context, category, content, title string) (SavedFile, error) {
	if c.baseURL == "" {
		return SavedFile{}, ErrNotConfigured
	}

	body := struct {
		Folder  []string `json:"folder"`
		Name    string   `json:"name"`
		Content string   `json:"content"`
	}{
		Folder:  []string{c.folder, category},
		Name:    Filename(title, category, c.now()),
		Content: content,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return SavedFile{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", bytes.NewReader(payload))
	if err != nil {
		return SavedFile{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SavedFile{}, fmt.Errorf("saving file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return SavedFile{}, fmt.Errorf("file storage returned %d: %s", resp.StatusCode, string(raw))
	}

	var saved SavedFile
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return SavedFile{}, fmt.Errorf("decoding response: %w", err)
	}
	return saved, nil
}
