package iiif

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client fetches image metadata from a IIIF image server (e.g. Cantaloupe).
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a new image server client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Dimensions fetches the pixel width and height of an image. The image is
// identified by its file URL, percent-encoded into the IIIF identifier
// slot; path escaping keeps slashes as %2F and spaces as %20, never "+".
// The width/height keys are the same in Image API 2.x and 3.x.
func (c *Client) Dimensions(ctx context.Context, imageURL string) (int, int, error) {
	endpoint := c.BaseURL + "/" + url.PathEscape(imageURL) + "/info.json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch image info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, 0, fmt.Errorf("image server returned status %d: %s", resp.StatusCode, string(body))
	}

	var info struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return 0, 0, fmt.Errorf("failed to decode image info: %w", err)
	}

	if info.Width <= 0 || info.Height <= 0 {
		return 0, 0, fmt.Errorf("image server reported no dimensions for %s", imageURL)
	}
	return info.Width, info.Height, nil
}
