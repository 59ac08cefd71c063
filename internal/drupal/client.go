package drupal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aOelschlager/islandora-dimensions/internal/config"
	lru "github.com/hashicorp/golang-lru/v2"
)

const jsonAPIMime = "application/vnd.api+json"

// termCacheSize bounds the media-use term cache. Sites have a handful of
// media use terms, so this never fills in practice.
const termCacheSize = 128

// Client talks to a Drupal repository over JSON:API.
type Client struct {
	BaseURL    string
	httpClient *http.Client
	terms      *lru.Cache[string, string]
}

// NewClient creates a new repository client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	// Only errors on a non-positive size.
	terms, _ := lru.New[string, string](termCacheSize)
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		terms: terms,
	}
}

// NodeGet loads a node by numeric id or UUID.
func (c *Client) NodeGet(ctx context.Context, id, bundle, token string) (*Resource, error) {
	var doc *Document
	var err error

	if _, convErr := strconv.Atoi(id); convErr == nil {
		// Numeric ids aren't addressable in JSON:API; filter on the
		// internal nid instead.
		query := url.Values{}
		query.Set("filter[drupal_internal__nid]", id)
		doc, err = c.get(ctx, "/jsonapi/node/"+bundle, query, token)
	} else {
		doc, err = c.get(ctx, "/jsonapi/node/"+bundle+"/"+url.PathEscape(id), nil, token)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", id, err)
	}

	resources, err := doc.Resources()
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", id, err)
	}
	if len(resources) == 0 {
		return nil, fmt.Errorf("node %s not found", id)
	}
	return &resources[0], nil
}

// TermIDFromURI resolves a taxonomy term UUID from its external URI.
// Terms are immutable site configuration, so lookups are cached.
func (c *Client) TermIDFromURI(ctx context.Context, vocabulary, uri string) (string, error) {
	cacheKey := vocabulary + "|" + uri
	if id, ok := c.terms.Get(cacheKey); ok {
		return id, nil
	}

	query := url.Values{}
	query.Set("filter[field_external_uri.uri]", uri)
	doc, err := c.get(ctx, "/jsonapi/taxonomy_term/"+vocabulary, query, "")
	if err != nil {
		return "", fmt.Errorf("failed to look up term %s: %w", uri, err)
	}

	resources, err := doc.Resources()
	if err != nil {
		return "", fmt.Errorf("failed to look up term %s: %w", uri, err)
	}
	if len(resources) == 0 {
		return "", fmt.Errorf("no term found for URI %s in vocabulary %s", uri, vocabulary)
	}

	c.terms.Add(cacheKey, resources[0].ID)
	return resources[0].ID, nil
}

// MediaOf finds media of a bundle that reference the node with the given
// media use term. The source file is included in the response.
func (c *Client) MediaOf(ctx context.Context, bundle config.Bundle, nodeID, termID, token string) ([]Resource, []Resource, error) {
	query := url.Values{}
	query.Set("filter[field_media_of.id]", nodeID)
	query.Set("filter[field_media_use.id]", termID)
	query.Set("include", bundle.SourceField)

	doc, err := c.get(ctx, "/jsonapi/media/"+bundle.Name, query, token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find %s media for node %s: %w", bundle.Name, nodeID, err)
	}

	resources, err := doc.Resources()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find %s media for node %s: %w", bundle.Name, nodeID, err)
	}
	return resources, doc.Included, nil
}

// SourceFile resolves a media's source file from the included resources.
func (c *Client) SourceFile(media Resource, sourceField string, included []Resource) (*File, error) {
	rel, ok := media.Relationships[sourceField]
	if !ok {
		return nil, fmt.Errorf("media %s has no %s field", media.ID, sourceField)
	}
	id, ok := rel.First()
	if !ok {
		return nil, fmt.Errorf("media %s has no source file", media.ID)
	}

	for _, resource := range included {
		if resource.ID != id.ID {
			continue
		}

		file := &File{
			ID:       resource.ID,
			MimeType: resource.StringAttr("filemime"),
		}
		if uri, ok := resource.Attributes["uri"].(map[string]any); ok {
			file.URL, _ = uri["url"].(string)
		}
		if strings.HasPrefix(file.URL, "/") {
			file.URL = c.BaseURL + file.URL
		}
		return file, nil
	}

	return nil, fmt.Errorf("source file %s for media %s missing from response", id.ID, media.ID)
}

// UpdateDimensions writes width and height onto a media entity.
func (c *Client) UpdateDimensions(ctx context.Context, media Resource, widthField, heightField string, width, height int, token string) error {
	body := map[string]any{
		"data": map[string]any{
			"type": media.Type,
			"id":   media.ID,
			"attributes": map[string]any{
				widthField:  width,
				heightField: height,
			},
		},
	}

	status, err := c.patch(ctx, "/jsonapi/media/"+media.Bundle()+"/"+media.ID, body, token)
	if err != nil {
		return fmt.Errorf("failed to save media %s: %w", media.ID, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("saving media %s returned status %d", media.ID, status)
	}
	return nil
}

// CanUpdate asks the repository whether the token's principal may update
// the node. A PATCH that changes nothing answers the access question
// without touching the entity.
func (c *Client) CanUpdate(ctx context.Context, node *Resource, token string) (bool, error) {
	body := map[string]any{
		"data": map[string]any{
			"type": node.Type,
			"id":   node.ID,
		},
	}

	status, err := c.patch(ctx, "/jsonapi/node/"+node.Bundle()+"/"+node.ID, body, token)
	if err != nil {
		return false, fmt.Errorf("failed to check update access for node %s: %w", node.ID, err)
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusForbidden, http.StatusUnauthorized:
		return false, nil
	default:
		return false, fmt.Errorf("access check for node %s returned status %d", node.ID, status)
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, token string) (*Document, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", jsonAPIMime)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("repository returned status %d for %s: %s", resp.StatusCode, path, string(body))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return &doc, nil
}

func (c *Client) patch(ctx context.Context, path string, body any, token string) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", jsonAPIMime)
	req.Header.Set("Content-Type", jsonAPIMime)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to patch %s: %w", path, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
