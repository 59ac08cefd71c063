package drupal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Document is a JSON:API response envelope.
type Document struct {
	Data     json.RawMessage `json:"data"`
	Included []Resource      `json:"included,omitempty"`
}

// Resource is a single JSON:API resource object.
type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Relationship holds raw relationship data, which may be a single
// identifier or a list depending on the field's cardinality.
type Relationship struct {
	Data json.RawMessage `json:"data"`
}

// ResourceIdentifier references another resource by type and id.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// File is a media's source file, resolved from included resources.
type File struct {
	ID       string
	MimeType string
	URL      string
}

// Resources returns the document's primary data as a slice, whether the
// endpoint returned a single object or a collection.
func (d *Document) Resources() ([]Resource, error) {
	data := bytes.TrimSpace(d.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '[' {
		var resources []Resource
		if err := json.Unmarshal(data, &resources); err != nil {
			return nil, fmt.Errorf("failed to decode resource list: %w", err)
		}
		return resources, nil
	}

	var resource Resource
	if err := json.Unmarshal(data, &resource); err != nil {
		return nil, fmt.Errorf("failed to decode resource: %w", err)
	}
	return []Resource{resource}, nil
}

// First returns the first referenced identifier, handling both
// single-value and multi-value relationship fields.
func (r Relationship) First() (ResourceIdentifier, bool) {
	data := bytes.TrimSpace(r.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ResourceIdentifier{}, false
	}

	if data[0] == '[' {
		var ids []ResourceIdentifier
		if err := json.Unmarshal(data, &ids); err != nil || len(ids) == 0 {
			return ResourceIdentifier{}, false
		}
		return ids[0], true
	}

	var id ResourceIdentifier
	if err := json.Unmarshal(data, &id); err != nil || id.ID == "" {
		return ResourceIdentifier{}, false
	}
	return id, true
}

// Bundle returns the entity bundle, e.g. "image" for type "media--image".
func (r Resource) Bundle() string {
	if _, bundle, found := strings.Cut(r.Type, "--"); found {
		return bundle
	}
	return r.Type
}

// HasField reports whether the resource exposes the named field. Drupal
// serializes fields that exist but are empty as null, so key presence is
// what distinguishes "field not on this bundle" from "field unset".
func (r Resource) HasField(name string) bool {
	_, ok := r.Attributes[name]
	return ok
}

// StringAttr returns a string attribute, or "" when absent or not a string.
func (r Resource) StringAttr(name string) string {
	value, _ := r.Attributes[name].(string)
	return value
}
