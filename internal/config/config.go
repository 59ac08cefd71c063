package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Env holds service configuration read from the environment.
type Env struct {
	DrupalBaseURL string        `env:"DRUPAL_BASE_URL" envDefault:"http://localhost:8080"`
	IIIFBaseURL   string        `env:"IIIF_BASE_URL" envDefault:"http://localhost:8182/iiif/2"`
	JWTSecret     string        `env:"JWT_SECRET"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
}

// LoadEnv parses service configuration from environment variables.
func LoadEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// MediaUse is a media classification looked up by its external term URI.
type MediaUse struct {
	Name    string `yaml:"name"`
	TermURI string `yaml:"term_uri"`
}

// Bundle is a media bundle to search, with the field holding its source file.
type Bundle struct {
	Name        string `yaml:"name"`
	SourceField string `yaml:"source_field"`
}

// Mapping describes which media to update and which fields to write.
// Everything here is site configuration: vocabularies, term URIs, and field
// names vary between Islandora installs.
type Mapping struct {
	Vocabulary       string     `yaml:"vocabulary"`
	NodeBundle       string     `yaml:"node_bundle"`
	MediaUses        []MediaUse `yaml:"media_uses"`
	Bundles          []Bundle   `yaml:"bundles"`
	WidthField       string     `yaml:"width_field"`
	HeightField      string     `yaml:"height_field"`
	AllowedMimeTypes []string   `yaml:"allowed_mime_types"`
}

// DefaultMapping returns the mapping for a stock Islandora install.
func DefaultMapping() Mapping {
	return Mapping{
		Vocabulary: "islandora_media_use",
		NodeBundle: "islandora_object",
		MediaUses: []MediaUse{
			{Name: "original_file", TermURI: "http://pcdm.org/use#OriginalFile"},
			{Name: "jp2", TermURI: "http://pcdm.org/use#ServiceFile"},
		},
		Bundles: []Bundle{
			{Name: "image", SourceField: "field_media_image"},
			{Name: "file", SourceField: "field_media_file"},
		},
		WidthField:  "field_width",
		HeightField: "field_height",
		AllowedMimeTypes: []string{
			"image/jp2",
			"image/jpeg",
			"image/png",
			"image/tiff",
		},
	}
}

// LoadMapping reads a mapping file, falling back to defaults for any
// unset values. An empty path returns the default mapping.
func LoadMapping(path string) (Mapping, error) {
	mapping := DefaultMapping()
	if path == "" {
		return mapping, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var overrides Mapping
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return Mapping{}, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}

	if overrides.Vocabulary != "" {
		mapping.Vocabulary = overrides.Vocabulary
	}
	if overrides.NodeBundle != "" {
		mapping.NodeBundle = overrides.NodeBundle
	}
	if len(overrides.MediaUses) > 0 {
		mapping.MediaUses = overrides.MediaUses
	}
	if len(overrides.Bundles) > 0 {
		mapping.Bundles = overrides.Bundles
	}
	if overrides.WidthField != "" {
		mapping.WidthField = overrides.WidthField
	}
	if overrides.HeightField != "" {
		mapping.HeightField = overrides.HeightField
	}
	if len(overrides.AllowedMimeTypes) > 0 {
		mapping.AllowedMimeTypes = overrides.AllowedMimeTypes
	}

	return mapping, nil
}

// MimeAllowed reports whether a dimension lookup should be attempted for
// files of the given MIME type.
func (m Mapping) MimeAllowed(mimeType string) bool {
	for _, allowed := range m.AllowedMimeTypes {
		if allowed == mimeType {
			return true
		}
	}
	return false
}
