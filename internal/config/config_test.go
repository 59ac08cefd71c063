package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMapping(t *testing.T) {
	mapping := DefaultMapping()

	if mapping.Vocabulary != "islandora_media_use" {
		t.Errorf("Expected islandora_media_use, got %s", mapping.Vocabulary)
	}
	if len(mapping.MediaUses) != 2 {
		t.Fatalf("Expected 2 media uses, got %d", len(mapping.MediaUses))
	}
	if mapping.MediaUses[0].TermURI != "http://pcdm.org/use#OriginalFile" {
		t.Errorf("Unexpected original file term URI %s", mapping.MediaUses[0].TermURI)
	}
	if mapping.WidthField != "field_width" || mapping.HeightField != "field_height" {
		t.Errorf("Unexpected dimension fields %s/%s", mapping.WidthField, mapping.HeightField)
	}
}

func TestLoadMappingEmptyPath(t *testing.T) {
	mapping, err := LoadMapping("")
	if err != nil {
		t.Fatalf("LoadMapping returned error: %v", err)
	}
	if mapping.NodeBundle != "islandora_object" {
		t.Errorf("Expected default node bundle, got %s", mapping.NodeBundle)
	}
}

func TestLoadMappingOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yml")
	content := `
width_field: field_w
media_uses:
  - name: tiff
    term_uri: http://example.com/use#tiff
allowed_mime_types:
  - image/tiff
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write mapping file: %v", err)
	}

	mapping, err := LoadMapping(path)
	if err != nil {
		t.Fatalf("LoadMapping returned error: %v", err)
	}

	if mapping.WidthField != "field_w" {
		t.Errorf("Expected overridden width field, got %s", mapping.WidthField)
	}
	// Unset values keep their defaults
	if mapping.HeightField != "field_height" {
		t.Errorf("Expected default height field, got %s", mapping.HeightField)
	}
	if mapping.Vocabulary != "islandora_media_use" {
		t.Errorf("Expected default vocabulary, got %s", mapping.Vocabulary)
	}
	if len(mapping.MediaUses) != 1 || mapping.MediaUses[0].Name != "tiff" {
		t.Errorf("Expected overridden media uses, got %+v", mapping.MediaUses)
	}
	if !mapping.MimeAllowed("image/tiff") || mapping.MimeAllowed("image/jpeg") {
		t.Error("Expected MIME allowlist to be replaced by override")
	}
}

func TestLoadMappingMissingFile(t *testing.T) {
	if _, err := LoadMapping("/nonexistent/mapping.yml"); err == nil {
		t.Error("Expected error for missing mapping file")
	}
}

func TestLoadMappingInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("media_uses: {nope"), 0644); err != nil {
		t.Fatalf("Failed to write mapping file: %v", err)
	}
	if _, err := LoadMapping(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestMimeAllowed(t *testing.T) {
	mapping := DefaultMapping()

	tests := []struct {
		mime     string
		expected bool
	}{
		{"image/jp2", true},
		{"image/jpeg", true},
		{"image/tiff", true},
		{"application/pdf", false},
		{"audio/mpeg", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := mapping.MimeAllowed(tt.mime); got != tt.expected {
			t.Errorf("MimeAllowed(%q): expected %v, got %v", tt.mime, tt.expected, got)
		}
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}
	if cfg.DrupalBaseURL == "" || cfg.IIIFBaseURL == "" {
		t.Error("Expected default base URLs")
	}
	if cfg.HTTPTimeout <= 0 {
		t.Errorf("Expected positive default timeout, got %v", cfg.HTTPTimeout)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DRUPAL_BASE_URL", "https://repo.example.edu")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}
	if cfg.DrupalBaseURL != "https://repo.example.edu" {
		t.Errorf("Expected env override, got %s", cfg.DrupalBaseURL)
	}
	if cfg.HTTPTimeout.Seconds() != 5 {
		t.Errorf("Expected 5s timeout, got %v", cfg.HTTPTimeout)
	}
}
