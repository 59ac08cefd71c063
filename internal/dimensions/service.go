package dimensions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aOelschlager/islandora-dimensions/internal/config"
	"github.com/aOelschlager/islandora-dimensions/internal/drupal"
	"github.com/aOelschlager/islandora-dimensions/internal/iiif"
	"github.com/aOelschlager/islandora-dimensions/internal/metrics"
	"github.com/aOelschlager/islandora-dimensions/internal/models"
)

// Service performs dimension updates against a repository and image server.
type Service struct {
	drupal  *drupal.Client
	iiif    *iiif.Client
	mapping config.Mapping
}

// NewService creates a new dimension update service.
func NewService(drupalClient *drupal.Client, iiifClient *iiif.Client, mapping config.Mapping) *Service {
	return &Service{
		drupal:  drupalClient,
		iiif:    iiifClient,
		mapping: mapping,
	}
}

// CanUpdate reports whether the token's principal may update the node.
// Authorization is the repository's call, not ours.
func (s *Service) CanUpdate(ctx context.Context, nodeID, token string) (bool, error) {
	node, err := s.drupal.NodeGet(ctx, nodeID, s.mapping.NodeBundle, token)
	if err != nil {
		return false, err
	}
	return s.drupal.CanUpdate(ctx, node, token)
}

// UpdateNodeDimensions runs one dimension update pass for a node.
//
// For each configured media use it finds the media referencing the node,
// asks the image server for the source file's pixel dimensions when the
// MIME type allows it, and writes them onto the media's width/height
// fields. Media are processed one at a time; on error the media already
// saved stay saved and the error is returned with the partial results.
func (s *Service) UpdateNodeDimensions(ctx context.Context, nodeID, token string) ([]models.MediaResult, error) {
	node, err := s.drupal.NodeGet(ctx, nodeID, s.mapping.NodeBundle, token)
	if err != nil {
		return nil, err
	}

	var results []models.MediaResult
	for _, use := range s.mapping.MediaUses {
		termID, err := s.drupal.TermIDFromURI(ctx, s.mapping.Vocabulary, use.TermURI)
		if err != nil {
			return results, fmt.Errorf("resolving %s media use term: %w", use.Name, err)
		}

		for _, bundle := range s.mapping.Bundles {
			media, included, err := s.drupal.MediaOf(ctx, bundle, node.ID, termID, token)
			if err != nil {
				return results, err
			}

			for _, m := range media {
				result, err := s.updateMedia(ctx, m, use, bundle, included, token)
				results = append(results, result)
				if err != nil {
					return results, err
				}
			}
		}
	}

	return results, nil
}

func (s *Service) updateMedia(ctx context.Context, media drupal.Resource, use config.MediaUse, bundle config.Bundle, included []drupal.Resource, token string) (models.MediaResult, error) {
	metrics.MediaExamined.WithLabelValues(use.Name).Inc()
	result := models.MediaResult{
		MediaID:  media.ID,
		MediaUse: use.Name,
	}

	file, err := s.drupal.SourceFile(media, bundle.SourceField, included)
	if err != nil {
		return result, err
	}
	result.MimeType = file.MimeType

	if !s.mapping.MimeAllowed(file.MimeType) {
		slog.Debug("Skipping media with disallowed MIME type", "media", media.ID, "mime", file.MimeType)
		result.Outcome = models.OutcomeSkippedMime
		return result, nil
	}

	width, height, err := s.iiif.Dimensions(ctx, file.URL)
	if err != nil {
		metrics.LookupErrors.Inc()
		return result, fmt.Errorf("looking up dimensions for media %s: %w", media.ID, err)
	}

	if !media.HasField(s.mapping.WidthField) || !media.HasField(s.mapping.HeightField) {
		slog.Warn("Media has no dimension fields, leaving untouched", "media", media.ID, "bundle", media.Bundle())
		result.Outcome = models.OutcomeSkippedNoField
		return result, nil
	}

	if err := s.drupal.UpdateDimensions(ctx, media, s.mapping.WidthField, s.mapping.HeightField, width, height, token); err != nil {
		return result, err
	}

	metrics.DimensionsWritten.WithLabelValues(use.Name).Inc()
	result.Width = width
	result.Height = height
	result.Outcome = models.OutcomeUpdated
	slog.Info("Updated media dimensions", "media", media.ID, "media_use", use.Name, "width", width, "height", height)
	return result, nil
}
