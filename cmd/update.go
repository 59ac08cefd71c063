package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aOelschlager/islandora-dimensions/internal/config"
	"github.com/aOelschlager/islandora-dimensions/internal/dimensions"
	"github.com/aOelschlager/islandora-dimensions/internal/drupal"
	"github.com/aOelschlager/islandora-dimensions/internal/iiif"
	"github.com/aOelschlager/islandora-dimensions/internal/models"
	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	var nodeID string
	var token string
	var mappingPath string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update media dimensions for a single node",
		Long: `Runs one dimension update pass against a repository node and exits.

Useful for backfilling dimensions on existing content or for debugging the
field mapping without standing up the service.`,
		Example: `  # Update dimensions for node 42
  dimensions update --node 42

  # Update a node by UUID with an explicit bearer token
  dimensions update --node 6f2e1c1a-9d3b-4a6e-8f3c-0c8a1d2e3f4b --token $TOKEN`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("DRUPAL_TOKEN")
			}

			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			mapping, err := config.LoadMapping(mappingPath)
			if err != nil {
				return err
			}

			svc := dimensions.NewService(
				drupal.NewClient(env.DrupalBaseURL, env.HTTPTimeout),
				iiif.NewClient(env.IIIFBaseURL, env.HTTPTimeout),
				mapping,
			)

			results, err := svc.UpdateNodeDimensions(cmd.Context(), nodeID, token)
			for _, res := range results {
				switch res.Outcome {
				case models.OutcomeUpdated:
					slog.Info("Updated media dimensions", "media", res.MediaID, "media_use", res.MediaUse, "width", res.Width, "height", res.Height)
				default:
					slog.Info("Skipped media", "media", res.MediaID, "media_use", res.MediaUse, "reason", res.Outcome)
				}
			}
			if err != nil {
				return fmt.Errorf("updating dimensions for node %s: %w", nodeID, err)
			}

			slog.Info("Dimension update complete", "node", nodeID, "media_processed", len(results))
			return nil
		},
	}

	cmd.Flags().StringVarP(&nodeID, "node", "n", "", "Node id or UUID to update media dimensions for")
	cmd.Flags().StringVarP(&token, "token", "t", "", "Bearer token to act as (defaults to DRUPAL_TOKEN)")
	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "Path to a YAML field mapping file (defaults to built-in Islandora mapping)")

	if err := cmd.MarkFlagRequired("node"); err != nil {
		slog.Error("Unable to mark flag required", "err", err)
	}

	return cmd
}
