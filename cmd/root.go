package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dimensions",
		Short: "Media dimension updater for Islandora repositories",
		Long: `Dimensions keeps width and height fields on Islandora media in sync
with what the IIIF image server reports for the underlying files.

Given a repository node it finds the media referencing that node by media use
(original file, JP2), asks the image server for pixel dimensions, and writes
them back onto the media through JSON:API.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newUpdateCmd())

	return cmd
}
