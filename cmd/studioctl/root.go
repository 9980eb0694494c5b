package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studioctl",
		Short: "Command line tools for the studio content store",
		Long: `studioctl works against a running studio server.

It bulk-uploads folders of photos into portfolio galleries and mints
write tokens for the studio API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newTokenCmd())

	return cmd
}
