package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fiodorowphotography/studio/internal/bulkupload"
	"github.com/fiodorowphotography/studio/pkg/studio/client"
)

// Environment variables read by the upload command.
const (
	envAPIURL     = "STUDIO_API_URL"
	envWriteToken = "STUDIO_WRITE_TOKEN"
)

func newUploadCmd() *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "upload <slug> <folder>",
		Short: "Append a folder of images to a portfolio gallery",
		Long: `Uploads every .jpg, .jpeg, .png, .webp and .gif file in <folder>, in name
order and one at a time, then appends them to the gallery of the portfolio
with <slug> in a single write. Files that fail to upload are skipped and
reported; the command exits non-zero when any file failed.

Requires ` + envAPIURL + ` (e.g. https://studio.example.com/api/v1) and
` + envWriteToken + ` (see "studioctl token").`,
		Example: `  studioctl upload joanna-darek ~/Photos/JoannaDarek --report run.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL := os.Getenv(envAPIURL)
			token := os.Getenv(envWriteToken)
			if apiURL == "" {
				return fmt.Errorf("%s is not set", envAPIURL)
			}
			if token == "" {
				return fmt.Errorf("%s is not set, create one with: studioctl token --secret <secret>", envWriteToken)
			}

			c, err := client.New(apiURL, client.WithToken(token), client.WithUserAgent("studioctl/"+version))
			if err != nil {
				return err
			}

			runner := bulkupload.NewRunner(c, bulkupload.WithOutput(cmd.OutOrStdout()))
			report, runErr := runner.Run(cmd.Context(), args[0], args[1])

			if reportPath != "" && report != nil {
				if err := report.WriteYAML(reportPath); err != nil {
					return errors.Join(runErr, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportPath)
			}
			if client.IsUnauthorized(runErr) {
				return fmt.Errorf("%w (check %s)", runErr, envWriteToken)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "write a YAML report of the run to this file")
	return cmd
}
