package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fiodorowphotography/studio/pkg/studio/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a write token for the studio API",
		Long: `Prints a signed token that authorizes writes against a studio server
configured with the same STUDIO_JWT_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("STUDIO_JWT_SECRET")
			}
			if secret == "" {
				return errors.New("--secret or STUDIO_JWT_SECRET is required")
			}
			token, err := auth.IssueWriteToken(secret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to STUDIO_JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "studioctl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")
	return cmd
}
