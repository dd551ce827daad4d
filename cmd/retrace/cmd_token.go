package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/retracehq/retrace/client"
)

var (
	tokenDescription string
	tokenTTL         time.Duration

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Manage workspace access tokens (requires the admin key as --token)",
	}

	tokenCreateCmd = &cobra.Command{
		Use:   "create <workspace-id>",
		Short: "Issue a new access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var expiresAt *int64
			if tokenTTL > 0 {
				ms := time.Now().Add(tokenTTL).UnixMilli()
				expiresAt = &ms
			}

			c := client.New(apiURL, token)
			issued, err := c.CreateToken(cmd.Context(), args[0], tokenDescription, expiresAt)
			if err != nil {
				return err
			}

			// The raw value is shown exactly once; only its hash is stored.
			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", issued.Token)
			fmt.Fprintf(cmd.OutOrStdout(), "id:    %s\n", issued.ID)
			if issued.ExpiresAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "expires: %s\n",
					time.UnixMilli(*issued.ExpiresAt).Format(time.RFC3339))
			}
			return nil
		},
	}

	tokenRevokeCmd = &cobra.Command{
		Use:   "revoke <workspace-id> <token-id>",
		Short: "Revoke an access token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(apiURL, token)
			if err := c.RevokeToken(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked token %s\n", args[1])
			return nil
		},
	}
)

func init() {
	tokenCreateCmd.Flags().StringVar(&tokenDescription, "description", "", "free-form token description")
	tokenCreateCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (0 means no expiry)")

	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
}
