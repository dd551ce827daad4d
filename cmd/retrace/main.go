// Command retrace is the operator CLI: retention reports against a scanned
// project tree, plus workspace and token administration.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL string
	token  string

	rootCmd = &cobra.Command{
		Use:           "retrace",
		Short:         "Measure how much AI-generated code survives in a project",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url",
		envOr("RETRACE_API_URL", "http://localhost:8000"), "base URL of the retrace server")
	rootCmd.PersistentFlags().StringVar(&token, "token",
		os.Getenv("RETRACE_TOKEN"), "access token (or admin key for admin commands)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(tokenCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
