package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retracehq/retrace/client"
	"github.com/retracehq/retrace/retention"
)

var (
	reportWorkspace string
	reportPath      string

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Scan a project tree and report AI line retention",
		RunE:  runReport,
	}
)

func init() {
	reportCmd.Flags().StringVar(&reportWorkspace, "workspace",
		envOr("RETRACE_WORKSPACE", ""), "workspace id holding the origin records")
	reportCmd.Flags().StringVar(&reportPath, "path", ".", "project directory to scan")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportWorkspace == "" {
		return errors.New("--workspace is required (or set RETRACE_WORKSPACE)")
	}
	if token == "" {
		return errors.New("--token is required (or set RETRACE_TOKEN)")
	}

	// Scan before touching the network so a bad path fails immediately.
	result, err := retention.ScanDir(reportPath)
	if err != nil {
		return err
	}

	c := client.New(apiURL, token)
	entries, err := c.ListSignatures(cmd.Context(), reportWorkspace)
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return fmt.Errorf("authentication failed, check --token: %w", err)
	case errors.Is(err, client.ErrForbidden):
		return fmt.Errorf("token is not valid for workspace %s: %w", reportWorkspace, err)
	case errors.Is(err, client.ErrNotFound):
		return fmt.Errorf("workspace %s not found", reportWorkspace)
	case err != nil:
		return fmt.Errorf("failed to fetch recorded signatures: %w", err)
	}

	remote := make([]string, 0, len(entries))
	for _, entry := range entries {
		remote = append(remote, entry.Signature)
	}

	metrics := retention.Calculate(result.Signatures, remote)
	fmt.Fprint(cmd.OutOrStdout(), metrics.Format(reportWorkspace))
	fmt.Fprintf(cmd.OutOrStdout(), "Files scanned:        %d\n", result.Files)
	return nil
}
