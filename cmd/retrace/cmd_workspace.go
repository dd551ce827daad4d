package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/retracehq/retrace/client"
)

var (
	workspaceCmd = &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces (requires the admin key as --token)",
	}

	workspaceCreateCmd = &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(apiURL, token)
			ws, err := c.CreateWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created workspace %s (%s)\n", ws.Name, ws.ID)
			return nil
		},
	}

	workspaceListCmd = &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(apiURL, token)
			list, err := c.ListWorkspaces(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tARCHIVED\tCREATED")
			for _, ws := range list {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n",
					ws.ID, ws.Name, ws.IsArchived,
					time.UnixMilli(ws.CreatedAt).Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	workspaceDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a workspace and everything recorded in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(apiURL, token)
			if err := c.DeleteWorkspace(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted workspace %s\n", args[0])
			return nil
		},
	}
)

func init() {
	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceDeleteCmd)
}
