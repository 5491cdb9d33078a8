package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/recoverly/flowedit"
	"github.com/spf13/cobra"
)

var automationsCmd = &cobra.Command{
	Use:     "automations",
	Aliases: []string{"ls"},
	Short:   "List the automations in the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		mgr := rt.Engine.Sessions()
		ids, err := mgr.Automations(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTENANT\tNAME\tNODES\tUPDATED")
		for _, id := range ids {
			a, err := mgr.Load(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.ID, a.TenantID, a.Name, len(a.Graph.Nodes), a.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var importCmd = &cobra.Command{
	Use:   "import <automation-file>",
	Short: "Validate an automation file and save it to the configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := flowedit.LoadAutomationFile(args[0])
		if err != nil {
			return err
		}
		if a.ID == "" || a.TenantID == "" {
			return fmt.Errorf("%s: id and tenant_id are required", args[0])
		}

		rt, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.Engine.Store().Save(ctx, a); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d nodes, %d edges)\n", a.ID, len(a.Graph.Nodes), len(a.Graph.Edges))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <automation-id>",
	Short: "Delete an automation from the configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.Engine.Sessions().Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(automationsCmd)
	automationsCmd.AddCommand(importCmd, deleteCmd)
}
