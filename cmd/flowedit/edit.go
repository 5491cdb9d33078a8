package main

import (
	"context"
	"os"

	"github.com/recoverly/flowedit/internal/cli"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <automation-id>",
	Short: "Edit an automation interactively",
	Long: `Opens an editor session on an automation and reads commands from stdin
(add, connect, set, undo, redo, save...). Type help inside the session.
A missing automation is created for --tenant, optionally from --template or --import.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		opts := cli.EditOptions{}
		if len(args) > 0 {
			opts.AutomationID = args[0]
		}
		opts.TenantID, _ = cmd.Flags().GetString("tenant")
		opts.Name, _ = cmd.Flags().GetString("name")
		opts.TemplateID, _ = cmd.Flags().GetString("template")
		opts.ImportPath, _ = cmd.Flags().GetString("import")
		opts.Script, _ = cmd.Flags().GetString("script")

		rt, err := newRuntime(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		return cli.RunEdit(sigCtx, rt, opts, os.Stdin, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().String("tenant", "", "Tenant that owns a new automation")
	editCmd.Flags().String("name", "", "Name of a new automation")
	editCmd.Flags().String("template", "", "Seed a new automation from this template")
	editCmd.Flags().String("import", "", "Seed a new automation from a JSON/YAML automation file")
	editCmd.Flags().String("script", "", "Run the commands in this file instead of reading stdin")
}
