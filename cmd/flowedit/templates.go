package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/recoverly/flowedit"
	"github.com/recoverly/flowedit/pkg/adapters/loam"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the automation templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		catalogue := rt.Engine.Templates()
		ids, err := catalogue.ListTemplates(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tNODES\tDESCRIPTION")
		for _, id := range ids {
			t, err := catalogue.GetTemplate(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.ID, t.Name, len(t.Graph.Nodes), t.Description)
		}
		return w.Flush()
	},
}

var templatesExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the built-in templates as Markdown files",
	Long: `Writes the built-in templates into dir, one Markdown file each, so they can be
edited by hand and served with templates.dir.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templates := flowedit.BuiltinTemplates()
		if err := loam.Export(cmd.Context(), args[0], templates); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d templates to %s\n", len(templates), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesExportCmd)
}
