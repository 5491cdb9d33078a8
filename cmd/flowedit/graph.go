package main

import (
	"fmt"

	"github.com/recoverly/flowedit/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [automation-file]",
	Short: "Export the automation graph as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph LR) of an automation file, a stored automation or a template.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadSource(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}
		var overlay *graph.Overlay
		if sel, _ := cmd.Flags().GetString("select"); sel != "" {
			overlay = &graph.Overlay{Selected: sel}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(a.Graph, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addSourceFlags(graphCmd)
	graphCmd.Flags().String("select", "", "Highlight one node")
}
