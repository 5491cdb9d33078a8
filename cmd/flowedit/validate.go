package main

import (
	"fmt"

	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [automation-file]",
	Short: "Check an automation graph for consistency",
	Long: `Checks that every edge references existing nodes and that node parameters
match their kind. Nodes of kinds this build does not recognise are reported but accepted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Loading validates the graph.
		a, err := loadSource(cmd.Context(), cmd, args)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, n := range a.Graph.Nodes {
			if n.Family() == domain.FamilyUnknown {
				fmt.Fprintf(out, "warning: node %q has unrecognised kind %q\n", n.ID, n.Kind)
			}
		}
		fmt.Fprintf(out, "Automation is valid! ✅ (%d nodes, %d edges)\n", len(a.Graph.Nodes), len(a.Graph.Edges))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addSourceFlags(validateCmd)
}
