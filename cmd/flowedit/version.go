package main

import (
	"fmt"

	"github.com/recoverly/flowedit"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowedit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flowedit version %s\n", flowedit.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
