package main

import (
	"fmt"
	"os"

	"github.com/recoverly/flowedit/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var showCmd = &cobra.Command{
	Use:   "show [automation-file]",
	Short: "Print a readable summary of an automation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadSource(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}
		md := tui.Summary(a)

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}

		render, err := tui.NewPlainRenderer()
		if term.IsTerminal(int(os.Stdout.Fd())) {
			render, err = tui.NewRenderer(0)
		}
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	addSourceFlags(showCmd)
	showCmd.Flags().Bool("raw", false, "Print the Markdown source instead of rendering it")
}
