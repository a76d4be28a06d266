package main

import (
	"fmt"
	"io"

	"travelplanner/planner"

	"github.com/spf13/cobra"
)

var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "List panels in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPanels(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(panelsCmd)
}

func runPanels(out io.Writer) error {
	for i, p := range planner.Registry() {
		line := fmt.Sprintf("%2d. %-14s %s", i+1, p.Key, p.Heading)
		if p.NeedsInput {
			line += "  " + StyleMuted.Render("("+p.InputHint+")")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
