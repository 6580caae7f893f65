package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crosshatch/internal/correlate"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the registered correlation types",
	RunE:  runTypes,
}

func runTypes(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-4s %-20s %s\n", "ID", "NAME", "DISPLAY NAME")
	for _, t := range correlate.DefaultTypes() {
		fmt.Fprintf(out, "%-4d %-20s %s\n", t.ID, t.Name, t.DisplayName)
	}
	return nil
}
