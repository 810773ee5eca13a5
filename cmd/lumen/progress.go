package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show overall project progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, proj, store, err := resolveProject()
		if err != nil {
			return err
		}

		summary, err := store.ProgressSummary()
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== "+proj.Title()+" ==="))
		fmt.Printf("  Total units:  %d\n", summary.TotalUnits)
		fmt.Printf("  %s    %d\n", green("Completed:"), summary.CompletedUnits)
		fmt.Printf("  %s  %d\n", yellow("In progress:"), summary.InProgressUnits)
		fmt.Printf("  %s      %d\n", gray("Pending:"), summary.PendingUnits)
		fmt.Printf("\n  Progress: %.1f%%\n\n", summary.Percentage)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
