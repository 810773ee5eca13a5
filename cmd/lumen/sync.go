package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-render documents from the progress ledger",
	Long: `Regenerate toc.md, README.md, and every unit document so their
metadata headers match the progress ledger. Use after editing project.json
by hand or whenever documents have drifted from recorded progress.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, proj, store, err := resolveProject()
		if err != nil {
			return err
		}

		st, err := store.InitializeFromProject(proj)
		if err != nil {
			return err
		}
		if err := newRenderer().Sync(proj, st, dir); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Documents synchronized with ledger\n", green("✓"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
