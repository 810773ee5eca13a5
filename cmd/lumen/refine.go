package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lumenlearn/lumen/internal/refine"
	"github.com/lumenlearn/lumen/internal/types"
)

var (
	refineTitle      string
	refineObjectives []string
	refineNoBackup   bool
)

var refineCmd = &cobra.Command{
	Use:   "refine <unit-id>",
	Short: "Apply edits to a unit definition with backup and re-sync",
	Long: `Apply edits to a unit of the project definition as a refinement
batch: the pre-mutation definition is snapshotted to the backup store, the
definition is persisted, the unit's document is regenerated, a history
record is appended, and residual drift between ledger and documents is
re-synced.

Example:
  lumen refine unit-2 --title "Advanced patterns" --objective "Apply X" --objective "Evaluate Y"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID := args[0]
		if refineTitle == "" && len(refineObjectives) == 0 {
			return fmt.Errorf("nothing to refine: pass --title and/or --objective")
		}

		dir, proj, _, err := resolveProject()
		if err != nil {
			return err
		}
		unit := proj.GetUnitByID(unitID)
		if unit == nil {
			return &types.NotFoundError{Kind: "unit", ID: unitID}
		}

		result := types.RefinementResult{UnitID: unitID, Success: true}
		if refineTitle != "" {
			unit.Title = refineTitle
			result.ChangesMade = append(result.ChangesMade, "updated title")
			result.UpdatedComponents = append(result.UpdatedComponents, "title")
		}
		if len(refineObjectives) > 0 {
			unit.LearningObjectives = refineObjectives
			result.ChangesMade = append(result.ChangesMade, "replaced learning objectives")
			result.UpdatedComponents = append(result.UpdatedComponents, "learning_objectives")
		}
		result.Reasoning = fmt.Sprintf("Manual refinement of %s (%d changes)", unitID, len(result.ChangesMade))
		result.RefinedUnit = unit

		persistence, err := refine.New(refine.Config{
			ProjectDir: dir,
			Renderer:   newRenderer(),
			Stores:     stores,
		})
		if err != nil {
			return err
		}

		createBackup := !refineNoBackup && cfg.BackupProjects
		saveResult, err := persistence.SaveRefinedProject(proj, []types.RefinementResult{result}, createBackup)
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Refined %s\n", green("✓"), unitID)
		if saveResult.Backup != nil {
			fmt.Printf("  Backup: %s\n", saveResult.Backup.BackupID)
		}
		for _, msg := range saveResult.Errors {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refineCmd)
	refineCmd.Flags().StringVar(&refineTitle, "title", "", "New unit title")
	refineCmd.Flags().StringArrayVar(&refineObjectives, "objective", nil, "Replacement learning objective (repeatable)")
	refineCmd.Flags().BoolVar(&refineNoBackup, "no-backup", false, "Skip the pre-mutation backup")
}
