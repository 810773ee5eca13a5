package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lumenlearn/lumen/internal/markdown"
	"github.com/lumenlearn/lumen/internal/types"
)

var (
	doneDate  string
	doneNotes string
	statusAll bool
)

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Track progress on learning units",
}

var unitStartCmd = &cobra.Command{
	Use:   "start <unit-id>",
	Short: "Mark a unit as in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID := args[0]
		dir, proj, store, err := resolveProject()
		if err != nil {
			return err
		}
		if proj.GetUnitByID(unitID) == nil {
			return &types.NotFoundError{Kind: "unit", ID: unitID}
		}

		if err := store.UpdateUnitStatus(unitID, types.StatusInProgress, nil); err != nil {
			return err
		}
		if err := markdown.PatchUnitStatus(markdown.UnitFilePath(dir, unitID), types.StatusInProgress, nil); err != nil && !types.IsNotFound(err) {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Started %s\n", green("✓"), unitID)
		return nil
	},
}

var unitDoneCmd = &cobra.Command{
	Use:   "done <unit-id>",
	Short: "Mark a unit as completed",
	Long: `Mark a unit as completed in the progress ledger and patch the unit
document's metadata header in place.

The completion date defaults to now; override it with --date (RFC 3339 or
YYYY-MM-DD).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID := args[0]
		dir, proj, store, err := resolveProject()
		if err != nil {
			return err
		}
		if proj.GetUnitByID(unitID) == nil {
			return &types.NotFoundError{Kind: "unit", ID: unitID}
		}

		var completionDate *time.Time
		if doneDate != "" {
			parsed, err := parseDate(doneDate)
			if err != nil {
				return err
			}
			completionDate = &parsed
		}

		if err := store.UpdateUnitStatus(unitID, types.StatusCompleted, completionDate); err != nil {
			return err
		}
		if doneNotes != "" {
			if err := store.AppendNote(unitID, doneNotes); err != nil {
				return err
			}
		}

		patchDate := completionDate
		if patchDate == nil {
			info, err := store.GetUnitInfo(unitID)
			if err != nil {
				return err
			}
			patchDate = info.CompletedAt
		}
		if err := markdown.PatchUnitStatus(markdown.UnitFilePath(dir, unitID), types.StatusCompleted, patchDate); err != nil && !types.IsNotFound(err) {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Completed %s\n", green("✓"), unitID)
		return nil
	},
}

var unitStatusCmd = &cobra.Command{
	Use:   "status [unit-id]",
	Short: "Show the recorded status of a unit (or all units with --all)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, proj, store, err := resolveProject()
		if err != nil {
			return err
		}

		if statusAll || len(args) == 0 {
			for _, unit := range proj.Units {
				info, err := store.GetUnitInfo(unit.ID)
				if err != nil {
					return err
				}
				printUnitStatus(unit.ID, unit.Title, info)
			}
			return nil
		}

		unitID := args[0]
		unit := proj.GetUnitByID(unitID)
		if unit == nil {
			return &types.NotFoundError{Kind: "unit", ID: unitID}
		}
		info, err := store.GetUnitInfo(unitID)
		if err != nil {
			return err
		}
		printUnitStatus(unitID, unit.Title, info)
		for _, note := range info.Notes {
			fmt.Printf("    note: %s\n", note)
		}
		return nil
	},
}

func printUnitStatus(unitID, title string, info types.UnitInfo) {
	icon, paint := statusDisplay(info.Status)
	fmt.Printf("  %s %s  %s (%s)", paint(icon), paint(string(info.Status)), title, unitID)
	if info.CompletedAt != nil {
		fmt.Printf("  completed %s", info.CompletedAt.Format("2006-01-02"))
	} else if info.StartedAt != nil {
		fmt.Printf("  started %s", info.StartedAt.Format("2006-01-02"))
	}
	fmt.Println()
}

func statusDisplay(status types.UnitStatus) (string, func(a ...interface{}) string) {
	switch status {
	case types.StatusCompleted:
		return "●", color.New(color.FgGreen).SprintFunc()
	case types.StatusInProgress:
		return "◐", color.New(color.FgYellow).SprintFunc()
	case types.StatusPending:
		return "○", color.New(color.FgHiBlack).SprintFunc()
	default:
		return "?", color.New(color.FgHiBlack).SprintFunc()
	}
}

// parseDate accepts RFC 3339 or a bare date
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want RFC 3339 or YYYY-MM-DD)", s)
}

func init() {
	rootCmd.AddCommand(unitCmd)
	unitCmd.AddCommand(unitStartCmd)
	unitCmd.AddCommand(unitDoneCmd)
	unitCmd.AddCommand(unitStatusCmd)
	unitDoneCmd.Flags().StringVar(&doneDate, "date", "", "Completion date (RFC 3339 or YYYY-MM-DD)")
	unitDoneCmd.Flags().StringVar(&doneNotes, "notes", "", "Progress note to record with completion")
	unitStatusCmd.Flags().BoolVar(&statusAll, "all", false, "Show all units")
}
