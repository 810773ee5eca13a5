package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lumenlearn/lumen/internal/refine"
)

var backupReason string

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Manage project definition backups",
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		persistence, err := projectPersistence()
		if err != nil {
			return err
		}
		backups, err := persistence.ListBackups()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups found")
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		for _, b := range backups {
			fmt.Printf("  %s  %s  %s\n", cyan(b.BackupID),
				b.Created.Format("2006-01-02 15:04:05"),
				gray(fmt.Sprintf("%d bytes", b.Size)))
		}
		return nil
	},
}

var backupsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the current project definition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		persistence, err := projectPersistence()
		if err != nil {
			return err
		}
		backup, err := persistence.CreateBackup(backupReason, nil)
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Created backup %s\n", green("✓"), backup.BackupID)
		return nil
	},
}

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Restore the project definition from a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		persistence, err := projectPersistence()
		if err != nil {
			return err
		}
		if err := persistence.RestoreFromBackup(args[0]); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Restored definition from backup %s\n", green("✓"), args[0])
		fmt.Println("Run 'lumen sync' to re-render documents")
		return nil
	},
}

func projectPersistence() (*refine.Persistence, error) {
	dir, err := resolveProjectDir()
	if err != nil {
		return nil, err
	}
	return refine.New(refine.Config{
		ProjectDir: dir,
		Renderer:   newRenderer(),
		Stores:     stores,
	})
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	backupsCmd.AddCommand(backupsListCmd)
	backupsCmd.AddCommand(backupsCreateCmd)
	backupsCmd.AddCommand(backupsRestoreCmd)
	backupsCreateCmd.Flags().StringVar(&backupReason, "reason", "manual", "Reason for the backup")
}
