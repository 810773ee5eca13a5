package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/lumen/internal/config"
	"github.com/lumenlearn/lumen/internal/markdown"
	"github.com/lumenlearn/lumen/internal/project"
	"github.com/lumenlearn/lumen/internal/state"
	"github.com/lumenlearn/lumen/internal/types"
)

var (
	// projectFlag overrides project directory discovery
	projectFlag string

	// stores hands out one state store per project directory, shared by
	// every command in this invocation
	stores = state.NewRegistry()

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "AI-assisted learning plans tracked as local files",
	Long: `Lumen generates AI-assisted learning plans and tracks your progress
as plain files: a project definition (project.json), a progress ledger
(state.json), and human-facing markdown documents whose headers always
mirror the ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return nil
	},
}

// resolveProjectDir returns the project directory: the --project flag when
// given, otherwise the nearest ancestor of the working directory holding a
// project.json.
func resolveProjectDir() (string, error) {
	if projectFlag != "" {
		if _, err := os.Stat(project.DefinitionPath(projectFlag)); err != nil {
			return "", fmt.Errorf("no project definition in %s", projectFlag)
		}
		return projectFlag, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	dir, err := project.Find(cwd)
	if err != nil {
		return "", fmt.Errorf("not inside a lumen project (no project.json found); use --project or run 'lumen new'")
	}
	return dir, nil
}

// resolveProject loads the definition and the store for the current project
func resolveProject() (string, *types.LearningProject, *state.Store, error) {
	dir, err := resolveProjectDir()
	if err != nil {
		return "", nil, nil, err
	}
	proj, err := project.Load(dir)
	if err != nil {
		return "", nil, nil, err
	}
	return dir, proj, stores.Get(dir), nil
}

// newRenderer builds a renderer honoring the configured link style
func newRenderer() *markdown.Renderer {
	return markdown.NewRenderer(markdown.LinkStyle(cfg.LinkStyle))
}

func main() {
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "Path to the project directory (default: discovered from cwd)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
