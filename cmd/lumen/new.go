package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lumenlearn/lumen/internal/gen"
	"github.com/lumenlearn/lumen/internal/project"
	"github.com/lumenlearn/lumen/internal/types"
)

var (
	newMotivation string
	newUnits      int
	newOffline    bool
	newNoInput    bool
)

var newCmd = &cobra.Command{
	Use:   "new <topic>",
	Short: "Create a new learning project",
	Long: `Create a new learning project for a topic.

This scaffolds a project directory under the configured projects root:
  - project.json   (project definition)
  - state.json     (progress ledger)
  - toc.md, README.md, units/*.md (rendered documents)

Unless --offline is given, the learning units themselves (titles,
descriptions, objectives) plus resources and engagement tasks for each unit
are generated through the Anthropic API (requires ANTHROPIC_API_KEY).
Offline, a plain outline template is scaffolded instead.

Example:
  lumen new "rust macros"
  lumen new "linear algebra" --units 5 --offline`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.TrimSpace(args[0])
		if topic == "" {
			return fmt.Errorf("topic must not be empty")
		}

		motivation := newMotivation
		if motivation == "" && !newNoInput {
			var err error
			motivation, err = promptLine("Why do you want to learn this? (optional) ")
			if err != nil {
				return err
			}
		}

		units := newUnits
		if units <= 0 {
			units = cfg.DefaultUnitsPerProject
		}
		if units <= 0 {
			units = 3
		}

		var generator *gen.Generator
		if !newOffline {
			var err error
			generator, err = gen.New(gen.Config{Model: cfg.Model})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: content generation unavailable: %v\n", err)
				generator = nil
			}
		}
		gray := color.New(color.FgHiBlack).SprintFunc()

		proj := scaffoldProject(topic, motivation, units)
		if generator != nil {
			fmt.Printf("%s Designing learning units...\n", gray("→"))
			designed, err := generator.GenerateScaffold(context.Background(), topic, motivation, units)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: unit design failed, using outline template: %v\n", err)
			} else {
				proj.Units = designed
			}
		}

		projectDir := filepath.Join(cfg.ProjectsRoot, proj.ProjectID())
		if err := os.MkdirAll(projectDir, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
		if err := project.EnsureStructure(projectDir); err != nil {
			return err
		}
		if err := project.Save(projectDir, proj); err != nil {
			return err
		}

		store := stores.Get(projectDir)
		st, err := store.InitializeFromProject(proj)
		if err != nil {
			return err
		}

		var contentMap map[string]*types.GeneratedContent
		if generator != nil {
			fmt.Printf("%s Generating unit content...\n", gray("→"))
			contentMap, err = generator.GenerateAll(context.Background(), proj)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: content generation failed: %v\n", err)
			}
			// Fold the content into the definition so it survives later
			// re-renders, which build from the definition alone.
			if gen.ApplyContent(proj, contentMap) {
				if err := project.Save(projectDir, proj); err != nil {
					return err
				}
			}
		}

		if err := newRenderer().RenderAll(proj, st, contentMap, projectDir); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("\n%s Created learning project\n\n", green("✓"))
		fmt.Printf("  Project: %s\n", cyan(proj.Title()))
		fmt.Printf("  Directory: %s\n", cyan(projectDir))
		fmt.Printf("  Units: %d\n\n", len(proj.Units))
		fmt.Printf("Start with:\n  cd %s\n  lumen unit start %s\n", projectDir, proj.Units[0].ID)
		return nil
	},
}

// scaffoldProject builds a template outline, used offline and as the
// fallback when model-driven unit design fails
func scaffoldProject(topic, motivation string, unitCount int) *types.LearningProject {
	title := titleCase(topic)
	now := time.Now()
	proj := &types.LearningProject{
		Metadata: types.ProjectMetadata{
			ID:         types.GenerateProjectID(topic),
			Title:      title,
			Topic:      topic,
			Motivation: motivation,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}

	for i := 0; i < unitCount; i++ {
		proj.Units = append(proj.Units, types.LearningUnit{
			ID:          types.GenerateUnitID(i),
			Title:       fmt.Sprintf("%s - Part %d", title, i+1),
			Description: fmt.Sprintf("Part %d of the %s learning plan.", i+1, topic),
			LearningObjectives: []string{
				fmt.Sprintf("Understand the core concepts covered in part %d", i+1),
			},
			Status: types.StatusPending,
		})
	}
	return proj
}

// promptLine reads one line interactively, returning "" on EOF or interrupt
func promptLine(prompt string) (string, error) {
	rl, err := readline.New(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to open prompt: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		// Ctrl+C or EOF just means "no answer"
		return "", nil
	}
	return strings.TrimSpace(line), nil
}

// titleCase capitalizes the first letter of each word
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newMotivation, "motivation", "", "Why you want to learn this topic")
	newCmd.Flags().IntVar(&newUnits, "units", 0, "Number of learning units (default from config)")
	newCmd.Flags().BoolVar(&newOffline, "offline", false, "Skip AI content generation")
	newCmd.Flags().BoolVar(&newNoInput, "no-input", false, "Never prompt interactively")
}
