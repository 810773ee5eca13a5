package markdown

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lumenlearn/lumen/internal/types"
)

// LinkStyle selects how document cross-links are written
type LinkStyle string

const (
	LinkStyleObsidian LinkStyle = "obsidian"
	LinkStyleMarkdown LinkStyle = "markdown"
)

// Document names within a project directory
const (
	TOCFileName    = "toc.md"
	ReadmeFileName = "README.md"
	UnitsDirName   = "units"
)

// Renderer generates the human-facing documents for a project: a table of
// contents, one document per unit, and a README. Headers always mirror the
// progress ledger when ledger state is supplied.
type Renderer struct {
	LinkStyle LinkStyle
}

// NewRenderer creates a renderer with the given link style
func NewRenderer(style LinkStyle) *Renderer {
	if style == "" {
		style = LinkStyleMarkdown
	}
	return &Renderer{LinkStyle: style}
}

// UnitFilePath returns the path of a unit's document within a project
// directory
func UnitFilePath(projectDir, unitID string) string {
	return filepath.Join(projectDir, UnitsDirName, unitID+".md")
}

// RenderAll regenerates every document from scratch: toc.md, one file per
// unit, and README.md. Rendering is deterministic for a given definition,
// ledger state, and content map. Individual write failures are collected and
// reported together, never swallowed.
func (r *Renderer) RenderAll(project *types.LearningProject, st *types.ProjectState, contentMap map[string]*types.GeneratedContent, projectDir string) error {
	if err := os.MkdirAll(filepath.Join(projectDir, UnitsDirName), 0755); err != nil {
		return &types.IOError{Op: "mkdir", Path: filepath.Join(projectDir, UnitsDirName), Recoverable: false, Err: err}
	}

	var errs []error
	write := func(path, content string) {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			errs = append(errs, &types.IOError{Op: "write", Path: path, Recoverable: true, Err: err})
		}
	}

	write(filepath.Join(projectDir, TOCFileName), r.BuildTOC(project, st, contentMap))
	for i := range project.Units {
		unit := &project.Units[i]
		var content *types.GeneratedContent
		if contentMap != nil {
			content = contentMap[unit.ID]
		}
		write(UnitFilePath(projectDir, unit.ID), r.BuildUnitContent(unit, project, unitState(st, unit.ID), content))
	}
	write(filepath.Join(projectDir, ReadmeFileName), r.buildReadme(project))

	return errors.Join(errs...)
}

// Sync pulls current per-unit status from the ledger into an in-memory copy
// of the definition and re-renders every document, so headers reflect ledger
// status even where the definition's own status field has gone stale.
func (r *Renderer) Sync(project *types.LearningProject, st *types.ProjectState, projectDir string) error {
	synced := *project
	synced.Units = make([]types.LearningUnit, len(project.Units))
	copy(synced.Units, project.Units)
	for i := range synced.Units {
		if us, ok := st.Units[synced.Units[i].ID]; ok {
			synced.Units[i].Status = us.Status
		}
	}
	return r.RenderAll(&synced, st, nil, projectDir)
}

func unitState(st *types.ProjectState, unitID string) *types.UnitState {
	if st == nil {
		return nil
	}
	return st.Units[unitID]
}

// effectiveStatus prefers the ledger's view of a unit over the definition's
func effectiveStatus(unit *types.LearningUnit, us *types.UnitState) types.UnitStatus {
	if us != nil {
		return us.Status
	}
	return unit.Status
}

// BuildTOC builds the table-of-contents document
func (r *Renderer) BuildTOC(project *types.LearningProject, st *types.ProjectState, contentMap map[string]*types.GeneratedContent) string {
	var lines []string

	lines = append(lines,
		Delimiter,
		"title: "+QuoteScalar(project.Title()),
		"topic: "+QuoteScalar(project.Metadata.Topic),
		"created: "+QuoteScalar(project.Metadata.CreatedAt.Format(time.RFC3339)),
		"project_id: "+QuoteScalar(project.ProjectID()),
	)
	if project.Metadata.Motivation != "" {
		lines = append(lines, "motivation: "+QuoteScalar(project.Metadata.Motivation))
	}
	if project.Metadata.EstimatedTotalTime != "" {
		lines = append(lines, "estimated_time: "+QuoteScalar(project.Metadata.EstimatedTotalTime))
	}
	if st != nil && len(st.Units) > 0 {
		sum := st.Summary()
		lines = append(lines, fmt.Sprintf("progress: %s", QuoteScalar(
			fmt.Sprintf("%d/%d completed (%.1f%%)", sum.CompletedUnits, sum.TotalUnits, sum.Percentage))))
	}
	if contentMap != nil {
		generated := 0
		for _, c := range contentMap {
			if c != nil && c.Success {
				generated++
			}
		}
		lines = append(lines, "content_generated: "+QuoteScalar(
			fmt.Sprintf("%d/%d units", generated, len(project.Units))))
	}
	lines = append(lines, Delimiter, "", "# "+project.Title(), "")

	if project.Metadata.Motivation != "" {
		lines = append(lines, "## Why This Topic?", project.Metadata.Motivation, "")
	}

	lines = append(lines,
		"## Learning Units",
		"",
		"| Unit | Title | Duration | Status | Resources | Tasks |",
		"|------|-------|----------|--------|-----------|-------|",
	)
	for i := range project.Units {
		unit := &project.Units[i]
		link := r.formatLink(UnitsDirName+"/"+unit.ID+".md", unit.Title)
		duration := unit.EstimatedDuration
		if duration == "" {
			duration = "TBD"
		}
		status := titleCase(string(effectiveStatus(unit, unitState(st, unit.ID))))

		resources, tasks := "TBD", "TBD"
		if c := contentMap[unit.ID]; c != nil && c.Success {
			resources = fmt.Sprintf("%d", len(c.Resources))
			tasks = fmt.Sprintf("%d", len(c.EngageTasks))
		} else if len(unit.Resources) > 0 || len(unit.EngageTasks) > 0 {
			resources = fmt.Sprintf("%d", len(unit.Resources))
			tasks = fmt.Sprintf("%d", len(unit.EngageTasks))
		}
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s | %s |",
			unit.ID, link, duration, status, resources, tasks))
	}

	lines = append(lines,
		"",
		"## Project Structure",
		"",
		"```",
		project.ProjectID()+"/",
		"├── toc.md              # This file - project overview",
		"├── README.md           # Quick start guide",
		"├── project.json        # Project definition",
		"├── state.json          # Progress tracking state",
		"├── units/              # Learning unit files",
	)
	for i := range project.Units {
		lines = append(lines, "│   ├── "+project.Units[i].ID+".md")
	}
	lines = append(lines,
		"├── resources/          # Additional learning materials",
		"└── notes/              # Your personal notes and progress",
		"```",
		"",
		"## Getting Started",
		"",
	)

	if len(project.Units) > 0 {
		first := &project.Units[0]
		lines = append(lines,
			fmt.Sprintf("1. Start with %s", r.formatLink(UnitsDirName+"/"+first.ID+".md", first.Title)),
			"2. Complete the learning objectives for each unit",
			"3. Take notes in the `notes/` directory",
			"4. Track your progress by updating unit status",
		)
	} else {
		lines = append(lines,
			"1. This project currently has no learning units",
			"2. Add some units to get started",
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// BuildUnitContent builds a unit document. The ledger entry, when present,
// overrides the definition's status and contributes the start/completion
// dates and the progress-notes subsection.
func (r *Renderer) BuildUnitContent(unit *types.LearningUnit, project *types.LearningProject, us *types.UnitState, content *types.GeneratedContent) string {
	var lines []string

	status := effectiveStatus(unit, us)
	lines = append(lines,
		Delimiter,
		"title: "+QuoteScalar(unit.Title),
		"unit_id: "+QuoteScalar(unit.ID),
		"project: "+QuoteScalar(project.Title()),
		"status: "+QuoteScalar(string(status)),
	)
	if us != nil {
		if us.StartedAt != nil {
			lines = append(lines, "started_date: "+QuoteScalar(us.StartedAt.Format(time.RFC3339)))
		}
		if us.CompletedAt != nil {
			lines = append(lines, "completed_date: "+QuoteScalar(us.CompletedAt.Format(time.RFC3339)))
		}
	}
	if unit.EstimatedDuration != "" {
		lines = append(lines, "estimated_duration: "+QuoteScalar(unit.EstimatedDuration))
	}
	if len(unit.Prerequisites) > 0 {
		lines = append(lines, "prerequisites: "+QuoteScalar(strings.Join(unit.Prerequisites, ", ")))
	}
	if content != nil {
		lines = append(lines, fmt.Sprintf("content_generated: %t", content.Success))
		if content.Success {
			lines = append(lines, fmt.Sprintf("resources_count: %d", len(content.Resources)))
			lines = append(lines, fmt.Sprintf("tasks_count: %d", len(content.EngageTasks)))
		}
	}
	lines = append(lines, Delimiter, "", "# "+unit.Title, "", unit.Description, "")

	lines = append(lines,
		"## Learning Objectives",
		"",
		"By the end of this unit, you will be able to:",
		"",
	)
	for _, obj := range unit.LearningObjectives {
		lines = append(lines, "- "+obj)
	}
	lines = append(lines, "")

	if len(unit.Prerequisites) > 0 {
		lines = append(lines,
			"## Prerequisites",
			"",
			"Before starting this unit, make sure you've completed:",
			"",
		)
		for _, prereq := range unit.Prerequisites {
			lines = append(lines, "- "+r.formatLink(prereq+".md", "Unit "+prereq))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Resources", "")
	switch {
	case content != nil && content.Success && len(content.FormattedResources) > 0:
		lines = append(lines, content.FormattedResources...)
		lines = append(lines, "")
	case len(unit.Resources) > 0:
		for _, res := range unit.Resources {
			lines = append(lines, formatResource(res))
		}
		lines = append(lines, "")
	default:
		lines = append(lines,
			"*Resources for this unit have not been generated yet.*",
			"",
		)
	}

	lines = append(lines, "## Practice & Engagement", "")
	switch {
	case content != nil && content.Success && len(content.FormattedTasks) > 0:
		lines = append(lines, content.FormattedTasks...)
		lines = append(lines, "")
	case len(unit.EngageTasks) > 0:
		for _, task := range unit.EngageTasks {
			lines = append(lines, formatTask(task))
		}
		lines = append(lines, "")
	default:
		lines = append(lines,
			"*Engagement tasks for this unit have not been generated yet.*",
			"",
		)
	}

	if content != nil && len(content.Notes) > 0 {
		lines = append(lines, "## Content Generation Notes", "")
		for _, note := range content.Notes {
			lines = append(lines, "- "+note)
		}
		lines = append(lines, "")
	}

	if us != nil && len(us.ProgressNotes) > 0 {
		lines = append(lines, "## Progress Notes", "")
		for _, note := range us.ProgressNotes {
			lines = append(lines, "- "+note)
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"## Your Notes",
		"",
		"*Use this space for your personal notes, insights, and reflections.*",
		"",
	)

	return strings.Join(lines, "\n")
}

func formatResource(res types.LearningResource) string {
	s := fmt.Sprintf("- [%s](%s) (%s", res.Title, res.URL, res.Type)
	if res.EstimatedTime != "" {
		s += ", " + res.EstimatedTime
	}
	s += ")"
	if res.Description != "" {
		s += " - " + res.Description
	}
	return s
}

func formatTask(task types.EngageTask) string {
	s := fmt.Sprintf("- **%s** (%s", task.Title, task.Type)
	if task.EstimatedTime != "" {
		s += ", " + task.EstimatedTime
	}
	s += "): " + task.Description
	return s
}

func (r *Renderer) buildReadme(project *types.LearningProject) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", project.Title())
	fmt.Fprintf(&b, "%s learning project.\n\n", project.Metadata.Topic)
	b.WriteString("## Quick Start\n\n")
	b.WriteString("1. **Read the overview**: check out [`toc.md`](toc.md) for the complete learning plan\n")
	if len(project.Units) > 0 {
		first := &project.Units[0]
		fmt.Fprintf(&b, "2. **Start learning**: begin with %s\n",
			r.formatLink(UnitsDirName+"/"+first.ID+".md", first.Title))
	} else {
		b.WriteString("2. **Start learning**: add units to the project first\n")
	}
	b.WriteString("3. **Take notes**: use the `notes/` directory for your thoughts and progress\n")
	b.WriteString("4. **Track progress**: update unit status as you complete them\n\n")
	b.WriteString("## Project Structure\n\n")
	b.WriteString("- `toc.md` - complete project overview and table of contents\n")
	b.WriteString("- `units/` - individual learning unit files\n")
	b.WriteString("- `resources/` - additional learning materials\n")
	b.WriteString("- `notes/` - your personal notes and progress\n")
	b.WriteString("- `project.json` - project definition\n")
	b.WriteString("- `state.json` - progress tracking state\n")
	return b.String()
}

func (r *Renderer) formatLink(path, title string) string {
	if r.LinkStyle == LinkStyleObsidian {
		return "[[" + path + "|" + title + "]]"
	}
	return "[" + title + "](" + path + ")"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
