package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lumenlearn/lumen/internal/types"
)

// scaffoldedUnit is the JSON shape the model is prompted to return for each
// planned unit
type scaffoldedUnit struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	LearningObjectives []string `json:"learning_objectives"`
	EstimatedDuration  string   `json:"estimated_duration"`
}

// GenerateScaffold asks the model to design the learning units for a topic:
// titles, descriptions, and objectives. Unlike content generation, a failure
// here is returned as an error so the caller can fall back to a template
// outline.
func (g *Generator) GenerateScaffold(ctx context.Context, topic, motivation string, unitCount int) ([]types.LearningUnit, error) {
	text, err := g.callModel(ctx, buildScaffoldPrompt(topic, motivation, unitCount))
	if err != nil {
		return nil, err
	}
	return parseScaffold(text)
}

func buildScaffoldPrompt(topic, motivation string, unitCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Design a learning plan for the topic %q as exactly %d sequential units.\n", topic, unitCount)
	if motivation != "" {
		fmt.Fprintf(&b, "The learner's motivation: %s\n", motivation)
	}
	b.WriteString(`
Respond with a single JSON object, no prose, of the form:
{
  "units": [{"title": "...", "description": "...", "learning_objectives": ["..."], "estimated_duration": "..."}]
}
Each unit needs a concrete, specific title (not "Part 1"), a 1-3 sentence
description, and 2-4 learning objectives. Order the units so each builds on
the previous ones.`)
	return b.String()
}

// parseScaffold turns the model response into definition units. Entries with
// a blank title are dropped; unit ids are assigned sequentially over what
// remains.
func parseScaffold(text string) ([]types.LearningUnit, error) {
	var parsed struct {
		Units []scaffoldedUnit `json:"units"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("could not parse scaffold response: %w", err)
	}

	var units []types.LearningUnit
	for _, u := range parsed.Units {
		title := strings.TrimSpace(u.Title)
		if title == "" {
			continue
		}
		units = append(units, types.LearningUnit{
			ID:                 types.GenerateUnitID(len(units)),
			Title:              title,
			Description:        strings.TrimSpace(u.Description),
			LearningObjectives: u.LearningObjectives,
			EstimatedDuration:  u.EstimatedDuration,
			Status:             types.StatusPending,
		})
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("model returned no usable units")
	}
	return units, nil
}

// ApplyContent writes successfully generated resources and tasks back into
// the matching definition units, so the content survives later re-renders
// from the definition. It reports whether anything changed.
func ApplyContent(proj *types.LearningProject, contents map[string]*types.GeneratedContent) bool {
	changed := false
	for i := range proj.Units {
		c := contents[proj.Units[i].ID]
		if c == nil || !c.Success {
			continue
		}
		proj.Units[i].Resources = c.Resources
		proj.Units[i].EngageTasks = c.EngageTasks
		changed = true
	}
	return changed
}
