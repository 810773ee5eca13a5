// Package gen is the content-generation boundary: it asks the Anthropic API
// for curated resources and engagement tasks per learning unit and returns
// them as opaque rendering input. Generation failures degrade to unsuccessful
// content rather than errors, so rendering keeps working offline.
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/lumenlearn/lumen/internal/types"
)

// Model constants. The default favors quality; the env var overrides for
// cost-sensitive runs.
const (
	DefaultModel = "claude-sonnet-4-5-20250929"

	modelEnvVar = "LUMEN_MODEL"
	keyEnvVar   = "ANTHROPIC_API_KEY"
)

// GetDefaultModel returns the generation model, honoring the LUMEN_MODEL
// env var
func GetDefaultModel() string {
	if model := os.Getenv(modelEnvVar); model != "" {
		return model
	}
	return DefaultModel
}

// Config holds generator configuration
type Config struct {
	APIKey             string        // if empty, read from ANTHROPIC_API_KEY
	Model              string        // default: GetDefaultModel()
	MaxRetries         int           // default: 3
	InitialBackoff     time.Duration // default: 1s
	MaxConcurrentCalls int           // default: 3
	CallsPerMinute     int           // default: 30
}

// Generator calls the Anthropic API to produce unit content. Concurrent
// calls are bounded by a semaphore and paced by a rate limiter.
type Generator struct {
	client         *anthropic.Client
	model          string
	maxRetries     int
	initialBackoff time.Duration
	sem            *semaphore.Weighted
	limiter        *rate.Limiter
}

// New creates a Generator
func New(cfg Config) (*Generator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(keyEnvVar)
		if apiKey == "" {
			return nil, fmt.Errorf("%s not set", keyEnvVar)
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	backoff := cfg.InitialBackoff
	if backoff == 0 {
		backoff = time.Second
	}
	concurrent := cfg.MaxConcurrentCalls
	if concurrent == 0 {
		concurrent = 3
	}
	perMinute := cfg.CallsPerMinute
	if perMinute == 0 {
		perMinute = 30
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Generator{
		client:         &client,
		model:          model,
		maxRetries:     maxRetries,
		initialBackoff: backoff,
		sem:            semaphore.NewWeighted(int64(concurrent)),
		limiter:        rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
	}, nil
}

// generatedUnit is the JSON shape the model is prompted to return
type generatedUnit struct {
	Resources   []types.LearningResource `json:"resources"`
	EngageTasks []types.EngageTask       `json:"engage_tasks"`
	Notes       []string                 `json:"notes"`
}

// GenerateUnitContent produces resources and engagement tasks for one unit.
// On API or parse failure it returns content with Success=false and the
// failure recorded in Notes; the error return is reserved for context
// cancellation.
func (g *Generator) GenerateUnitContent(ctx context.Context, project *types.LearningProject, unit *types.LearningUnit) (*types.GeneratedContent, error) {
	content := &types.GeneratedContent{UnitID: unit.ID}

	text, err := g.callModel(ctx, buildUnitPrompt(project, unit))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		content.Notes = append(content.Notes, fmt.Sprintf("generation failed: %v", err))
		return content, nil
	}

	var parsed generatedUnit
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		content.Notes = append(content.Notes, fmt.Sprintf("could not parse generation response: %v", err))
		return content, nil
	}

	content.Resources = parsed.Resources
	content.EngageTasks = parsed.EngageTasks
	content.Notes = append(content.Notes, parsed.Notes...)
	for _, res := range parsed.Resources {
		content.FormattedResources = append(content.FormattedResources, formatResourceLine(res))
	}
	for _, task := range parsed.EngageTasks {
		content.FormattedTasks = append(content.FormattedTasks, formatTaskLine(task))
	}
	content.Success = len(content.Resources) > 0 || len(content.EngageTasks) > 0
	if !content.Success {
		content.Notes = append(content.Notes, "model returned no resources or tasks")
	}
	return content, nil
}

// GenerateAll produces content for every unit, with bounded concurrency.
// Per-unit failures are reflected in the unit's content, not as errors.
func (g *Generator) GenerateAll(ctx context.Context, proj *types.LearningProject) (map[string]*types.GeneratedContent, error) {
	contents := make([]*types.GeneratedContent, len(proj.Units))

	grp, ctx := errgroup.WithContext(ctx)
	for i := range proj.Units {
		i := i
		grp.Go(func() error {
			if err := g.sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer g.sem.Release(1)

			content, err := g.GenerateUnitContent(ctx, proj, &proj.Units[i])
			if err != nil {
				return err
			}
			contents[i] = content
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	contentMap := make(map[string]*types.GeneratedContent, len(contents))
	for _, c := range contents {
		contentMap[c.UnitID] = c
	}
	return contentMap, nil
}

// callModel makes one rate-limited, retried API call and returns the
// response text
func (g *Generator) callModel(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	backoff := g.initialBackoff

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(g.model),
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			lastErr = err
			continue
		}

		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		return text.String(), nil
	}
	return "", fmt.Errorf("anthropic API call failed after %d attempts: %w", g.maxRetries+1, lastErr)
}

func buildUnitPrompt(project *types.LearningProject, unit *types.LearningUnit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are curating learning content for the unit %q of the learning project %q (topic: %s).\n\n",
		unit.Title, project.Title(), project.Metadata.Topic)
	fmt.Fprintf(&b, "Unit description: %s\n\n", unit.Description)
	if len(unit.LearningObjectives) > 0 {
		b.WriteString("Learning objectives:\n")
		for _, obj := range unit.LearningObjectives {
			fmt.Fprintf(&b, "- %s\n", obj)
		}
		b.WriteString("\n")
	}
	b.WriteString(`Respond with a single JSON object, no prose, of the form:
{
  "resources": [{"title": "...", "url": "...", "type": "video|article|paper|book|tutorial|documentation", "description": "...", "estimated_time": "..."}],
  "engage_tasks": [{"title": "...", "description": "...", "type": "reflection|practice|project|quiz|experiment", "estimated_time": "..."}],
  "notes": ["..."]
}
Include 2-5 high-quality resources (at least one video and one reading) and 1-2 engagement tasks.`)
	return b.String()
}

var codeFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

// extractJSON strips markdown code fences the model sometimes wraps its
// JSON in
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFenceRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if start := strings.IndexByte(text, '{'); start >= 0 {
		if end := strings.LastIndexByte(text, '}'); end > start {
			return text[start : end+1]
		}
	}
	return text
}

func formatResourceLine(res types.LearningResource) string {
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

func formatTaskLine(task types.EngageTask) string {
	s := fmt.Sprintf("- **%s** (%s", task.Title, task.Type)
	if task.EstimatedTime != "" {
		s += ", " + task.EstimatedTime
	}
	s += "): " + task.Description
	return s
}
