package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResourceType categorizes a learning resource
type ResourceType string

const (
	ResourceVideo         ResourceType = "video"
	ResourceArticle       ResourceType = "article"
	ResourcePaper         ResourceType = "paper"
	ResourceBook          ResourceType = "book"
	ResourceTutorial      ResourceType = "tutorial"
	ResourceDocumentation ResourceType = "documentation"
)

// TaskType categorizes an engagement task
type TaskType string

const (
	TaskReflection TaskType = "reflection"
	TaskPractice   TaskType = "practice"
	TaskProject    TaskType = "project"
	TaskQuiz       TaskType = "quiz"
	TaskExperiment TaskType = "experiment"
)

// LearningResource is a single curated resource (video, article, ...) for a unit
type LearningResource struct {
	Title         string       `json:"title"`
	URL           string       `json:"url"`
	Type          ResourceType `json:"type"`
	Description   string       `json:"description,omitempty"`
	EstimatedTime string       `json:"estimated_time,omitempty"`
}

// EngageTask is an active-learning task within a unit
type EngageTask struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Type          TaskType `json:"type"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
}

// LearningUnit is a single unit within a project definition. The Status field
// here is the definition's own view and goes stale once the progress ledger
// diverges; the ledger is authoritative.
type LearningUnit struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	LearningObjectives []string           `json:"learning_objectives"`
	Resources          []LearningResource `json:"resources"`
	EngageTasks        []EngageTask       `json:"engage_tasks"`
	Prerequisites      []string           `json:"prerequisites,omitempty"`
	EstimatedDuration  string             `json:"estimated_duration,omitempty"`
	Status             UnitStatus         `json:"status"`
}

// ProjectMetadata describes a learning project independent of its units
type ProjectMetadata struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Topic              string    `json:"topic"`
	Motivation         string    `json:"motivation,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	EstimatedTotalTime string    `json:"estimated_total_time,omitempty"`
	DifficultyLevel    string    `json:"difficulty_level,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
}

// LearningProject is the static project definition: metadata plus ordered units
type LearningProject struct {
	Metadata ProjectMetadata `json:"metadata"`
	Units    []LearningUnit  `json:"units"`
}

// ProjectID returns the project identifier
func (p *LearningProject) ProjectID() string { return p.Metadata.ID }

// Title returns the human-readable project title
func (p *LearningProject) Title() string { return p.Metadata.Title }

// GetUnitByID returns the unit with the given id, or nil
func (p *LearningProject) GetUnitByID(unitID string) *LearningUnit {
	for i := range p.Units {
		if p.Units[i].ID == unitID {
			return &p.Units[i]
		}
	}
	return nil
}

// Touch updates the last-modified timestamp
func (p *LearningProject) Touch() {
	p.Metadata.UpdatedAt = time.Now()
}

// Validate checks that the definition has the fields the rest of the system
// relies on
func (p *LearningProject) Validate() error {
	if p.Metadata.ID == "" {
		return &ValidationError{Path: "project definition", Reason: "metadata.id is required"}
	}
	if p.Metadata.Title == "" {
		return &ValidationError{Path: "project definition", Reason: "metadata.title is required"}
	}
	seen := make(map[string]bool, len(p.Units))
	for _, u := range p.Units {
		if u.ID == "" {
			return &ValidationError{Path: "project definition", Reason: "unit with empty id"}
		}
		if seen[u.ID] {
			return &ValidationError{Path: "project definition", Reason: "duplicate unit id " + u.ID}
		}
		seen[u.ID] = true
	}
	return nil
}

// GenerateProjectID builds a unique project id from a topic:
// a URL-friendly slug plus a short uuid fragment.
func GenerateProjectID(topic string) string {
	slug := strings.ToLower(topic)
	var b strings.Builder
	for _, c := range slug {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_' {
			b.WriteRune(c)
		} else {
			b.WriteRune('-')
		}
	}
	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	slug = strings.Join(parts, "-")
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return slug + "-" + uuid.NewString()[:8]
}

// GenerateUnitID returns the id for the unit at the given zero-based index
func GenerateUnitID(index int) string {
	return fmt.Sprintf("unit-%d", index+1)
}
