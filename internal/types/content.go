package types

// GeneratedContent is the complete generated content for a learning unit,
// produced by the content generation service and treated as opaque rendering
// input by the markdown synchronizer.
type GeneratedContent struct {
	UnitID             string             `json:"unit_id"`
	Resources          []LearningResource `json:"resources"`
	EngageTasks        []EngageTask       `json:"engage_tasks"`
	FormattedResources []string           `json:"formatted_resources"`
	FormattedTasks     []string           `json:"formatted_tasks"`
	Success            bool               `json:"generation_success"`
	Notes              []string           `json:"generation_notes,omitempty"`
}
