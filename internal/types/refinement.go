package types

import "time"

// RefinementResult captures the outcome of refining a single unit
type RefinementResult struct {
	UnitID            string        `json:"unit_id"`
	RefinedUnit       *LearningUnit `json:"refined_unit,omitempty"`
	ChangesMade       []string      `json:"changes_made"`
	Reasoning         string        `json:"reasoning,omitempty"`
	Success           bool          `json:"success"`
	UpdatedComponents []string      `json:"updated_components,omitempty"`
	Errors            []string      `json:"errors,omitempty"`
}

// RefinementBackup describes a point-in-time snapshot of the project
// definition taken before a mutating refinement batch
type RefinementBackup struct {
	BackupID          string    `json:"backup_id"`
	SnapshotPath      string    `json:"snapshot_path"`
	BackupTimestamp   time.Time `json:"backup_timestamp"`
	RefinementSummary string    `json:"refinement_summary"`
	BackupReason      string    `json:"backup_reason,omitempty"`
}

// RefinementRecord is one entry in the bounded refinement history
type RefinementRecord struct {
	Timestamp           time.Time          `json:"timestamp"`
	ProjectID           string             `json:"project_id"`
	Results             []RefinementResult `json:"results"`
	TotalUnitsRefined   int                `json:"total_units_refined"`
	TotalActionsApplied int                `json:"total_actions_applied"`
}

// MaxRefinementRecords caps the history length; the oldest records are
// evicted first once the cap is exceeded.
const MaxRefinementRecords = 50

// RefinementHistory is the persisted ledger of refinement activity for a
// project, capped at MaxRefinementRecords entries
type RefinementHistory struct {
	ProjectID   string             `json:"project_id"`
	Refinements []RefinementRecord `json:"refinements"`
	LastBackup  *RefinementBackup  `json:"last_backup,omitempty"`
}

// Append adds a record, evicting the oldest entries beyond the cap
func (h *RefinementHistory) Append(rec RefinementRecord) {
	h.Refinements = append(h.Refinements, rec)
	if len(h.Refinements) > MaxRefinementRecords {
		h.Refinements = h.Refinements[len(h.Refinements)-MaxRefinementRecords:]
	}
}
