package types

import "time"

// UnitStatus represents the progress state of a single learning unit
type UnitStatus string

const (
	StatusPending    UnitStatus = "pending"
	StatusInProgress UnitStatus = "in-progress"
	StatusCompleted  UnitStatus = "completed"

	// StatusUnset is returned for units that have no ledger entry.
	// It is never persisted.
	StatusUnset UnitStatus = "unset"
)

// IsValid checks if the status value is valid for persistence
func (s UnitStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// UnitState holds the progress record for a single learning unit
type UnitState struct {
	ID            string     `json:"id"`
	Status        UnitStatus `json:"status"`
	StartedAt     *time.Time `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	ProgressNotes []string   `json:"progress_notes"`
}

// ProjectState is the complete progress ledger for a learning project.
// Unit ids are never removed by routine operations; see
// Store.InitializeFromProject for the merge semantics that guarantee it.
type ProjectState struct {
	ProjectID string                `json:"project_id"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Units     map[string]*UnitState `json:"units"`
}

// NewProjectState creates an empty ledger for the given project id
func NewProjectState(projectID string) *ProjectState {
	now := time.Now()
	return &ProjectState{
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
		Units:     make(map[string]*UnitState),
	}
}

// UnitInfo is the well-defined per-unit result structure returned by status
// lookups, replacing ad hoc map returns.
type UnitInfo struct {
	Status      UnitStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
	Notes       []string
}

// ProgressSummary aggregates unit counts across a project
type ProgressSummary struct {
	TotalUnits      int     `json:"total_units"`
	CompletedUnits  int     `json:"completed_units"`
	InProgressUnits int     `json:"in_progress_units"`
	PendingUnits    int     `json:"pending_units"`
	Percentage      float64 `json:"completion_percentage"`
}

// UpdateUnitStatus applies a status change to a unit, creating the ledger
// entry if needed. Transitions into in-progress set StartedAt on first use;
// transitions into completed set CompletedAt (using completionDate when given)
// and backfill StartedAt if it was never recorded. Every other transition is a
// plain overwrite: the store is permissive and records whatever status is
// requested. Timestamps are never cleared on regression - the stale values are
// kept deliberately.
func (p *ProjectState) UpdateUnitStatus(unitID string, status UnitStatus, completionDate *time.Time) {
	unit, ok := p.Units[unitID]
	if !ok {
		unit = &UnitState{ID: unitID, Status: StatusPending}
		p.Units[unitID] = unit
	}

	oldStatus := unit.Status
	unit.Status = status

	switch {
	case oldStatus == StatusPending && status == StatusInProgress:
		if unit.StartedAt == nil {
			now := time.Now()
			unit.StartedAt = &now
		}
	case status == StatusCompleted:
		completed := time.Now()
		if completionDate != nil {
			completed = *completionDate
		}
		unit.CompletedAt = &completed
		if unit.StartedAt == nil {
			unit.StartedAt = &completed
		}
	}

	p.UpdatedAt = time.Now()
}

// UnitInfo returns the recorded progress for a unit, or a zero-value info
// with StatusUnset when the unit has no ledger entry.
func (p *ProjectState) UnitInfo(unitID string) UnitInfo {
	unit, ok := p.Units[unitID]
	if !ok {
		return UnitInfo{Status: StatusUnset}
	}
	return UnitInfo{
		Status:      unit.Status,
		StartedAt:   unit.StartedAt,
		CompletedAt: unit.CompletedAt,
		Notes:       unit.ProgressNotes,
	}
}

// Summary computes progress counts across all units
func (p *ProjectState) Summary() ProgressSummary {
	s := ProgressSummary{TotalUnits: len(p.Units)}
	for _, unit := range p.Units {
		switch unit.Status {
		case StatusCompleted:
			s.CompletedUnits++
		case StatusInProgress:
			s.InProgressUnits++
		}
	}
	s.PendingUnits = s.TotalUnits - s.CompletedUnits - s.InProgressUnits
	if s.TotalUnits > 0 {
		s.Percentage = float64(s.CompletedUnits) / float64(s.TotalUnits) * 100
	}
	return s
}
