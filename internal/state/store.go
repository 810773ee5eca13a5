// Package state manages the learning progress ledger for a project
// directory, persisted as a state.json file alongside the project
// definition. The store is safe for concurrent use within a single
// process; two separate store instances racing on the same directory
// follow last-save-wins semantics by design.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lumenlearn/lumen/internal/types"
)

// StateFileName is the ledger file name within a project directory
const StateFileName = "state.json"

// Store manages the progress ledger for one project directory.
// All mutating operations run a full load-mutate-save cycle under a single
// lock, so concurrent updates from multiple goroutines never interleave
// partial writes.
type Store struct {
	projectDir string
	statePath  string

	mu sync.Mutex
}

// New creates a Store for the given project directory
func New(projectDir string) *Store {
	return &Store{
		projectDir: projectDir,
		statePath:  filepath.Join(projectDir, StateFileName),
	}
}

// ProjectDir returns the directory this store is bound to
func (s *Store) ProjectDir() string { return s.projectDir }

// StatePath returns the path of the ledger file
func (s *Store) StatePath() string { return s.statePath }

// Load returns the current project state. If no ledger file exists it
// returns (without persisting) a default empty state whose project id is the
// directory base name. A ledger file that exists but cannot be parsed, or is
// missing required fields, fails with a ValidationError - never a silently
// substituted default.
func (s *Store) Load() (*types.ProjectState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (*types.ProjectState, error) {
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.NewProjectState(filepath.Base(s.projectDir)), nil
		}
		return nil, &types.IOError{Op: "read", Path: s.statePath, Recoverable: false, Err: err}
	}

	var state types.ProjectState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, &types.ValidationError{Path: s.statePath, Reason: "malformed ledger", Err: err}
	}
	if err := validateState(&state); err != nil {
		return nil, &types.ValidationError{Path: s.statePath, Reason: err.Error()}
	}
	if state.Units == nil {
		state.Units = make(map[string]*types.UnitState)
	}
	return &state, nil
}

// validateState checks the required-field contract of the ledger schema
func validateState(state *types.ProjectState) error {
	if state.ProjectID == "" {
		return fmt.Errorf("missing project_id")
	}
	if state.CreatedAt.IsZero() {
		return fmt.Errorf("missing created_at")
	}
	if state.UpdatedAt.IsZero() {
		return fmt.Errorf("missing updated_at")
	}
	for id, unit := range state.Units {
		if unit == nil || unit.ID == "" {
			return fmt.Errorf("unit %q: missing id", id)
		}
		if !unit.Status.IsValid() {
			return fmt.Errorf("unit %q: invalid status %q", id, unit.Status)
		}
		// A completed_at on a non-completed unit is legal: a backward
		// transition is a plain status overwrite that leaves old
		// timestamps in place.
	}
	return nil
}

// Save serializes the state and writes it atomically (write temp file, then
// rename over the ledger) so a crash mid-write cannot corrupt the ledger.
func (s *Store) Save(state *types.ProjectState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(state)
}

func (s *Store) saveLocked(state *types.ProjectState) error {
	if err := os.MkdirAll(s.projectDir, 0755); err != nil {
		return &types.IOError{Op: "mkdir", Path: s.projectDir, Recoverable: false, Err: err}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &types.IOError{Op: "marshal", Path: s.statePath, Recoverable: false, Err: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.projectDir, ".state-*.json.tmp")
	if err != nil {
		return &types.IOError{Op: "create temp", Path: s.projectDir, Recoverable: false, Err: err}
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &types.IOError{Op: "write", Path: tmpPath, Recoverable: true, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &types.IOError{Op: "close", Path: tmpPath, Recoverable: true, Err: err}
	}
	if err := os.Rename(tmpPath, s.statePath); err != nil {
		os.Remove(tmpPath)
		return &types.IOError{Op: "rename", Path: s.statePath, Recoverable: false, Err: err}
	}
	return nil
}

// UpdateUnitStatus changes a unit's status and persists the result as one
// locked load-mutate-save transaction. See ProjectState.UpdateUnitStatus for
// the timestamp semantics.
func (s *Store) UpdateUnitStatus(unitID string, status types.UnitStatus, completionDate *time.Time) error {
	if !status.IsValid() {
		return &types.ValidationError{
			Path:   s.statePath,
			Reason: fmt.Sprintf("invalid status %q for unit %s", status, unitID),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadLocked()
	if err != nil {
		return err
	}
	state.UpdateUnitStatus(unitID, status, completionDate)
	return s.saveLocked(state)
}

// AppendNote records a progress note against a unit. The unit must already
// have a ledger entry.
func (s *Store) AppendNote(unitID, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadLocked()
	if err != nil {
		return err
	}
	unit, ok := state.Units[unitID]
	if !ok {
		return &types.NotFoundError{Kind: "unit", ID: unitID}
	}
	unit.ProgressNotes = append(unit.ProgressNotes, note)
	state.UpdatedAt = time.Now()
	return s.saveLocked(state)
}

// GetUnitStatus returns the current status of a unit, or StatusUnset if the
// unit has no ledger entry
func (s *Store) GetUnitStatus(unitID string) (types.UnitStatus, error) {
	state, err := s.Load()
	if err != nil {
		return "", err
	}
	return state.UnitInfo(unitID).Status, nil
}

// GetUnitInfo returns the full recorded progress for a unit
func (s *Store) GetUnitInfo(unitID string) (types.UnitInfo, error) {
	state, err := s.Load()
	if err != nil {
		return types.UnitInfo{}, err
	}
	return state.UnitInfo(unitID), nil
}

// InitializeFromProject merges the project definition into the ledger:
// every unit id present in the definition but absent from the ledger gets a
// new entry seeded with the definition's status. Existing entries are never
// overwritten or removed, so progress already recorded survives an
// out-of-band definition edit. The merged state is persisted and returned.
// Calling this twice with an unchanged definition writes identical content.
func (s *Store) InitializeFromProject(project *types.LearningProject) (*types.ProjectState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	changed := false
	for _, unit := range project.Units {
		if _, ok := state.Units[unit.ID]; ok {
			continue
		}
		status := unit.Status
		if !status.IsValid() {
			status = types.StatusPending
		}
		state.Units[unit.ID] = &types.UnitState{
			ID:            unit.ID,
			Status:        status,
			ProgressNotes: []string{},
		}
		changed = true
	}
	if changed {
		state.UpdatedAt = time.Now()
	}

	if err := s.saveLocked(state); err != nil {
		return nil, err
	}
	return state, nil
}

// ProgressSummary returns unit counts and completion percentage across the
// whole project
func (s *Store) ProgressSummary() (types.ProgressSummary, error) {
	state, err := s.Load()
	if err != nil {
		return types.ProgressSummary{}, err
	}
	return state.Summary(), nil
}
