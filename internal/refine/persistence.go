// Package refine wraps batched project-definition mutations with
// snapshot/versioning: a backup of the pre-mutation definition, a bounded
// history ledger, and document regeneration for the units the batch touched.
package refine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lumenlearn/lumen/internal/markdown"
	"github.com/lumenlearn/lumen/internal/project"
	"github.com/lumenlearn/lumen/internal/state"
	"github.com/lumenlearn/lumen/internal/types"
)

const (
	backupsDirName  = ".refinement_backups"
	historyFileName = ".refinement_history.json"
	backupIDFormat  = "20060102_150405"
)

// BackupEntry describes one snapshot in the backup store
type BackupEntry struct {
	BackupID string
	Path     string
	Created  time.Time
	Size     int64
}

// SaveResult reports the per-step outcome of SaveRefinedProject. Steps
// downstream of the definition save are best-effort: their failures land in
// Errors without failing the batch.
type SaveResult struct {
	ProjectSaved    bool
	MarkdownUpdated bool
	BackupCreated   bool
	StateUpdated    bool
	Backup          *types.RefinementBackup
	Errors          []string
}

// Persistence manages snapshot, restore, and history for one project
// directory. The renderer is optional; without it document regeneration is
// skipped.
type Persistence struct {
	projectDir  string
	backupsDir  string
	historyPath string
	renderer    *markdown.Renderer
	store       *state.Store
	logger      *log.Logger
}

// Config holds Persistence construction options
type Config struct {
	ProjectDir string
	Renderer   *markdown.Renderer // optional
	Stores     *state.Registry    // optional; a private registry is used when nil
	Logger     *log.Logger        // optional; defaults to a stderr logger
}

// New creates a Persistence for a project directory, ensuring the backup
// store exists
func New(cfg Config) (*Persistence, error) {
	if cfg.ProjectDir == "" {
		return nil, fmt.Errorf("project directory is required")
	}
	stores := cfg.Stores
	if stores == nil {
		stores = state.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "refine: ", log.LstdFlags)
	}

	p := &Persistence{
		projectDir:  cfg.ProjectDir,
		backupsDir:  filepath.Join(cfg.ProjectDir, backupsDirName),
		historyPath: filepath.Join(cfg.ProjectDir, historyFileName),
		renderer:    cfg.Renderer,
		store:       stores.Get(cfg.ProjectDir),
		logger:      logger,
	}
	if err := os.MkdirAll(p.backupsDir, 0755); err != nil {
		return nil, &types.IOError{Op: "mkdir", Path: p.backupsDir, Recoverable: false, Err: err}
	}
	return p, nil
}

// CreateBackup copies the current on-disk definition into the backup store
// under a timestamp-derived id and returns the descriptor. The reason and a
// summary of the accompanying change set travel with the descriptor.
func (p *Persistence) CreateBackup(reason string, results []types.RefinementResult) (*types.RefinementBackup, error) {
	now := time.Now()
	backupID := now.Format(backupIDFormat)
	snapshotPath := filepath.Join(p.backupsDir, "project_"+backupID+".json")

	src := project.DefinitionPath(p.projectDir)
	if _, err := os.Stat(src); err == nil {
		if err := copyFile(src, snapshotPath); err != nil {
			return nil, err
		}
	}

	return &types.RefinementBackup{
		BackupID:          backupID,
		SnapshotPath:      snapshotPath,
		BackupTimestamp:   now,
		RefinementSummary: summarize(results),
		BackupReason:      reason,
	}, nil
}

// SaveRefinedProject persists a refined definition with the full
// snapshot-save-sync cycle:
//
//  1. optional backup of the pre-mutation definition
//  2. persist the definition - failure here is fatal and aborts the batch
//  3. regenerate documents for units flagged modified
//  4. append a bounded history record
//  5. record refinement notes in the ledger and re-sync residual drift
//
// Steps 3-5 are best-effort: failures are logged and reported in the result
// as non-fatal partial-success entries.
func (p *Persistence) SaveRefinedProject(proj *types.LearningProject, results []types.RefinementResult, createBackup bool) (*SaveResult, error) {
	res := &SaveResult{}

	if createBackup {
		backup, err := p.CreateBackup("pre-refinement", results)
		if err != nil {
			return res, err
		}
		res.BackupCreated = true
		res.Backup = backup
	}

	if err := project.Save(p.projectDir, proj); err != nil {
		return res, err
	}
	res.ProjectSaved = true

	if p.renderer != nil {
		if err := p.updateModifiedUnits(proj, results); err != nil {
			p.logger.Printf("failed to update unit documents: %v", err)
			res.Errors = append(res.Errors, fmt.Sprintf("update unit documents: %v", err))
		} else {
			res.MarkdownUpdated = true
		}
	}

	if err := p.appendHistory(proj, results, res.Backup); err != nil {
		p.logger.Printf("failed to update refinement history: %v", err)
		res.Errors = append(res.Errors, fmt.Sprintf("update refinement history: %v", err))
	}

	if err := p.recordRefinementNotes(results); err != nil {
		p.logger.Printf("failed to update refinement state: %v", err)
		res.Errors = append(res.Errors, fmt.Sprintf("update refinement state: %v", err))
	} else {
		res.StateUpdated = true
	}

	if p.renderer != nil {
		st, err := p.store.Load()
		if err == nil {
			err = p.renderer.Sync(proj, st, p.projectDir)
		}
		if err != nil {
			p.logger.Printf("failed to sync documents with ledger: %v", err)
			res.Errors = append(res.Errors, fmt.Sprintf("sync documents: %v", err))
		}
	}

	return res, nil
}

// updateModifiedUnits regenerates documents only for units a successful
// result flagged as modified
func (p *Persistence) updateModifiedUnits(proj *types.LearningProject, results []types.RefinementResult) error {
	st, err := p.store.Load()
	if err != nil {
		return err
	}

	var errs []error
	for _, r := range results {
		if !r.Success || len(r.UpdatedComponents) == 0 {
			continue
		}
		unit := proj.GetUnitByID(r.UnitID)
		if unit == nil {
			continue
		}
		path := markdown.UnitFilePath(p.projectDir, unit.ID)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		content := p.renderer.BuildUnitContent(unit, proj, st.Units[unit.ID], nil)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			errs = append(errs, &types.IOError{Op: "write", Path: path, Recoverable: true, Err: err})
		}
	}
	return errors.Join(errs...)
}

// RestoreFromBackup copies the named snapshot back over the live definition
// file. The restored definition is byte-identical to the snapshot.
func (p *Persistence) RestoreFromBackup(backupID string) error {
	snapshotPath := filepath.Join(p.backupsDir, "project_"+backupID+".json")
	if _, err := os.Stat(snapshotPath); err != nil {
		return &types.NotFoundError{Kind: "backup", ID: backupID}
	}
	return copyFile(snapshotPath, project.DefinitionPath(p.projectDir))
}

// ListBackups enumerates available backups, newest first
func (p *Persistence) ListBackups() ([]BackupEntry, error) {
	entries, err := os.ReadDir(p.backupsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &types.IOError{Op: "read dir", Path: p.backupsDir, Recoverable: false, Err: err}
	}

	var backups []BackupEntry
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "project_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupEntry{
			BackupID: strings.TrimSuffix(strings.TrimPrefix(name, "project_"), ".json"),
			Path:     filepath.Join(p.backupsDir, name),
			Created:  info.ModTime(),
			Size:     info.Size(),
		})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].Created.After(backups[j].Created) })
	return backups, nil
}

// History loads the refinement history ledger. A missing or corrupted
// history file degrades to an empty default: the history is derived,
// best-effort data, unlike the progress ledger.
func (p *Persistence) History() *types.RefinementHistory {
	defaultHistory := &types.RefinementHistory{ProjectID: filepath.Base(p.projectDir)}

	data, err := os.ReadFile(p.historyPath)
	if err != nil {
		return defaultHistory
	}
	var history types.RefinementHistory
	if err := json.Unmarshal(data, &history); err != nil {
		p.logger.Printf("failed to load refinement history: %v", err)
		return defaultHistory
	}
	return &history
}

func (p *Persistence) appendHistory(proj *types.LearningProject, results []types.RefinementResult, backup *types.RefinementBackup) error {
	history := p.History()
	history.ProjectID = proj.ProjectID()
	if backup != nil {
		history.LastBackup = backup
	}

	rec := types.RefinementRecord{
		Timestamp: time.Now(),
		ProjectID: proj.ProjectID(),
		Results:   results,
	}
	for _, r := range results {
		if r.Success {
			rec.TotalUnitsRefined++
		}
		rec.TotalActionsApplied += len(r.ChangesMade)
	}
	history.Append(rec)

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return &types.IOError{Op: "marshal", Path: p.historyPath, Recoverable: false, Err: err}
	}
	if err := os.WriteFile(p.historyPath, append(data, '\n'), 0644); err != nil {
		return &types.IOError{Op: "write", Path: p.historyPath, Recoverable: true, Err: err}
	}
	return nil
}

// recordRefinementNotes appends a progress note to each successfully refined
// unit's ledger entry
func (p *Persistence) recordRefinementNotes(results []types.RefinementResult) error {
	for _, r := range results {
		if !r.Success || r.Reasoning == "" {
			continue
		}
		if err := p.store.AppendNote(r.UnitID, "Unit refined: "+r.Reasoning); err != nil {
			if types.IsNotFound(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func summarize(results []types.RefinementResult) string {
	if len(results) == 0 {
		return "No refinements applied"
	}
	successful, actions := 0, 0
	for _, r := range results {
		if r.Success {
			successful++
			actions += len(r.ChangesMade)
		}
	}
	summary := fmt.Sprintf("Refined %d units; Applied %d refinement actions", successful, actions)
	if failed := len(results) - successful; failed > 0 {
		summary += fmt.Sprintf("; %d units had errors", failed)
	}
	return summary
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &types.IOError{Op: "open", Path: src, Recoverable: false, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return &types.IOError{Op: "create", Path: dst, Recoverable: false, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return &types.IOError{Op: "copy", Path: dst, Recoverable: true, Err: err}
	}
	if err := out.Close(); err != nil {
		return &types.IOError{Op: "close", Path: dst, Recoverable: true, Err: err}
	}
	return nil
}
