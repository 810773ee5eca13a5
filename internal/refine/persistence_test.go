package refine

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumenlearn/lumen/internal/markdown"
	"github.com/lumenlearn/lumen/internal/project"
	"github.com/lumenlearn/lumen/internal/types"
)

func testProject() *types.LearningProject {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &types.LearningProject{
		Metadata: types.ProjectMetadata{
			ID:        "refine-test",
			Title:     "Refine Test",
			Topic:     "refinement",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Units: []types.LearningUnit{
			{ID: "unit-1", Title: "One", Description: "First.", Status: types.StatusPending},
			{ID: "unit-2", Title: "Two", Description: "Second.", Status: types.StatusPending},
		},
	}
}

func newTestPersistence(t *testing.T, dir string) *Persistence {
	t.Helper()
	p, err := New(Config{
		ProjectDir: dir,
		Logger:     log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestBackupAndRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	proj := testProject()
	if err := project.Save(dir, proj); err != nil {
		t.Fatalf("save project: %v", err)
	}
	original, err := os.ReadFile(project.DefinitionPath(dir))
	if err != nil {
		t.Fatalf("read definition: %v", err)
	}

	p := newTestPersistence(t, dir)
	backup, err := p.CreateBackup("before edit", nil)
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if backup.BackupReason != "before edit" {
		t.Errorf("BackupReason = %q", backup.BackupReason)
	}
	if _, err := os.Stat(backup.SnapshotPath); err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}

	// Mutate the live definition, then restore.
	proj.Units[0].Title = "One, Revised"
	if err := project.Save(dir, proj); err != nil {
		t.Fatalf("save mutated project: %v", err)
	}
	if err := p.RestoreFromBackup(backup.BackupID); err != nil {
		t.Fatalf("RestoreFromBackup failed: %v", err)
	}

	restored, err := os.ReadFile(project.DefinitionPath(dir))
	if err != nil {
		t.Fatalf("read restored definition: %v", err)
	}
	if !bytes.Equal(original, restored) {
		t.Error("restored definition is not byte-identical to the snapshot")
	}
}

func TestRestoreUnknownBackup(t *testing.T) {
	p := newTestPersistence(t, t.TempDir())
	err := p.RestoreFromBackup("19990101_000000")
	if !types.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestListBackupsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	p := newTestPersistence(t, dir)

	// Seed backups directly; CreateBackup ids have one-second granularity.
	older := filepath.Join(p.backupsDir, "project_20260101_000000.json")
	newer := filepath.Join(p.backupsDir, "project_20260102_000000.json")
	if err := os.WriteFile(older, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newer, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	// Non-backup files in the store are ignored.
	if err := os.WriteFile(filepath.Join(p.backupsDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	backups, err := p.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("got %d backups, want 2", len(backups))
	}
	if backups[0].BackupID != "20260102_000000" || backups[1].BackupID != "20260101_000000" {
		t.Errorf("wrong order: %q then %q", backups[0].BackupID, backups[1].BackupID)
	}
}

func TestSaveRefinedProjectFullCycle(t *testing.T) {
	dir := t.TempDir()
	proj := testProject()
	if err := project.Save(dir, proj); err != nil {
		t.Fatal(err)
	}

	p, err := New(Config{
		ProjectDir: dir,
		Renderer:   markdown.NewRenderer(markdown.LinkStyleMarkdown),
		Logger:     log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatal(err)
	}

	proj.Units[0].Title = "One, Improved"
	results := []types.RefinementResult{
		{
			UnitID:            "unit-1",
			Success:           true,
			ChangesMade:       []string{"rewrote title"},
			UpdatedComponents: []string{"title"},
			Reasoning:         "clearer phrasing",
		},
		{UnitID: "unit-2", Success: false, Errors: []string{"model declined"}},
	}

	if _, err := p.store.InitializeFromProject(proj); err != nil {
		t.Fatal(err)
	}

	res, err := p.SaveRefinedProject(proj, results, true)
	if err != nil {
		t.Fatalf("SaveRefinedProject failed: %v", err)
	}
	if !res.ProjectSaved {
		t.Error("ProjectSaved = false")
	}
	if !res.BackupCreated || res.Backup == nil {
		t.Fatal("backup not created")
	}
	if want := "Refined 1 units; Applied 1 refinement actions; 1 units had errors"; res.Backup.RefinementSummary != want {
		t.Errorf("summary = %q, want %q", res.Backup.RefinementSummary, want)
	}
	if !res.StateUpdated {
		t.Errorf("StateUpdated = false, errors: %v", res.Errors)
	}

	// Definition on disk carries the refined title.
	reloaded, err := project.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Units[0].Title != "One, Improved" {
		t.Errorf("definition title = %q", reloaded.Units[0].Title)
	}

	// History recorded one run with the right tallies.
	history := p.History()
	if len(history.Refinements) != 1 {
		t.Fatalf("got %d history records, want 1", len(history.Refinements))
	}
	rec := history.Refinements[0]
	if rec.TotalUnitsRefined != 1 || rec.TotalActionsApplied != 1 {
		t.Errorf("tallies = %d refined / %d applied", rec.TotalUnitsRefined, rec.TotalActionsApplied)
	}
	if history.LastBackup == nil || history.LastBackup.BackupID != res.Backup.BackupID {
		t.Error("LastBackup not recorded")
	}

	// The refined-unit note landed in the ledger.
	info, err := p.store.GetUnitInfo("unit-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Notes) != 1 || info.Notes[0] != "Unit refined: clearer phrasing" {
		t.Errorf("progress notes = %v", info.Notes)
	}

	// Documents were regenerated with the refined title.
	data, err := os.ReadFile(filepath.Join(dir, markdown.TOCFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("One, Improved")) {
		t.Error("toc.md not regenerated after refinement")
	}
}

func TestSaveRefinedProjectNoBackup(t *testing.T) {
	dir := t.TempDir()
	proj := testProject()
	if err := project.Save(dir, proj); err != nil {
		t.Fatal(err)
	}

	p := newTestPersistence(t, dir)
	res, err := p.SaveRefinedProject(proj, nil, false)
	if err != nil {
		t.Fatalf("SaveRefinedProject failed: %v", err)
	}
	if res.BackupCreated || res.Backup != nil {
		t.Error("backup created despite createBackup=false")
	}

	backups, err := p.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("got %d backups, want 0", len(backups))
	}
}

func TestHistoryCorruptDegradesToDefault(t *testing.T) {
	dir := t.TempDir()
	p := newTestPersistence(t, dir)

	if err := os.WriteFile(p.historyPath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	history := p.History()
	if len(history.Refinements) != 0 {
		t.Errorf("corrupt history should degrade to empty, got %d records", len(history.Refinements))
	}
}

func TestHistoryCapAcrossSaves(t *testing.T) {
	dir := t.TempDir()
	proj := testProject()
	if err := project.Save(dir, proj); err != nil {
		t.Fatal(err)
	}
	p := newTestPersistence(t, dir)

	for i := 0; i < types.MaxRefinementRecords+5; i++ {
		if _, err := p.SaveRefinedProject(proj, nil, false); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	history := p.History()
	if len(history.Refinements) != types.MaxRefinementRecords {
		t.Errorf("got %d records, want cap of %d", len(history.Refinements), types.MaxRefinementRecords)
	}
}

func TestSummarize(t *testing.T) {
	if got := summarize(nil); got != "No refinements applied" {
		t.Errorf("empty summary = %q", got)
	}
	results := []types.RefinementResult{
		{UnitID: "unit-1", Success: true, ChangesMade: []string{"a", "b"}},
		{UnitID: "unit-2", Success: true, ChangesMade: []string{"c"}},
	}
	if got, want := summarize(results), "Refined 2 units; Applied 3 refinement actions"; got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}
