package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumenlearn/lumen/internal/types"
)

func validProject() *types.LearningProject {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &types.LearningProject{
		Metadata: types.ProjectMetadata{
			ID:        "go-basics",
			Title:     "Go Basics",
			Topic:     "go",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Units: []types.LearningUnit{
			{ID: "unit-1", Title: "Syntax", Description: "Language syntax.", Status: types.StatusPending},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	proj := validProject()

	if err := Save(dir, proj); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ProjectID() != "go-basics" {
		t.Errorf("project id = %q", loaded.ProjectID())
	}
	if len(loaded.Units) != 1 || loaded.Units[0].ID != "unit-1" {
		t.Errorf("units = %+v", loaded.Units)
	}
	if !loaded.Metadata.UpdatedAt.After(validProject().Metadata.UpdatedAt) {
		t.Error("Save did not touch the updated timestamp")
	}
}

func TestLoadMissingDefinition(t *testing.T) {
	_, err := Load(t.TempDir())
	if !types.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestLoadMalformedDefinition(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(DefinitionPath(dir), []byte("{oops"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if !types.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestLoadInvalidDefinition(t *testing.T) {
	dir := t.TempDir()
	// Parseable JSON that fails structural validation: duplicate unit ids.
	proj := validProject()
	proj.Units = append(proj.Units, types.LearningUnit{
		ID: "unit-1", Title: "Duplicate", Description: "Dup.", Status: types.StatusPending,
	})
	if err := Save(dir, proj); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if !types.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, validProject()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != DefinitionFileName {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v", names)
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "projects", "go-basics")
	nested := filepath.Join(projectDir, "units")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := Save(projectDir, validProject()); err != nil {
		t.Fatal(err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found != projectDir {
		t.Errorf("Find = %q, want %q", found, projectDir)
	}
}

func TestFindNoDefinition(t *testing.T) {
	_, err := Find(t.TempDir())
	if !types.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestEnsureStructure(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureStructure(dir); err != nil {
		t.Fatalf("EnsureStructure failed: %v", err)
	}
	for _, sub := range []string{"units", "resources", "notes"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil || !info.IsDir() {
			t.Errorf("missing subdirectory %s", sub)
		}
	}
	// Idempotent on an existing layout.
	if err := EnsureStructure(dir); err != nil {
		t.Errorf("second EnsureStructure failed: %v", err)
	}
}
