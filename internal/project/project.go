// Package project persists the static project definition (project.json) and
// handles project directory discovery and scaffolding.
package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/lumenlearn/lumen/internal/types"
)

// DefinitionFileName is the project definition file within a project
// directory
const DefinitionFileName = "project.json"

// DefinitionPath returns the path of the definition file for a project
// directory
func DefinitionPath(projectDir string) string {
	return filepath.Join(projectDir, DefinitionFileName)
}

// Load reads and validates the project definition from a project directory
func Load(projectDir string) (*types.LearningProject, error) {
	path := DefinitionPath(projectDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &types.NotFoundError{Kind: "document", ID: path}
		}
		return nil, &types.IOError{Op: "read", Path: path, Recoverable: false, Err: err}
	}

	var project types.LearningProject
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, &types.ValidationError{Path: path, Reason: "malformed project definition", Err: err}
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	return &project, nil
}

// Save writes the project definition atomically, touching its updated
// timestamp first
func Save(projectDir string, project *types.LearningProject) error {
	project.Touch()

	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return &types.IOError{Op: "marshal", Path: DefinitionPath(projectDir), Recoverable: false, Err: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(projectDir, ".project-*.json.tmp")
	if err != nil {
		return &types.IOError{Op: "create temp", Path: projectDir, Recoverable: false, Err: err}
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
	if err := os.Rename(tmpPath, DefinitionPath(projectDir)); err != nil {
		os.Remove(tmpPath)
		return &types.IOError{Op: "rename", Path: DefinitionPath(projectDir), Recoverable: false, Err: err}
	}
	return nil
}

// Find walks up from start looking for a directory containing project.json.
// It returns the project directory, or a NotFoundError when no ancestor
// holds a definition.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", &types.IOError{Op: "resolve", Path: start, Recoverable: false, Err: err}
	}
	for {
		if _, err := os.Stat(DefinitionPath(dir)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &types.NotFoundError{Kind: "document", ID: DefinitionFileName}
		}
		dir = parent
	}
}

// EnsureStructure creates the standard subdirectories of a project directory
func EnsureStructure(projectDir string) error {
	for _, sub := range []string{"units", "resources", "notes"} {
		dir := filepath.Join(projectDir, sub)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &types.IOError{Op: "mkdir", Path: dir, Recoverable: false, Err: err}
		}
	}
	return nil
}
