// Package history persists prompt history and stashed drafts between
// sessions as a small YAML document.
package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

// File is the on-disk layout. Prompts are newest first; stash entries are
// oldest first.
type File struct {
	Prompts []string           `yaml:"prompts"`
	Stash   []state.StashEntry `yaml:"stash"`
}

// FromState captures the persisted parts of s.
func FromState(s state.AppState) File {
	return File{
		Prompts: slices.Clone(s.PromptHistory),
		Stash:   slices.Clone(s.StashEntries),
	}
}

// Actions returns the actions that restore f into a session.
func (f File) Actions() []state.Action {
	return []state.Action{
		state.SetPromptHistory{History: f.Prompts},
		state.SetStashEntries{Entries: f.Stash},
	}
}

// Load reads the history file at path. A missing file yields an empty File.
// Lists longer than the session caps are truncated.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return File{}, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read history: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse history %s: %w", path, err)
	}
	if len(f.Prompts) > state.MaxPromptHistory {
		f.Prompts = f.Prompts[:state.MaxPromptHistory]
	}
	if n := len(f.Stash); n > state.MaxStashEntries {
		f.Stash = f.Stash[n-state.MaxStashEntries:]
	}
	return f, nil
}

// Save atomically replaces the history file at path.
func Save(path string, f File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
