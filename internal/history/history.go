// Package history records gate decisions so refusals can be audited after
// the fact.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// HistoryFileName is the name of the history file.
	HistoryFileName = "history.yaml"
	// BackupSuffix is the suffix for backup files when corruption is detected.
	BackupSuffix = ".backup"
)

// Entry is one recorded gate decision.
type Entry struct {
	ID         string    `yaml:"id" json:"id"`
	Timestamp  time.Time `yaml:"timestamp" json:"timestamp"`
	Command    string    `yaml:"command" json:"command"`
	Subject    string    `yaml:"subject,omitempty" json:"subject,omitempty"` // Candidate file, or the intent for builds
	Capability string    `yaml:"capability,omitempty" json:"capability,omitempty"`
	Decision   string    `yaml:"decision" json:"decision"`
	Codes      []string  `yaml:"codes,omitempty" json:"codes,omitempty"`
	BuildID    string    `yaml:"build_id,omitempty" json:"buildId,omitempty"`
	ExitCode   int       `yaml:"exit_code" json:"exitCode"`
	Duration   string    `yaml:"duration" json:"duration"`
}

// File is the YAML document holding all entries, oldest first.
type File struct {
	Entries []Entry `yaml:"entries"`
}

// Load reads the history in stateDir. A missing file is an empty history;
// a corrupted one is moved aside and replaced by an empty history.
func Load(stateDir string) (*File, error) {
	historyPath := filepath.Join(stateDir, HistoryFileName)

	data, err := os.ReadFile(historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Entries: []Entry{}}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var history File
	if err := yaml.Unmarshal(data, &history); err != nil {
		if backupErr := backupCorruptedFile(historyPath); backupErr != nil {
			return nil, fmt.Errorf("backing up corrupted history file: %w", backupErr)
		}
		return &File{Entries: []Entry{}}, nil
	}

	if history.Entries == nil {
		history.Entries = []Entry{}
	}
	return &history, nil
}

func backupCorruptedFile(path string) error {
	if err := os.Rename(path, path+BackupSuffix); err != nil {
		return fmt.Errorf("renaming corrupted file to backup: %w", err)
	}
	return nil
}

// Save writes the history atomically, creating stateDir if needed.
func Save(stateDir string, history *File) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	historyPath := filepath.Join(stateDir, HistoryFileName)
	tmpPath := historyPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp history file: %w", err)
	}
	if err := os.Rename(tmpPath, historyPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp history file: %w", err)
	}
	return nil
}

// Clear removes all entries.
func Clear(stateDir string) error {
	return Save(stateDir, &File{Entries: []Entry{}})
}

// Filter returns the entries matching decision (all when empty), newest
// first, at most limit of them (all when limit <= 0).
func (f *File) Filter(decision string, limit int) []Entry {
	out := make([]Entry, 0, len(f.Entries))
	for i := len(f.Entries) - 1; i >= 0; i-- {
		e := f.Entries[i]
		if decision != "" && e.Decision != decision {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
