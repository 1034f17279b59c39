package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zsh-setup/internal/logger"
)

// ResourceState records the last synchronization of a managed resource.
// It is informational only: whether a resource is cloned or pulled is
// decided from the filesystem, never from this record.
type ResourceState struct {
	LocalPath  string    `json:"local_path"`
	Remote     string    `json:"remote"`
	LastAction string    `json:"last_action"` // "cloned" or "updated"
	SyncedAt   time.Time `json:"synced_at"`
}

// FontState represents a font installed on the system.
type FontState struct {
	Name  string   `json:"name"`  // Font name (e.g., "MesloLGS NF")
	URL   string   `json:"url"`   // Download URL or release asset used
	Files []string `json:"files"` // List of installed font file paths
}

// State holds everything remembered between runs.
type State struct {
	LastRun   time.Time                `json:"last_run"`
	Platform  string                   `json:"platform"`
	Resources map[string]ResourceState `json:"resources"` // Map from resource name to its last sync
	Fonts     map[string]FontState     `json:"fonts"`     // Map from font name to its installed files
	Backups   []string                 `json:"backups"`   // Backup paths created, newest last
}

// New returns an empty State with initialized maps.
func New() *State {
	return &State{
		Resources: make(map[string]ResourceState),
		Fonts:     make(map[string]FontState),
	}
}

// LoadState loads the saved state from a JSON file at the given path.
// If the file does not exist or cannot be parsed, it returns a new empty State.
func LoadState(path string) *State {
	file, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("[WARN] Cannot read state file %s: %v\n", path, err)
		}
		return New()
	}

	var st State
	if err := json.Unmarshal(file, &st); err != nil {
		logger.Warn("[WARN] Ignoring corrupt state file %s: %v\n", path, err)
		return New()
	}

	// Ensure maps are initialized if JSON contained null for these fields
	if st.Resources == nil {
		st.Resources = make(map[string]ResourceState)
	}
	if st.Fonts == nil {
		st.Fonts = make(map[string]FontState)
	}
	return &st
}

// SaveState writes the given State to a JSON file at the given path,
// creating the parent directory when needed.
func SaveState(path string, st *State) error {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, file, 0644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}

// RecordBackup appends path to the backup list unless it is already there
// (a same-day rerun overwrites the same backup).
func (s *State) RecordBackup(path string) {
	for _, b := range s.Backups {
		if b == path {
			return
		}
	}
	s.Backups = append(s.Backups, path)
}
