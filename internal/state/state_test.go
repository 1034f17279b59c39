package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStateMissingFile(t *testing.T) {
	st := LoadState(filepath.Join(t.TempDir(), "nope.json"))
	require.NotNil(t, st)
	assert.NotNil(t, st.Resources)
	assert.NotNil(t, st.Fonts)
}

func TestLoadStateCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	st := LoadState(path)
	assert.Empty(t, st.Resources)
}

func TestLoadStateNullMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"resources": null, "fonts": null}`), 0644))

	st := LoadState(path)
	assert.NotNil(t, st.Resources)
	assert.NotNil(t, st.Fonts)
}

func TestSaveStateCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "zsh-setup", "state.json")
	st := New()
	st.Platform = "arch"
	st.Resources["fzf"] = ResourceState{LocalPath: "/tmp/fzf", LastAction: "cloned", SyncedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}

	require.NoError(t, SaveState(path, st))

	loaded := LoadState(path)
	assert.Equal(t, "arch", loaded.Platform)
	assert.Equal(t, "cloned", loaded.Resources["fzf"].LastAction)
}

func TestRecordBackupDeduplicates(t *testing.T) {
	st := New()
	st.RecordBackup("/home/u/.zshrc_backup_2026-10-15")
	st.RecordBackup("/home/u/.zshrc_backup_2026-10-15")
	st.RecordBackup("/home/u/.oh-my-zsh_backup_2026-10-15")
	assert.Len(t, st.Backups, 2)
}
