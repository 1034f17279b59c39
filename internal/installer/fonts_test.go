package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zsh-setup/internal/config"
	"zsh-setup/internal/runner"
	"zsh-setup/internal/state"
)

type fakeReleases map[string]string

func (f fakeReleases) ReleaseAsset(_ context.Context, repo, tag, asset string) (string, error) {
	if u, ok := f[repo+"@"+tag+"/"+asset]; ok {
		return u, nil
	}
	return "", errors.New("release not found")
}

func TestFontSyncFromURLs(t *testing.T) {
	dir := t.TempDir()
	fake := runner.NewFake()
	fake.Paths["fc-cache"] = "/usr/bin/fc-cache"
	dl := newFakeDownloader()
	fi := &FontInstaller{Dir: dir, Downloader: dl, Runner: fake}
	st := state.New()
	fonts := config.DefaultFonts()

	require.NoError(t, fi.Sync(context.Background(), fonts, st))
	assert.FileExists(t, filepath.Join(dir, "MesloLGS NF Regular.ttf"))
	assert.FileExists(t, filepath.Join(dir, "MesloLGS NF Bold Italic.ttf"))
	assert.Len(t, st.Fonts["MesloLGS NF"].Files, 4)
	assert.Equal(t, []string{"/usr/bin/fc-cache -f " + dir}, fake.Lines())

	require.NoError(t, fi.Sync(context.Background(), fonts, st))
	assert.Len(t, dl.Calls, 4, "installed fonts are not downloaded again")
	assert.Len(t, fake.Commands, 1, "cache untouched when nothing changed")
}

func TestFontSyncRemovesUnconfigured(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "Old.ttf")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	st := state.New()
	st.Fonts["Old"] = state.FontState{Name: "Old", Files: []string{old}}
	fi := &FontInstaller{Dir: dir, Downloader: newFakeDownloader(), Runner: runner.NewFake()}

	require.NoError(t, fi.Sync(context.Background(), nil, st))
	assert.NoFileExists(t, old)
	assert.NotContains(t, st.Fonts, "Old")
}

func TestFontSyncFromRelease(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(t.TempDir(), "Meslo.zip")
	writeZip(t, archive, map[string]string{
		"MesloLGSNerdFont-Regular.ttf": "regular",
		"LICENSE.txt":                  "license",
	})
	body, err := os.ReadFile(archive)
	require.NoError(t, err)

	dl := newFakeDownloader()
	dl.Content["https://dl.example/Meslo.zip"] = string(body)
	fi := &FontInstaller{
		Dir:        dir,
		Downloader: dl,
		Runner:     runner.NewFake(),
		GitHub:     fakeReleases{"ryanoasis/nerd-fonts@v3.2.1/Meslo.zip": "https://dl.example/Meslo.zip"},
	}
	st := state.New()
	font := config.Font{Name: "Meslo Nerd", Source: "github", Repo: "ryanoasis/nerd-fonts", Tag: "v3.2.1", Asset: "Meslo.zip"}

	require.NoError(t, fi.Sync(context.Background(), []config.Font{font}, st))
	assert.Equal(t, []string{filepath.Join(dir, "MesloLGSNerdFont-Regular.ttf")}, st.Fonts["Meslo Nerd"].Files)
	assert.Equal(t, "https://dl.example/Meslo.zip", st.Fonts["Meslo Nerd"].URL)
	assert.NoFileExists(t, filepath.Join(dir, "LICENSE.txt"))
}

func TestFontSyncFailureIsReported(t *testing.T) {
	dl := newFakeDownloader()
	fonts := config.DefaultFonts()
	dl.Fail[fonts[0].URLs[1]] = errors.New("HTTP status 503")
	fi := &FontInstaller{Dir: t.TempDir(), Downloader: dl, Runner: runner.NewFake()}
	st := state.New()

	err := fi.Sync(context.Background(), fonts, st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MesloLGS NF")
	assert.NotContains(t, st.Fonts, "MesloLGS NF")
}
