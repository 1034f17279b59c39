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
	"zsh-setup/internal/platform"
	"zsh-setup/internal/runner"
	"zsh-setup/internal/state"
)

type harness struct {
	env   map[string]string
	cfg   config.Config
	fake  *runner.Fake
	vcs   *fakeVCS
	dl    *fakeDownloader
	globs []string
}

func newHarness(t *testing.T, osType, release string, flags config.Flags) *harness {
	t.Helper()
	h := &harness{env: testEnv(t), fake: runner.NewFake(), vcs: newFakeVCS(), dl: newFakeDownloader()}
	h.env["OSTYPE"] = osType

	etc := t.TempDir()
	h.globs = []string{filepath.Join(etc, "*-release")}
	if release != "" {
		require.NoError(t, os.WriteFile(filepath.Join(etc, "os-release"), []byte(release), 0644))
	}
	h.cfg = testConfig(t, h.env, flags)
	h.fake.Paths["pacapt"] = "/usr/bin/pacapt"
	h.fake.Paths["zsh"] = "/usr/bin/zsh"
	return h
}

func (h *harness) orchestrator() *Orchestrator {
	return NewOrchestrator(h.cfg, Deps{
		Runner:       h.fake,
		VCS:          h.vcs,
		Downloader:   h.dl,
		GitHub:       fakeReleases{},
		Getenv:       func(k string) string { return h.env[k] },
		ReleaseGlobs: h.globs,
		Now:          clock,
	})
}

// Fresh Arch host: packages installed, every resource cloned, the framework
// checked out, .zshrc rendered and the login shell switched.
func TestRunFreshArch(t *testing.T) {
	h := newHarness(t, "linux-gnu", "NAME=\"Arch Linux\"\nID=arch\n", config.Flags{SkipShellChange: true})

	rep, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, platform.Arch, rep.Profile.Family)
	assert.NoError(t, rep.PackagesErr)
	assert.NoError(t, rep.FontsErr)
	assert.False(t, rep.Unsupported())
	assert.True(t, h.fake.Ran("/usr/bin/pacapt -Sy"))
	assert.True(t, h.fake.Ran("/usr/bin/pacapt -S --noconfirm zsh"))

	require.Len(t, rep.Resources, len(h.cfg.Resources))
	for _, r := range rep.Resources {
		assert.Equal(t, ActionCloned, r.Action)
	}
	assert.True(t, rep.ShellConfig.RC.Installed)
	assert.Equal(t, ActionCloned, rep.ShellConfig.Framework.Action)
	assert.FileExists(t, filepath.Join(h.cfg.Home, ".zshrc"))
	assert.True(t, rep.Switch.PostRan)
	assert.False(t, h.fake.Ran("chsh"))

	st := state.LoadState(h.cfg.StatePath)
	assert.Equal(t, "arch", st.Platform)
	assert.True(t, fixedNow.Equal(st.LastRun))
	assert.Equal(t, "cloned", st.Resources["zsh-autosuggestions"].LastAction)
	assert.Contains(t, st.Fonts, "MesloLGS NF")
}

// A second run pulls what the first one cloned and backs up what exists.
func TestRunTwiceIsIdempotent(t *testing.T) {
	h := newHarness(t, "linux-gnu", "ID=ubuntu\nID_LIKE=debian\n", config.Flags{Unattended: true, SkipFonts: true})

	_, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	clones := h.vcs.count("clone")

	rep, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, clones, h.vcs.count("clone"))
	assert.Equal(t, 1, h.vcs.count("checkout"))
	for _, r := range rep.Resources {
		assert.Equal(t, ActionUpdated, r.Action)
	}
	assert.Equal(t, ActionUpdated, rep.ShellConfig.Framework.Action)
	assert.NotEmpty(t, rep.ShellConfig.RC.BackupPath)

	st := state.LoadState(h.cfg.StatePath)
	assert.Len(t, st.Backups, 2)
	assert.Equal(t, "updated", st.Resources["fzf"].LastAction)
}

func TestRunUnknownPlatformStillConfigures(t *testing.T) {
	h := newHarness(t, "msys", "", config.Flags{Unattended: true, SkipFonts: true})
	h.fake.Outputs["uname -s"] = "MINGW64_NT-10.0"

	rep, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Unsupported())
	assert.False(t, h.fake.Ran("/usr/bin/pacapt"))
	assert.Empty(t, h.dl.Calls)
	assert.Equal(t, len(h.cfg.Resources), h.vcs.count("clone"))
	assert.FileExists(t, filepath.Join(h.cfg.Home, ".zshrc"))
}

func TestRunPackageFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, "linux-gnu", "ID=fedora\n", config.Flags{Unattended: true, SkipFonts: true})
	h.fake.Failures["/usr/bin/pacapt -S "] = errors.New("sudo: a password is required")

	rep, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Error(t, rep.PackagesErr)
	assert.False(t, rep.Unsupported())
	assert.True(t, rep.ShellConfig.RC.Installed)
}

func TestRunSyncFailureStopsBeforeShellConfig(t *testing.T) {
	h := newHarness(t, "linux-gnu", "ID=arch\n", config.Flags{Unattended: true, SkipFonts: true})
	h.vcs.Fail["clone "+h.cfg.Resources[0].LocalPath] = errors.New("could not resolve host")

	rep, err := h.orchestrator().Run(context.Background())
	require.Error(t, err)
	assert.Len(t, rep.Resources, 1)
	assert.NoFileExists(t, filepath.Join(h.cfg.Home, ".zshrc"))
	assert.Zero(t, h.vcs.count("checkout"))
	assert.FileExists(t, h.cfg.StatePath, "state is saved on failure too")
}

func TestRunKeepGoing(t *testing.T) {
	h := newHarness(t, "linux-gnu", "ID=arch\n", config.Flags{Unattended: true, SkipFonts: true, KeepGoing: true})
	h.vcs.Fail["clone "+h.cfg.Resources[0].LocalPath] = errors.New("could not resolve host")

	rep, err := h.orchestrator().Run(context.Background())
	require.Error(t, err)
	assert.Len(t, rep.Resources, len(h.cfg.Resources))
	assert.FileExists(t, filepath.Join(h.cfg.Home, ".zshrc"))
	assert.Equal(t, 1, h.vcs.count("checkout"))
}
