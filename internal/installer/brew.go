package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"zsh-setup/internal/logger"
	"zsh-setup/internal/runner"
)

// brewPrefixes are where the Homebrew installer puts brew, which is not
// on PATH right after a fresh install.
var brewPrefixes = []string{"/opt/homebrew/bin/brew", "/usr/local/bin/brew"}

// Homebrew installs packages on macOS, plus add-on Python packages via pip.
type Homebrew struct {
	installURL string
	addons     []string
	runner     runner.Runner
	dl         Downloader
	prefixes   []string

	bin string
}

// NewHomebrew returns the macOS package manager adapter.
func NewHomebrew(installURL string, addons []string, r runner.Runner, dl Downloader) *Homebrew {
	return &Homebrew{installURL: installURL, addons: addons, runner: r, dl: dl, prefixes: brewPrefixes}
}

func (h *Homebrew) Name() string { return "brew" }

// Ensure locates brew, running the official install script when it is missing.
func (h *Homebrew) Ensure(ctx context.Context) error {
	if h.locate() {
		return nil
	}

	logger.Info("[INFO] Homebrew not found. Installing it...\n")
	tmpDir, err := os.MkdirTemp("", "zsh-setup-brew")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	script := filepath.Join(tmpDir, "install.sh")
	if err := h.dl.Download(ctx, h.installURL, script); err != nil {
		return err
	}
	err = h.runner.Run(ctx, runner.Command{
		Name:        "/bin/bash",
		Args:        []string{script},
		Env:         []string{"NONINTERACTIVE=1"},
		Interactive: true,
	})
	if err != nil {
		return err
	}

	if !h.locate() {
		return errors.New("brew still not found after running the Homebrew installer")
	}
	return nil
}

func (h *Homebrew) locate() bool {
	if p, err := h.runner.LookPath("brew"); err == nil {
		h.bin = p
		return true
	}
	for _, p := range h.prefixes {
		if ok, _ := pathExists(p); ok {
			h.bin = p
			return true
		}
	}
	return false
}

func (h *Homebrew) Sync(ctx context.Context) error {
	return h.runner.Run(ctx, runner.Command{Name: h.bin, Args: []string{"update"}})
}

// Install installs pkgs with brew, then the pip add-ons.
func (h *Homebrew) Install(ctx context.Context, pkgs []string) error {
	if len(pkgs) > 0 {
		if err := h.runner.Run(ctx, runner.Command{Name: h.bin, Args: append([]string{"install"}, pkgs...)}); err != nil {
			return err
		}
	}
	if len(h.addons) == 0 {
		return nil
	}
	logger.Info("[INFO] Installing Python add-ons: %v\n", h.addons)
	args := append([]string{"-m", "pip", "install", "--user"}, h.addons...)
	return h.runner.Run(ctx, runner.Command{Name: "python3", Args: args})
}

// Cleanup is a no-op: a Homebrew installation is kept.
func (h *Homebrew) Cleanup(context.Context) error { return nil }
