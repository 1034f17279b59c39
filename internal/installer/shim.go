package installer

import (
	"context"
	"os"
	"path/filepath"

	"zsh-setup/internal/config"
	"zsh-setup/internal/logger"
	"zsh-setup/internal/runner"
)

// ShimManager drives the universal package-manager shim (pacapt), which
// translates pacman-style flags to whatever the distribution uses.
type ShimManager struct {
	shim   config.Shim
	runner runner.Runner
	dl     Downloader

	bin          string
	bootstrapped bool
}

// NewShimManager returns a manager for shim.
func NewShimManager(shim config.Shim, r runner.Runner, dl Downloader) *ShimManager {
	return &ShimManager{shim: shim, runner: r, dl: dl}
}

func (s *ShimManager) Name() string { return s.shim.Name }

// Ensure finds the shim on PATH or at its install path, and otherwise
// downloads it and installs it with elevated privileges.
func (s *ShimManager) Ensure(ctx context.Context) error {
	if p, err := s.runner.LookPath(s.shim.Name); err == nil {
		s.bin = p
		return nil
	}
	if ok, _ := pathExists(s.shim.Path); ok {
		s.bin = s.shim.Path
		return nil
	}

	logger.Info("[INFO] %s not found. Installing it temporarily...\n", s.shim.Name)
	tmpDir, err := os.MkdirTemp("", "zsh-setup-shim")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	tmp := filepath.Join(tmpDir, s.shim.Name)
	if err := s.dl.Download(ctx, s.shim.URL, tmp); err != nil {
		return err
	}
	install := runner.Elevate(runner.Command{Name: "install", Args: []string{"-m", "0755", tmp, s.shim.Path}})
	if err := s.runner.Run(ctx, install); err != nil {
		return err
	}

	s.bin = s.shim.Path
	s.bootstrapped = true
	return nil
}

func (s *ShimManager) Sync(ctx context.Context) error {
	return s.runner.Run(ctx, runner.Elevate(runner.Command{Name: s.bin, Args: []string{"-Sy"}}))
}

func (s *ShimManager) Install(ctx context.Context, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := append([]string{"-S", "--noconfirm"}, pkgs...)
	return s.runner.Run(ctx, runner.Elevate(runner.Command{Name: s.bin, Args: args}))
}

// Cleanup removes the shim again if this run installed it.
func (s *ShimManager) Cleanup(ctx context.Context) error {
	if !s.bootstrapped {
		return nil
	}
	logger.Debug("[DEBUG] Removing bootstrapped %s from %s\n", s.shim.Name, s.shim.Path)
	if err := s.runner.Run(ctx, runner.Elevate(runner.Command{Name: "rm", Args: []string{"-f", s.shim.Path}})); err != nil {
		return err
	}
	s.bootstrapped = false
	return nil
}
