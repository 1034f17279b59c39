package installer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"zsh-setup/internal/config"
	"zsh-setup/internal/logger"
	"zsh-setup/internal/runner"
)

// SwitchResult is the outcome of the final shell switch.
type SwitchResult struct {
	ShellPath string
	Changed   bool
	PostRan   bool
	Err       error
}

// ShellSwitcher changes the login shell and runs the framework's
// self-update inside an interactive session of it.
type ShellSwitcher struct {
	Cfg    config.Config
	Runner runner.Runner
	// ShellsFile lists the allowed login shells, normally /etc/shells.
	ShellsFile string
}

// NewShellSwitcher returns a switcher using /etc/shells.
func NewShellSwitcher(cfg config.Config, r runner.Runner) *ShellSwitcher {
	return &ShellSwitcher{Cfg: cfg, Runner: r, ShellsFile: "/etc/shells"}
}

// Switch never aborts the run: the outcome is reported on the console and
// returned for the caller to inspect.
func (s *ShellSwitcher) Switch(ctx context.Context) SwitchResult {
	res := SwitchResult{}
	res.Err = s.switchShell(ctx, &res)
	if res.Err != nil {
		logger.Error("[ERROR] Something went wrong while switching shells: %v\n", res.Err)
		return res
	}
	logger.Info("[INFO] Installation complete, %s is ready.\n", s.Cfg.ShellBinary)
	return res
}

func (s *ShellSwitcher) switchShell(ctx context.Context, res *SwitchResult) error {
	path, err := s.Runner.LookPath(s.Cfg.ShellBinary)
	if err != nil {
		return fmt.Errorf("%s is not installed: %w", s.Cfg.ShellBinary, err)
	}
	res.ShellPath = path

	switch {
	case s.Cfg.SkipShellChange:
		logger.Info("[INFO] Skipping the login shell change.\n")
	case s.isCurrentShell(path):
		logger.Info("[INFO] %s is already the login shell.\n", path)
	default:
		if err := s.ensureListed(ctx, path); err != nil {
			return err
		}
		args := []string{"-s", path}
		if s.Cfg.User != "" {
			args = append(args, s.Cfg.User)
		}
		logger.Info("[INFO] Changing the login shell to %s\n", path)
		if err := s.Runner.Run(ctx, runner.Command{Name: "chsh", Args: args, Interactive: true}); err != nil {
			return err
		}
		res.Changed = true
	}

	if s.Cfg.SkipPostRun {
		logger.Info("[INFO] Skipping the post-install run.\n")
		return nil
	}
	update := s.Cfg.Framework.UpdateCommand
	if err := s.Runner.Run(ctx, runner.Command{Name: path, Args: []string{"-i", "-c", update}, Interactive: true}); err != nil {
		return err
	}
	res.PostRan = true
	return nil
}

func (s *ShellSwitcher) isCurrentShell(path string) bool {
	current := s.Cfg.Shell
	if current == "" {
		return false
	}
	if current == path {
		return true
	}
	resolved, err := filepath.EvalSymlinks(current)
	return err == nil && resolved == path
}

// ensureListed appends path to the shells file when chsh would reject it.
func (s *ShellSwitcher) ensureListed(ctx context.Context, path string) error {
	f, err := os.Open(s.ShellsFile)
	if err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == path {
				f.Close()
				return nil
			}
		}
		f.Close()
	} else if !os.IsNotExist(err) {
		return err
	}

	logger.Info("[INFO] Adding %s to %s\n", path, s.ShellsFile)
	tee := runner.Elevate(runner.Command{Name: "tee", Args: []string{"-a", s.ShellsFile}, Stdin: path + "\n"})
	return s.Runner.Run(ctx, tee)
}
