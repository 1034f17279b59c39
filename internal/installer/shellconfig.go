package installer

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"zsh-setup/internal/config"
	"zsh-setup/internal/logger"
)

// BackupDateFormat is the calendar date appended to backup paths.
const BackupDateFormat = "2006-01-02"

//go:embed zshrc.tmpl
var zshrcTemplate string

var rcTemplate = template.Must(template.New("zshrc").Parse(zshrcTemplate))

// BackupPath returns "<path>_backup_<date>" for the day of now.
func BackupPath(path string, now time.Time) string {
	return path + "_backup_" + now.Format(BackupDateFormat)
}

// Backup copies the file or directory at path aside to its dated backup path
// and returns that path. The original is left untouched; an existing backup
// from the same day is replaced. A symlinked target is backed up by content.
func Backup(path string, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	dst := BackupPath(path, now)

	// The previous backup may be read-only, so it is removed, not truncated.
	if err := os.RemoveAll(dst); err != nil {
		return "", fmt.Errorf("failed to replace old backup %s: %w", dst, err)
	}

	if info.IsDir() {
		src, err := filepath.EvalSymlinks(path)
		if err != nil {
			return "", err
		}
		if err := copyDir(src, dst); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", path, err)
		}
		return dst, nil
	}
	if err := copyFile(path, dst, 0); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return dst, nil
}

// RCResult describes what happened to the run-control file.
type RCResult struct {
	Path       string
	BackupPath string
	Installed  bool
	Kept       bool
}

// FrameworkResult describes what happened to the framework root.
type FrameworkResult struct {
	Root       string
	BackupPath string
	Action     SyncAction
}

// ShellConfigResult is the outcome of ShellConfigurer.Install.
type ShellConfigResult struct {
	RC        RCResult
	Framework FrameworkResult
}

// ShellConfigurer installs the run-control file and the framework root.
type ShellConfigurer struct {
	Cfg config.Config
	VCS VersionControl
	Now func() time.Time
}

// Install handles the run-control file, then makes sure the framework is
// installed. With KeepGoing a run-control failure does not stop the
// framework step; both errors are returned.
func (s *ShellConfigurer) Install(ctx context.Context) (ShellConfigResult, error) {
	var res ShellConfigResult
	rc, rcErr := s.InstallRC()
	res.RC = rc
	if rcErr != nil && !s.Cfg.KeepGoing {
		return res, rcErr
	}
	fw, fwErr := s.EnsureFramework(ctx)
	res.Framework = fw
	if rcErr != nil && fwErr != nil {
		return res, fmt.Errorf("%w; %w", rcErr, fwErr)
	}
	if rcErr != nil {
		return res, rcErr
	}
	return res, fwErr
}

// InstallRC backs up an existing run-control file, or renders the template
// into place when there is none. An existing file is never modified.
func (s *ShellConfigurer) InstallRC() (RCResult, error) {
	target := s.Cfg.RCTarget()
	res := RCResult{Path: target.Path}

	if target.BackupPolicy == config.BackupNone {
		logger.Info("[INFO] Keeping %s as it is.\n", target.Path)
		res.Kept = true
		return res, nil
	}

	exists, err := pathExists(target.Path)
	if err != nil {
		return res, err
	}
	if exists {
		backup, err := Backup(target.Path, s.Now())
		if err != nil {
			return res, err
		}
		logger.Info("[INFO] Backed up %s to %s\n", target.Path, backup)
		res.BackupPath = backup
		return res, nil
	}

	if err := s.writeRC(target.Path); err != nil {
		return res, err
	}
	logger.Info("[INFO] Installed %s\n", target.Path)
	res.Installed = true
	return res, nil
}

func (s *ShellConfigurer) writeRC(path string) error {
	var buf bytes.Buffer
	data := struct {
		FrameworkRoot string
		CustomRoot    string
		Theme         string
		Plugins       []string
	}{s.Cfg.FrameworkRoot, s.Cfg.CustomRoot, s.Cfg.Framework.Theme, s.Cfg.Plugins()}
	if err := rcTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	// O_EXCL: never truncate a file that appeared in the meantime.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// EnsureFramework makes the framework root an up-to-date checkout.
// An installed framework is backed up and fast-forwarded; otherwise the
// framework is checked out into the root, which may already contain
// plugin checkouts.
func (s *ShellConfigurer) EnsureFramework(ctx context.Context) (FrameworkResult, error) {
	root := s.Cfg.FrameworkRoot
	res := FrameworkResult{Root: root}

	installed, err := pathExists(filepath.Join(root, ".git"))
	if err != nil {
		return res, err
	}

	if installed {
		if s.Cfg.FrameworkTarget().BackupPolicy == config.BackupDated {
			backup, err := Backup(root, s.Now())
			if err != nil {
				return res, err
			}
			logger.Info("[INFO] Backed up %s to %s\n", root, backup)
			res.BackupPath = backup
		}
		logger.Info("[INFO] Updating framework in %s\n", root)
		if err := s.VCS.Pull(ctx, root); err != nil {
			return res, fmt.Errorf("framework update: %w", err)
		}
		res.Action = ActionUpdated
		return res, nil
	}

	fw := s.Cfg.Framework
	logger.Info("[INFO] Installing %s (%s) into %s\n", fw.Repo, fw.Branch, root)
	if err := s.VCS.Checkout(ctx, fw.Remote, root, fw.Branch); err != nil {
		return res, fmt.Errorf("framework install: %w", err)
	}
	res.Action = ActionCloned
	return res, nil
}
