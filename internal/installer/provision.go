package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"zsh-setup/internal/config"
	"zsh-setup/internal/logger"
	"zsh-setup/internal/platform"
	"zsh-setup/internal/runner"
	"zsh-setup/internal/state"
)

// Deps are the host capabilities the orchestrator works through.
type Deps struct {
	Runner       runner.Runner
	VCS          VersionControl
	Downloader   Downloader
	GitHub       ReleaseResolver
	Getenv       func(string) string
	ReleaseGlobs []string
	Now          func() time.Time
}

// DefaultDeps returns the capabilities of the real host.
func DefaultDeps() Deps {
	r := runner.NewExec()
	return Deps{
		Runner:       r,
		VCS:          &Git{Runner: r},
		Downloader:   NewHTTPDownloader(),
		GitHub:       NewGitHubClient(),
		Getenv:       os.Getenv,
		ReleaseGlobs: platform.ReleaseGlobs,
		Now:          time.Now,
	}
}

// Report collects the outcome of every stage of a run.
type Report struct {
	Profile     platform.Profile
	PackagesErr error
	FontsErr    error
	Resources   []SyncResult
	ShellConfig ShellConfigResult
	Switch      SwitchResult
}

// Unsupported reports whether no supported platform was detected.
func (r *Report) Unsupported() bool {
	return errors.Is(r.PackagesErr, ErrUnsupportedPlatform)
}

// Orchestrator runs the provisioning stages in order.
type Orchestrator struct {
	Cfg  config.Config
	Deps Deps
}

// NewOrchestrator returns an orchestrator for cfg.
func NewOrchestrator(cfg config.Config, deps Deps) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	return &Orchestrator{Cfg: cfg, Deps: deps}
}

// Run detects the platform, installs packages and fonts, synchronizes the
// managed resources, installs the shell configuration and switches the
// login shell. Package and font failures are reported but never abort.
// Resource and shell configuration failures abort the run unless
// KeepGoing is set, in which case they are returned once everything ran.
// The state file is saved in every case.
func (o *Orchestrator) Run(ctx context.Context) (rep *Report, err error) {
	cfg := o.Cfg
	rep = &Report{}
	st := state.LoadState(cfg.StatePath)
	defer func() {
		st.LastRun = o.Deps.Now()
		if serr := state.SaveState(cfg.StatePath, st); serr != nil {
			logger.Warn("[WARN] Failed to save state: %v\n", serr)
		}
	}()

	logger.Section("Detecting platform")
	in := platform.Probe(ctx, o.Deps.Getenv, o.Deps.Runner, o.Deps.ReleaseGlobs)
	rep.Profile = platform.Detect(in)
	st.Platform = rep.Profile.Family.String()
	logger.Info("[INFO] Detected platform: %s\n", rep.Profile)

	logger.Section("Installing packages")
	rep.PackagesErr = InstallPackages(ctx, cfg, rep.Profile, o.Deps.Runner, o.Deps.Downloader)
	if rep.PackagesErr != nil && !rep.Unsupported() {
		logger.Warn("[WARN] Package installation failed, continuing: %v\n", rep.PackagesErr)
	}

	if cfg.SkipFonts {
		logger.Info("[INFO] Skipping fonts.\n")
	} else {
		logger.Section("Installing fonts")
		fonts := &FontInstaller{Dir: cfg.FontDir, Downloader: o.Deps.Downloader, Runner: o.Deps.Runner, GitHub: o.Deps.GitHub}
		rep.FontsErr = fonts.Sync(ctx, cfg.Fonts, st)
	}

	var errs []error

	logger.Section("Synchronizing plugins, themes and tools")
	results, err := NewSynchronizer(cfg, o.Deps.VCS, o.Deps.Runner).Sync(ctx, cfg.Resources)
	rep.Resources = results
	o.recordResources(st, results)
	if err != nil {
		if !cfg.KeepGoing {
			return rep, err
		}
		errs = append(errs, err)
	}

	logger.Section("Installing shell configuration")
	sc := &ShellConfigurer{Cfg: cfg, VCS: o.Deps.VCS, Now: o.Deps.Now}
	rep.ShellConfig, err = sc.Install(ctx)
	for _, b := range []string{rep.ShellConfig.RC.BackupPath, rep.ShellConfig.Framework.BackupPath} {
		if b != "" {
			st.RecordBackup(b)
		}
	}
	if err != nil {
		err = fmt.Errorf("shell configuration: %w", err)
		if !cfg.KeepGoing {
			return rep, err
		}
		errs = append(errs, err)
	}

	logger.Section("Switching shell")
	rep.Switch = NewShellSwitcher(cfg, o.Deps.Runner).Switch(ctx)

	return rep, errors.Join(errs...)
}

func (o *Orchestrator) recordResources(st *state.State, results []SyncResult) {
	for _, r := range results {
		if r.Err != nil || r.Action == "" {
			continue
		}
		st.Resources[r.Resource.Name] = state.ResourceState{
			LocalPath:  r.Resource.LocalPath,
			Remote:     r.Resource.RemoteURL,
			LastAction: string(r.Action),
			SyncedAt:   o.Deps.Now(),
		}
	}
}
