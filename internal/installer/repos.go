package installer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"zsh-setup/internal/config"
	"zsh-setup/internal/logger"
	"zsh-setup/internal/runner"
)

// SyncAction says what happened to a resource.
type SyncAction string

const (
	ActionCloned  SyncAction = "cloned"
	ActionUpdated SyncAction = "updated"
)

// SyncResult is the outcome for one managed resource.
type SyncResult struct {
	Resource config.ManagedResource
	Action   SyncAction
	Err      error
}

// Synchronizer keeps managed resources cloned and up to date.
type Synchronizer struct {
	VCS    VersionControl
	Runner runner.Runner
	// Vars are expanded in hook arguments ($HOME, $ZSH, $ZSH_CUSTOM).
	Vars map[string]string
	// KeepGoing continues with the next resource after a failure.
	KeepGoing bool
}

// NewSynchronizer builds a Synchronizer from the run configuration.
func NewSynchronizer(cfg config.Config, vcs VersionControl, r runner.Runner) *Synchronizer {
	return &Synchronizer{
		VCS:    vcs,
		Runner: r,
		Vars: map[string]string{
			"HOME":       cfg.Home,
			"ZSH":        cfg.FrameworkRoot,
			"ZSH_CUSTOM": cfg.CustomRoot,
		},
		KeepGoing: cfg.KeepGoing,
	}
}

// Sync processes resources one at a time in the given order. It stops at the
// first failure unless KeepGoing is set, in which case all failures are joined.
func (s *Synchronizer) Sync(ctx context.Context, resources []config.ManagedResource) ([]SyncResult, error) {
	results := make([]SyncResult, 0, len(resources))
	var errs []error

	for _, res := range resources {
		action, err := s.SyncOne(ctx, res)
		results = append(results, SyncResult{Resource: res, Action: action, Err: err})
		if err == nil {
			continue
		}
		err = fmt.Errorf("sync %s: %w", res.Name, err)
		if !s.KeepGoing {
			return results, err
		}
		logger.Error("[ERROR] %v\n", err)
		errs = append(errs, err)
	}
	return results, errors.Join(errs...)
}

// SyncOne clones res when its local path is missing and pulls it otherwise,
// then runs its post-install hook when one applies.
func (s *Synchronizer) SyncOne(ctx context.Context, res config.ManagedResource) (SyncAction, error) {
	exists, err := pathExists(res.LocalPath)
	if err != nil {
		return "", err
	}

	var action SyncAction
	if exists {
		logger.Info("[INFO] Updating %s %s\n", res.Kind, res.Name)
		if err := s.VCS.Pull(ctx, res.LocalPath); err != nil {
			return "", err
		}
		action = ActionUpdated
	} else {
		logger.Info("[INFO] Cloning %s %s into %s\n", res.Kind, res.Name, res.LocalPath)
		opts := CloneOptions{Depth: res.Depth, Branch: res.Branch}
		if err := s.VCS.Clone(ctx, res.RemoteURL, res.LocalPath, opts); err != nil {
			return "", err
		}
		action = ActionCloned
	}

	hook := res.PostInstall
	if hook != nil && (action == ActionCloned || hook.RunOnUpdate) {
		if err := s.runHook(ctx, res, hook); err != nil {
			return action, fmt.Errorf("post-install: %w", err)
		}
	}
	return action, nil
}

func (s *Synchronizer) runHook(ctx context.Context, res config.ManagedResource, hook *config.Hook) error {
	vars := map[string]string{"DIR": res.LocalPath}
	for k, v := range s.Vars {
		vars[k] = v
	}
	args := make([]string, len(hook.Args))
	for i, a := range hook.Args {
		args[i] = os.Expand(a, func(k string) string { return vars[k] })
	}
	logger.Debug("[DEBUG] Running post-install hook for %s\n", res.Name)
	return s.Runner.Run(ctx, runner.Command{Name: hook.Command, Args: args, Dir: res.LocalPath})
}
