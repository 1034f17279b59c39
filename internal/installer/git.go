package installer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"zsh-setup/internal/runner"
)

// CloneOptions narrow what Clone fetches.
type CloneOptions struct {
	Depth  int
	Branch string
}

// VersionControl is the subset of git the installer needs.
type VersionControl interface {
	// Clone creates dest as a fresh checkout of remote.
	Clone(ctx context.Context, remote, dest string, opts CloneOptions) error
	// Pull fast-forwards the checkout at dir from its remote.
	Pull(ctx context.Context, dir string) error
	// Checkout turns dir, which may already hold untracked files, into a
	// shallow checkout of remote at branch.
	Checkout(ctx context.Context, remote, dir, branch string) error
}

// Git implements VersionControl with the git command line.
type Git struct {
	Runner runner.Runner
}

func (g *Git) Clone(ctx context.Context, remote, dest string, opts CloneOptions) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	args := []string{"clone"}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	args = append(args, remote, dest)
	return g.Runner.Run(ctx, runner.Command{Name: "git", Args: args})
}

func (g *Git) Pull(ctx context.Context, dir string) error {
	return g.Runner.Run(ctx, runner.Command{Name: "git", Args: []string{"pull", "--ff-only"}, Dir: dir})
}

func (g *Git) Checkout(ctx context.Context, remote, dir, branch string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	steps := [][]string{
		{"init", "--quiet"},
		{"config", "core.eol", "lf"},
		{"config", "core.autocrlf", "false"},
		{"config", "remote.origin.url", remote},
		{"config", "remote.origin.fetch", "+refs/heads/" + branch + ":refs/remotes/origin/" + branch},
		{"fetch", "--depth=1", "origin"},
		{"checkout", "-f", "-B", branch, "origin/" + branch},
	}
	for _, args := range steps {
		if err := g.Runner.Run(ctx, runner.Command{Name: "git", Args: args, Dir: dir}); err != nil {
			return err
		}
	}
	return nil
}
