package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zsh-setup/internal/config"
	"zsh-setup/internal/installer"
	"zsh-setup/internal/logger"
)

// ErrNoSupportedPlatform makes the run exit non-zero when packages could
// not be installed because the platform was not recognised.
var ErrNoSupportedPlatform = errors.New("no supported platform detected")

// cliFlags holds the command-line switches, bound in init.
var cliFlags config.Flags

// rootCmd is the only command: it provisions the zsh environment.
var rootCmd = &cobra.Command{
	Use:   "zsh-setup",
	Short: "Provision a zsh environment with plugins, themes and tools",
	Long: `zsh-setup installs zsh and its companion packages, clones or updates
plugins, themes and tools, installs the shell configuration with dated
backups, switches the login shell and finally starts zsh.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), os.Getenv, cliFlags, installer.DefaultDeps())
	},
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&cliFlags.SkipShellChange, "skip-chsh", false, "Do not change the login shell")
	f.BoolVar(&cliFlags.Unattended, "unattended", false, "Do not change the login shell and do not start zsh at the end")
	f.BoolVar(&cliFlags.KeepRC, "keep-zshrc", false, "Leave an existing ~/.zshrc alone, without a backup")
	f.BoolVar(&cliFlags.SkipFonts, "skip-fonts", false, "Do not install fonts")
	f.BoolVar(&cliFlags.KeepGoing, "keep-going", false, "Continue after a failed resource or shell configuration step")
	f.StringVarP(&cliFlags.ConfigFile, "config", "c", "", "Path to a YAML configuration file")
	f.BoolVar(&cliFlags.Debug, "debug", false, "Enable debug logging")
}

// run provisions the environment and, unless the post-install run is
// skipped, replaces the process with a login zsh whether or not the login
// shell could be changed.
func run(ctx context.Context, getenv func(string) string, flags config.Flags, deps installer.Deps) error {
	deps.Getenv = getenv
	cfg, err := config.Load(getenv, flags)
	if err != nil {
		return err
	}

	logger.Init(cfg.Debug)
	logger.InitHyperlinks(getenv)
	closer, err := logger.OpenRunLog(cfg.LogPath)
	if err != nil {
		logger.Warn("[WARN] Run log disabled: %v\n", err)
	}
	defer func() {
		if closer != nil {
			closer.Close()
		}
	}()

	logger.Banner("Framework: " + logger.Link(cfg.Framework.Remote, cfg.Framework.Repo))

	rep, err := installer.NewOrchestrator(cfg, deps).Run(ctx)
	if err != nil {
		return err
	}
	if rep.Unsupported() {
		return ErrNoSupportedPlatform
	}
	// A failed shell switch still ends in zsh; only a missing binary stops it.
	if cfg.SkipPostRun || rep.Switch.ShellPath == "" {
		return nil
	}

	if closer != nil {
		closer.Close()
		closer = nil
	}
	return execShell(rep.Switch.ShellPath, []string{cfg.ShellBinary, "-l"}, os.Environ())
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("[ERROR] %v\n", err)
		stop()
		os.Exit(1)
	}
}
