package config

import (
	"path/filepath"

	"zsh-setup/internal/platform"
)

// ResourceKind tells where a managed resource lives by default.
type ResourceKind string

const (
	KindPlugin ResourceKind = "plugin"
	KindTheme  ResourceKind = "theme"
	KindTool   ResourceKind = "tool"
)

// Hook is a command run inside a resource checkout after it is synced.
// $DIR, $HOME, $ZSH and $ZSH_CUSTOM are expanded in Args.
// - RunOnUpdate: also run after a pull, not only after the first clone.
type Hook struct {
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args"`
	RunOnUpdate bool     `yaml:"run_on_update"`
}

// ManagedResource is an external plugin, theme or tool kept as a git checkout.
// - LocalPath: absolute once the config is loaded; its existence alone decides clone vs pull.
// - Depth: clone depth, 0 means full history.
type ManagedResource struct {
	Name        string       `yaml:"name"`
	RemoteURL   string       `yaml:"remote"`
	LocalPath   string       `yaml:"path"`
	Kind        ResourceKind `yaml:"kind"`
	Depth       int          `yaml:"depth"`
	Branch      string       `yaml:"branch"`
	PostInstall *Hook        `yaml:"post_install"`
}

// PackageSets maps every platform family to the packages installed on it.
type PackageSets map[platform.Family][]string

// For returns a copy of the package list for f; Unknown always yields none.
func (p PackageSets) For(f platform.Family) []string {
	if f == platform.Unknown {
		return nil
	}
	return append([]string(nil), p[f]...)
}

// BackupPolicy says what happens to a pre-existing shell config target.
type BackupPolicy int

const (
	// BackupDated copies the target to "<path>_backup_<date>".
	BackupDated BackupPolicy = iota
	// BackupNone leaves the target alone and skips the backup.
	BackupNone
)

// ShellConfigTarget is the run-control file or the framework root.
type ShellConfigTarget struct {
	Path         string
	BackupPolicy BackupPolicy
}

// Font represents a downloadable font, either plain files or a GitHub release archive.
// - Source: "url" (download every entry of URLs) or "github" (release asset of Repo@Tag).
type Font struct {
	Name   string   `yaml:"name"`
	Source string   `yaml:"source"`
	URLs   []string `yaml:"urls"`
	Repo   string   `yaml:"repo"`  // GitHub repo, e.g. ryanoasis/nerd-fonts
	Tag    string   `yaml:"tag"`   // GitHub release tag, e.g. v3.2.1
	Asset  string   `yaml:"asset"` // Release asset name, e.g. Meslo.tar.xz
}

// Shim describes the universal package-manager adapter used off macOS.
type Shim struct {
	Name string
	URL  string
	Path string
}

// Framework is the zsh framework checked out into the framework root.
type Framework struct {
	Repo          string
	Remote        string
	Branch        string
	Theme         string
	UpdateCommand string
}

// Config is assembled once by Load and passed by value to every stage.
type Config struct {
	Home string
	User string
	// Shell is the user's current login shell ($SHELL).
	Shell string

	FrameworkRoot string // $ZSH
	CustomRoot    string // $ZSH_CUSTOM
	Framework     Framework

	// ShellBinary is the shell switched to and exec'd at the end.
	ShellBinary string

	SkipShellChange bool // CHSH=no
	SkipPostRun     bool // RUNZSH=no
	KeepRC          bool // KEEP_ZSHRC=yes
	SkipFonts       bool
	KeepGoing       bool
	Debug           bool

	Packages  PackageSets
	MacAddons []string
	Shim      Shim
	BrewURL   string

	Resources []ManagedResource
	Fonts     []Font
	FontDir   string

	StatePath string
	LogPath   string
}

// RCTarget is the run-control file target.
func (c Config) RCTarget() ShellConfigTarget {
	t := ShellConfigTarget{Path: filepath.Join(c.Home, ".zshrc")}
	if c.KeepRC {
		t.BackupPolicy = BackupNone
	}
	return t
}

// FrameworkTarget is the framework root target.
func (c Config) FrameworkTarget() ShellConfigTarget {
	return ShellConfigTarget{Path: c.FrameworkRoot}
}

// Plugins returns the names of managed plugins, in configuration order.
func (c Config) Plugins() []string {
	var names []string
	for _, r := range c.Resources {
		if r.Kind == KindPlugin {
			names = append(names, r.Name)
		}
	}
	return names
}
