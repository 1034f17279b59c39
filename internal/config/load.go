package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"zsh-setup/internal/platform"
)

const appName = "zsh-setup"

// Flags are the command-line switches that feed into Load.
type Flags struct {
	ConfigFile      string
	SkipShellChange bool
	Unattended      bool
	KeepRC          bool
	SkipFonts       bool
	KeepGoing       bool
	Debug           bool
}

// Load assembles the run configuration: defaults, then the optional YAML
// file, then the environment, then flags. getenv is os.Getenv in production.
func Load(getenv func(string) string, flags Flags) (Config, error) {
	home := getenv("HOME")
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		home = h
	}

	cfg := Defaults(home)
	cfg.User = getenv("USER")
	if cfg.User == "" {
		if u, err := user.Current(); err == nil {
			cfg.User = u.Username
		}
	}
	cfg.Shell = getenv("SHELL")

	customSet := false
	if flags.ConfigFile != "" {
		fc, err := readFile(flags.ConfigFile)
		if err != nil {
			return Config{}, err
		}
		if customSet, err = fc.apply(&cfg); err != nil {
			return Config{}, fmt.Errorf("invalid config %s: %w", flags.ConfigFile, err)
		}
	}

	applyEnv(&cfg, getenv, customSet)
	applyFlags(&cfg, flags)

	stateHome := getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = xdg.StateHome
	}
	cfg.StatePath = filepath.Join(stateHome, appName, "state.json")
	cfg.LogPath = filepath.Join(stateHome, appName, appName+".log")

	if cfg.FontDir == "" {
		cfg.FontDir = defaultFontDir(getenv, home)
	}
	cfg.FontDir = expandHome(cfg.FontDir, home)

	resolveResourcePaths(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string, customSet bool) {
	if v := getenv("ZSH"); v != "" {
		cfg.FrameworkRoot = expandHome(v, cfg.Home)
		if !customSet {
			cfg.CustomRoot = filepath.Join(cfg.FrameworkRoot, "custom")
		}
	}
	if v := getenv("ZSH_CUSTOM"); v != "" {
		cfg.CustomRoot = expandHome(v, cfg.Home)
	}
	if v := getenv("REPO"); v != "" {
		cfg.Framework.Repo = v
		cfg.Framework.Remote = "https://github.com/" + v + ".git"
	}
	if v := getenv("REMOTE"); v != "" {
		cfg.Framework.Remote = v
	}
	if v := getenv("BRANCH"); v != "" {
		cfg.Framework.Branch = v
	}
	if isNo(getenv("CHSH")) {
		cfg.SkipShellChange = true
	}
	if isNo(getenv("RUNZSH")) {
		cfg.SkipPostRun = true
	}
	if isYes(getenv("KEEP_ZSHRC")) {
		cfg.KeepRC = true
	}
	if isYes(getenv("SKIP_FONTS")) {
		cfg.SkipFonts = true
	}
}

func applyFlags(cfg *Config, flags Flags) {
	if flags.SkipShellChange {
		cfg.SkipShellChange = true
	}
	if flags.Unattended {
		cfg.SkipShellChange = true
		cfg.SkipPostRun = true
	}
	if flags.KeepRC {
		cfg.KeepRC = true
	}
	if flags.SkipFonts {
		cfg.SkipFonts = true
	}
	if flags.KeepGoing {
		cfg.KeepGoing = true
	}
	if flags.Debug {
		cfg.Debug = true
	}
}

// defaultFontDir follows XDG_DATA_HOME when it is set and otherwise takes
// the first per-user font directory of the platform (~/Library/Fonts on macOS).
func defaultFontDir(getenv func(string) string, home string) string {
	if v := getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, "fonts")
	}
	if len(xdg.FontDirs) > 0 && strings.HasPrefix(xdg.FontDirs[0], xdg.Home) && xdg.Home != "" {
		return filepath.Join(home, strings.TrimPrefix(xdg.FontDirs[0], xdg.Home))
	}
	return filepath.Join(home, ".local", "share", "fonts")
}

// resolveResourcePaths fills in LocalPath from the kind and makes relative
// paths absolute under the home directory.
func resolveResourcePaths(cfg *Config) {
	for i := range cfg.Resources {
		r := &cfg.Resources[i]
		switch {
		case r.LocalPath == "" && r.Kind == KindPlugin:
			r.LocalPath = filepath.Join(cfg.CustomRoot, "plugins", r.Name)
		case r.LocalPath == "" && r.Kind == KindTheme:
			r.LocalPath = filepath.Join(cfg.CustomRoot, "themes", r.Name)
		case r.LocalPath == "":
			r.LocalPath = filepath.Join(cfg.FrameworkRoot, r.Name)
		default:
			r.LocalPath = expandHome(r.LocalPath, cfg.Home)
			if !filepath.IsAbs(r.LocalPath) {
				r.LocalPath = filepath.Join(cfg.Home, r.LocalPath)
			}
		}
		r.LocalPath = filepath.Clean(r.LocalPath)
	}
}

// Validate checks the invariants every stage relies on.
func (c Config) Validate() error {
	for _, f := range platform.Families() {
		if _, ok := c.Packages[f]; !ok {
			return fmt.Errorf("no package list for platform %s", f)
		}
	}
	if len(c.Packages[platform.Unknown]) > 0 {
		return fmt.Errorf("packages cannot be declared for an unknown platform")
	}

	names := make(map[string]bool)
	paths := make(map[string]string)
	for _, r := range c.Resources {
		if r.Name == "" || r.RemoteURL == "" {
			return fmt.Errorf("resource %q needs both a name and a remote", r.Name)
		}
		switch r.Kind {
		case KindPlugin, KindTheme, KindTool:
		default:
			return fmt.Errorf("resource %s has unknown kind %q", r.Name, r.Kind)
		}
		if names[r.Name] {
			return fmt.Errorf("duplicate resource name %s", r.Name)
		}
		names[r.Name] = true
		if other, ok := paths[r.LocalPath]; ok {
			return fmt.Errorf("resources %s and %s share the path %s", other, r.Name, r.LocalPath)
		}
		paths[r.LocalPath] = r.Name
	}

	for _, f := range c.Fonts {
		switch f.Source {
		case "url":
			if len(f.URLs) == 0 {
				return fmt.Errorf("font %s has no urls", f.Name)
			}
		case "github":
			if f.Repo == "" || f.Tag == "" || f.Asset == "" {
				return fmt.Errorf("font %s needs repo, tag and asset", f.Name)
			}
		default:
			return fmt.Errorf("font %s has unknown source %q", f.Name, f.Source)
		}
	}
	return nil
}

func expandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}

func isYes(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func isNo(v string) bool {
	switch strings.ToLower(v) {
	case "no", "n", "false", "0":
		return true
	}
	return false
}
