package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"zsh-setup/internal/platform"
)

// fileConfig mirrors the optional YAML file. Every field is an override;
// anything left out keeps its default.
type fileConfig struct {
	Shell     string `yaml:"shell"`
	Framework struct {
		Root          string `yaml:"root"`
		Custom        string `yaml:"custom"`
		Repo          string `yaml:"repo"`
		Remote        string `yaml:"remote"`
		Branch        string `yaml:"branch"`
		Theme         string `yaml:"theme"`
		UpdateCommand string `yaml:"update_command"`
	} `yaml:"framework"`
	Packages  map[string][]string `yaml:"packages"`
	MacAddons []string            `yaml:"mac_addons"`
	Resources []ManagedResource   `yaml:"resources"`
	Fonts     []Font              `yaml:"fonts"`
	FontDir   string              `yaml:"font_dir"`
}

// readFile reads and parses the YAML configuration at path.
func readFile(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return &fc, nil
}

// apply overlays the file onto cfg. It reports whether the custom root was
// set explicitly, so a later $ZSH does not move it.
func (fc *fileConfig) apply(cfg *Config) (bool, error) {
	if fc.Shell != "" {
		cfg.ShellBinary = fc.Shell
	}

	customSet := false
	fw := fc.Framework
	if fw.Root != "" {
		cfg.FrameworkRoot = expandHome(fw.Root, cfg.Home)
		cfg.CustomRoot = filepath.Join(cfg.FrameworkRoot, "custom")
	}
	if fw.Custom != "" {
		cfg.CustomRoot = expandHome(fw.Custom, cfg.Home)
		customSet = true
	}
	if fw.Repo != "" {
		cfg.Framework.Repo = fw.Repo
		cfg.Framework.Remote = "https://github.com/" + fw.Repo + ".git"
	}
	if fw.Remote != "" {
		cfg.Framework.Remote = fw.Remote
	}
	if fw.Branch != "" {
		cfg.Framework.Branch = fw.Branch
	}
	if fw.Theme != "" {
		cfg.Framework.Theme = fw.Theme
	}
	if fw.UpdateCommand != "" {
		cfg.Framework.UpdateCommand = fw.UpdateCommand
	}

	for name, pkgs := range fc.Packages {
		family, err := platform.ParseFamily(name)
		if err != nil {
			return false, err
		}
		cfg.Packages[family] = pkgs
	}
	if fc.MacAddons != nil {
		cfg.MacAddons = fc.MacAddons
	}
	if fc.Resources != nil {
		cfg.Resources = fc.Resources
	}
	if fc.Fonts != nil {
		cfg.Fonts = fc.Fonts
	}
	if fc.FontDir != "" {
		cfg.FontDir = fc.FontDir
	}
	return customSet, nil
}
