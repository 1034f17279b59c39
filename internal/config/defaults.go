package config

import (
	"path/filepath"

	"zsh-setup/internal/platform"
)

const (
	defaultRepo          = "ohmyzsh/ohmyzsh"
	defaultBranch        = "master"
	defaultTheme         = "powerlevel10k/powerlevel10k"
	defaultUpdateCommand = "omz update"

	pacaptURL  = "https://github.com/icy/pacapt/raw/ng/pacapt"
	pacaptPath = "/usr/local/bin/pacapt"
	brewURL    = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

	mesloBase = "https://github.com/romkatv/powerlevel10k-media/raw/master/"
)

// DefaultPackages is the package list installed on each platform family.
func DefaultPackages() PackageSets {
	return PackageSets{
		platform.Unknown: {},
		platform.Arch:    {"zsh", "git", "curl", "wget", "python-pip", "fzf", "bat", "fd"},
		platform.Debian:  {"zsh", "git", "curl", "wget", "python3-pip", "fzf", "bat", "fd-find", "fonts-powerline"},
		platform.RHEL:    {"zsh", "git", "curl", "wget", "python3-pip", "util-linux-user", "fzf", "fd-find"},
		platform.MacOS:   {"zsh", "git", "curl", "wget", "fzf", "bat", "fd"},
		platform.BSD:     {"zsh", "git", "curl", "wget", "py311-pip", "fzf", "bat", "fd-find"},
	}
}

// DefaultResources is the static list of plugins, themes and tools.
// LocalPath is left empty and resolved from the kind by Load.
func DefaultResources() []ManagedResource {
	return []ManagedResource{
		{Name: "zsh-autosuggestions", RemoteURL: "https://github.com/zsh-users/zsh-autosuggestions", Kind: KindPlugin, Depth: 1},
		{Name: "zsh-syntax-highlighting", RemoteURL: "https://github.com/zsh-users/zsh-syntax-highlighting", Kind: KindPlugin, Depth: 1},
		{Name: "zsh-completions", RemoteURL: "https://github.com/zsh-users/zsh-completions", Kind: KindPlugin, Depth: 1},
		{Name: "zsh-history-substring-search", RemoteURL: "https://github.com/zsh-users/zsh-history-substring-search", Kind: KindPlugin, Depth: 1},
		{Name: "powerlevel10k", RemoteURL: "https://github.com/romkatv/powerlevel10k", Kind: KindTheme, Depth: 1},
		{
			Name:      "fzf",
			RemoteURL: "https://github.com/junegunn/fzf",
			Kind:      KindTool,
			Depth:     1,
			PostInstall: &Hook{
				Command:     "./install",
				Args:        []string{"--key-bindings", "--completion", "--no-update-rc", "--no-bash", "--no-fish"},
				RunOnUpdate: true,
			},
		},
		{
			Name:      "autojump",
			RemoteURL: "https://github.com/wting/autojump",
			Kind:      KindTool,
			PostInstall: &Hook{
				Command: "python3",
				Args:    []string{"install.py", "--destdir", "$HOME/.autojump"},
			},
		},
	}
}

// DefaultFonts are the MesloLGS NF files powerlevel10k renders best with.
func DefaultFonts() []Font {
	return []Font{{
		Name:   "MesloLGS NF",
		Source: "url",
		URLs: []string{
			mesloBase + "MesloLGS%20NF%20Regular.ttf",
			mesloBase + "MesloLGS%20NF%20Bold.ttf",
			mesloBase + "MesloLGS%20NF%20Italic.ttf",
			mesloBase + "MesloLGS%20NF%20Bold%20Italic.ttf",
		},
	}}
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults(home string) Config {
	root := filepath.Join(home, ".oh-my-zsh")
	return Config{
		Home:          home,
		FrameworkRoot: root,
		CustomRoot:    filepath.Join(root, "custom"),
		Framework: Framework{
			Repo:          defaultRepo,
			Remote:        "https://github.com/" + defaultRepo + ".git",
			Branch:        defaultBranch,
			Theme:         defaultTheme,
			UpdateCommand: defaultUpdateCommand,
		},
		ShellBinary: "zsh",
		Packages:    DefaultPackages(),
		MacAddons:   []string{"pygments"},
		Shim:        Shim{Name: "pacapt", URL: pacaptURL, Path: pacaptPath},
		BrewURL:     brewURL,
		Resources:   DefaultResources(),
		Fonts:       DefaultFonts(),
	}
}
