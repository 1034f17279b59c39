package main

import (
	"zsh-setup/cmd"
)

// main hands over to the CLI.
//
// zsh-setup bootstraps a zsh environment on a fresh machine:
//   - detects the platform family from release metadata and uname
//   - installs zsh and its companion packages through pacapt, or Homebrew on macOS
//   - clones or updates plugins, themes and tools into the framework root
//   - backs up and installs ~/.zshrc and the framework checkout
//   - changes the login shell and starts a login zsh
//
// Every step is idempotent: a second run pulls instead of cloning and
// refreshes the dated backups of the day.
func main() {
	cmd.Execute()
}
