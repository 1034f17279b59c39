//go:build unix

package cmd

import "syscall"

// execShell replaces the current process with the shell.
var execShell = func(path string, argv, env []string) error {
	return syscall.Exec(path, argv, env)
}
