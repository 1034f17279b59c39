// Package runner executes external commands on behalf of the installer.
//
// Every effect on the host (package managers, git, chsh, sudo) goes through
// the Runner interface so the provisioning logic can be exercised with Fake.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"zsh-setup/internal/logger"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env entries are appended to the inherited environment.
	Env []string
	// Stdin, when set, is fed to the process.
	Stdin string
	// Interactive attaches the terminal's stdin so the command can prompt.
	Interactive bool
}

// String renders the command line for logs and test assertions.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner runs commands. Run streams output to the terminal, Output captures it.
type Runner interface {
	Run(ctx context.Context, c Command) error
	Output(ctx context.Context, c Command) (string, error)
	LookPath(name string) (string, error)
}

// CommandError is returned when a command cannot start or exits non-zero.
type CommandError struct {
	Cmd    string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("command %q failed: %v\nOutput: %s", e.Cmd, e.Err, strings.TrimSpace(e.Output))
	}
	return fmt.Sprintf("command %q failed: %v", e.Cmd, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Exec runs commands with os/exec.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec wired to the process stdout and stderr.
func NewExec() *Exec {
	return &Exec{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e *Exec) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	switch {
	case c.Stdin != "":
		cmd.Stdin = strings.NewReader(c.Stdin)
	case c.Interactive:
		cmd.Stdin = os.Stdin
	}
	logger.Debug("[DEBUG] Running command: %s\n", c)
	return cmd
}

// Run executes c, streaming its stdout and stderr.
func (e *Exec) Run(ctx context.Context, c Command) error {
	cmd := e.command(ctx, c)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return &CommandError{Cmd: c.String(), Err: err}
	}
	return nil
}

// Output executes c and returns its combined output.
func (e *Exec) Output(ctx context.Context, c Command) (string, error) {
	cmd := e.command(ctx, c)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return buf.String(), &CommandError{Cmd: c.String(), Output: buf.String(), Err: err}
	}
	return buf.String(), nil
}

// LookPath resolves name on PATH.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Elevate prefixes c with sudo unless the process already runs as root.
func Elevate(c Command) Command {
	if os.Geteuid() == 0 {
		return c
	}
	return Command{
		Name:        "sudo",
		Args:        append([]string{c.Name}, c.Args...),
		Dir:         c.Dir,
		Env:         c.Env,
		Stdin:       c.Stdin,
		Interactive: true,
	}
}
