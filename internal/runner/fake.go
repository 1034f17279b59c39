package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Fake records commands instead of running them. Tests configure which
// binaries exist, which command lines fail and what Output returns.
type Fake struct {
	mu sync.Mutex

	// Paths maps binary names to the path LookPath reports.
	Paths map[string]string
	// Failures maps a command-line prefix to the error it returns. Prefixes
	// match with or without a leading sudo.
	Failures map[string]error
	// Outputs maps a command-line prefix to what Output returns.
	Outputs map[string]string
	// OnRun, when set, is called for every command after it is recorded,
	// letting tests emulate side effects such as a clone creating a directory.
	OnRun func(c Command) error

	Commands []Command
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{
		Paths:    make(map[string]string),
		Failures: make(map[string]error),
		Outputs:  make(map[string]string),
	}
}

// ErrNotFound is returned by Fake.LookPath for unknown binaries.
var ErrNotFound = errors.New("executable file not found in $PATH")

func (f *Fake) Run(ctx context.Context, c Command) error {
	_, err := f.Output(ctx, c)
	return err
}

func (f *Fake) Output(_ context.Context, c Command) (string, error) {
	f.mu.Lock()
	f.Commands = append(f.Commands, c)
	line := c.String()
	match := func(prefix string) bool {
		return strings.HasPrefix(line, prefix) || strings.HasPrefix(strings.TrimPrefix(line, "sudo "), prefix)
	}
	var out string
	for prefix, o := range f.Outputs {
		if match(prefix) {
			out = o
		}
	}
	var failure error
	for prefix, err := range f.Failures {
		if match(prefix) {
			failure = err
		}
	}
	hook := f.OnRun
	f.mu.Unlock()

	if failure != nil {
		return out, &CommandError{Cmd: line, Err: failure}
	}
	if hook != nil {
		if err := hook(c); err != nil {
			return out, &CommandError{Cmd: line, Err: err}
		}
	}
	return out, nil
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", ErrNotFound
}

// Lines returns every recorded command line, with a leading "sudo " removed
// so assertions do not depend on the uid tests run under.
func (f *Fake) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.Commands))
	for _, c := range f.Commands {
		lines = append(lines, strings.TrimPrefix(c.String(), "sudo "))
	}
	return lines
}

// Ran reports whether a recorded command line starts with prefix.
func (f *Fake) Ran(prefix string) bool {
	for _, l := range f.Lines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
