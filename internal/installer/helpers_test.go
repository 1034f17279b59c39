package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"zsh-setup/internal/config"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// testEnv returns a minimal environment rooted at a fresh home directory.
func testEnv(t *testing.T) map[string]string {
	t.Helper()
	home := t.TempDir()
	return map[string]string{
		"HOME":           home,
		"USER":           "tester",
		"SHELL":          "/bin/bash",
		"XDG_STATE_HOME": filepath.Join(home, ".local", "state"),
		"XDG_DATA_HOME":  filepath.Join(home, ".local", "share"),
	}
}

func testConfig(t *testing.T, env map[string]string, flags config.Flags) config.Config {
	t.Helper()
	cfg, err := config.Load(func(k string) string { return env[k] }, flags)
	require.NoError(t, err)
	return cfg
}

// fakeDownloader writes canned content instead of fetching URLs.
type fakeDownloader struct {
	Content map[string]string
	Fail    map[string]error
	Calls   []string
}

func newFakeDownloader() *fakeDownloader {
	return &fakeDownloader{Content: map[string]string{}, Fail: map[string]error{}}
}

func (d *fakeDownloader) Download(_ context.Context, url, dest string) error {
	d.Calls = append(d.Calls, url)
	if err := d.Fail[url]; err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	body, ok := d.Content[url]
	if !ok {
		body = "content of " + url
	}
	return os.WriteFile(dest, []byte(body), 0644)
}

// fakeVCS emulates git on the filesystem: Clone and Checkout create the
// target directory, Pull only records the call.
type fakeVCS struct {
	Calls []string
	Fail  map[string]error
}

func newFakeVCS() *fakeVCS { return &fakeVCS{Fail: map[string]error{}} }

func (v *fakeVCS) record(op, target string) error {
	v.Calls = append(v.Calls, op+" "+target)
	for prefix, err := range v.Fail {
		if strings.HasPrefix(op+" "+target, prefix) {
			return err
		}
	}
	return nil
}

func (v *fakeVCS) Clone(_ context.Context, remote, dest string, opts CloneOptions) error {
	if err := v.record("clone", dest); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dest, ".git"), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "README"), []byte(fmt.Sprintf("%s depth=%d", remote, opts.Depth)), 0644)
}

func (v *fakeVCS) Pull(_ context.Context, dir string) error {
	return v.record("pull", dir)
}

func (v *fakeVCS) Checkout(_ context.Context, remote, dir, branch string) error {
	if err := v.record("checkout", dir); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "oh-my-zsh.sh"), []byte("# "+remote+" "+branch+"\n"), 0644)
}

func (v *fakeVCS) count(op string) int {
	n := 0
	for _, c := range v.Calls {
		if strings.HasPrefix(c, op+" ") {
			n++
		}
	}
	return n
}
