package platform

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"zsh-setup/internal/logger"
	"zsh-setup/internal/runner"
)

// ReleaseGlobs are the release metadata files read on Linux.
var ReleaseGlobs = []string{"/etc/*-release", "/usr/lib/os-release"}

// Probe collects detection inputs from the running host.
// OSTYPE is a shell variable that is rarely exported, so runtime.GOOS fills
// in for it when it is missing.
func Probe(ctx context.Context, getenv func(string) string, r runner.Runner, globs []string) Inputs {
	in := Inputs{
		OSType:       getenv("OSTYPE"),
		ReleaseFiles: make(map[string]string),
	}
	if in.OSType == "" {
		in.OSType = runtime.GOOS
	}

	if out, err := r.Output(ctx, runner.Command{Name: "uname", Args: []string{"-s"}}); err == nil {
		in.KernelName = strings.TrimSpace(out)
	} else {
		logger.Debug("[DEBUG] uname failed: %v\n", err)
	}

	if strings.HasPrefix(strings.ToLower(in.OSType), "linux") || strings.EqualFold(in.KernelName, "linux") {
		in.ReleaseFiles = readReleaseFiles(globs)
	}
	return in
}

func readReleaseFiles(globs []string) map[string]string {
	files := make(map[string]string)
	for _, pattern := range globs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Debug("[DEBUG] Skipping unreadable release file %s: %v\n", path, err)
				continue
			}
			files[path] = string(data)
		}
	}
	return files
}
