package installer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"

	"zsh-setup/internal/config"
	"zsh-setup/internal/logger"
	"zsh-setup/internal/runner"
	"zsh-setup/internal/state"
)

// ReleaseResolver finds the download URL of a release asset.
type ReleaseResolver interface {
	ReleaseAsset(ctx context.Context, repo, tag, asset string) (string, error)
}

// FontInstaller keeps the configured fonts installed in Dir.
type FontInstaller struct {
	Dir        string
	Downloader Downloader
	Runner     runner.Runner
	GitHub     ReleaseResolver
}

// Sync installs missing fonts, removes fonts no longer configured and
// refreshes the font cache when anything changed. Every failure is logged;
// the joined error is returned for the report.
func (f *FontInstaller) Sync(ctx context.Context, fonts []config.Font, st *state.State) error {
	var errs []error
	changed := false
	wanted := make(map[string]bool, len(fonts))

	for _, font := range fonts {
		wanted[font.Name] = true
		if fs, ok := st.Fonts[font.Name]; ok && filesPresent(fs.Files) {
			logger.Debug("[DEBUG] Font %s already installed\n", font.Name)
			continue
		}
		fs, err := f.install(ctx, font)
		if err != nil {
			logger.Warn("[WARN] Failed to install font %s: %v\n", font.Name, err)
			errs = append(errs, fmt.Errorf("font %s: %w", font.Name, err))
			continue
		}
		logger.Info("[INFO] Installed font %s (%d files)\n", font.Name, len(fs.Files))
		st.Fonts[font.Name] = fs
		changed = true
	}

	for _, name := range sortedFontNames(st.Fonts) {
		if wanted[name] {
			continue
		}
		logger.Info("[INFO] Uninstalling font %s: not in configuration\n", name)
		if uninstallFont(name, st.Fonts[name]) {
			delete(st.Fonts, name)
			changed = true
		}
	}

	if changed {
		f.refreshCache(ctx)
	}
	return errors.Join(errs...)
}

func (f *FontInstaller) install(ctx context.Context, font config.Font) (state.FontState, error) {
	switch font.Source {
	case "url", "":
		return f.installFromURLs(ctx, font)
	case "github":
		return f.installFromRelease(ctx, font)
	default:
		return state.FontState{}, fmt.Errorf("unknown font source %q", font.Source)
	}
}

func (f *FontInstaller) installFromURLs(ctx context.Context, font config.Font) (state.FontState, error) {
	fs := state.FontState{Name: font.Name}
	for _, u := range font.URLs {
		name, err := url.PathUnescape(path.Base(u))
		if err != nil {
			return fs, fmt.Errorf("bad font url %s: %w", u, err)
		}
		dest := filepath.Join(f.Dir, name)
		if err := f.Downloader.Download(ctx, u, dest); err != nil {
			return fs, err
		}
		fs.Files = append(fs.Files, dest)
	}
	if len(font.URLs) > 0 {
		fs.URL = font.URLs[0]
	}
	return fs, nil
}

func (f *FontInstaller) installFromRelease(ctx context.Context, font config.Font) (state.FontState, error) {
	fs := state.FontState{Name: font.Name}
	assetURL, err := f.GitHub.ReleaseAsset(ctx, font.Repo, font.Tag, font.Asset)
	if err != nil {
		return fs, err
	}
	fs.URL = assetURL

	tmpDir, err := os.MkdirTemp("", "zsh-setup-font-")
	if err != nil {
		return fs, err
	}
	defer os.RemoveAll(tmpDir)

	archive := filepath.Join(tmpDir, font.Asset)
	if err := f.Downloader.Download(ctx, assetURL, archive); err != nil {
		return fs, err
	}
	extractDir := filepath.Join(tmpDir, "extracted")
	if err := ExtractArchive(archive, extractDir); err != nil {
		return fs, fmt.Errorf("failed to extract %s: %w", font.Asset, err)
	}
	files, err := findFontFiles(extractDir)
	if err != nil {
		return fs, err
	}
	for _, src := range files {
		dest := filepath.Join(f.Dir, filepath.Base(src))
		if err := copyFile(src, dest, 0644); err != nil {
			return fs, err
		}
		fs.Files = append(fs.Files, dest)
	}
	return fs, nil
}

func (f *FontInstaller) refreshCache(ctx context.Context) {
	fcCache, err := f.Runner.LookPath("fc-cache")
	if err != nil {
		logger.Debug("[DEBUG] fc-cache not available, skipping font cache refresh\n")
		return
	}
	if err := f.Runner.Run(ctx, runner.Command{Name: fcCache, Args: []string{"-f", f.Dir}}); err != nil {
		logger.Warn("[WARN] Failed to refresh font cache: %v\n", err)
	}
}

func uninstallFont(name string, fontState state.FontState) bool {
	removed := false
	for _, file := range fontState.Files {
		err := os.Remove(file)
		if err == nil || os.IsNotExist(err) {
			logger.Info("[INFO] Removed font file: %s\n", file)
			removed = true
		} else {
			logger.Error("[ERROR] Failed to remove font file %s: %v\n", file, err)
		}
	}
	if !removed {
		logger.Warn("[WARN] No font files removed for %s\n", name)
	}
	return removed
}

func filesPresent(files []string) bool {
	if len(files) == 0 {
		return false
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			return false
		}
	}
	return true
}

func sortedFontNames(m map[string]state.FontState) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
