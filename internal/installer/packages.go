package installer

import (
	"context"
	"errors"
	"fmt"

	"zsh-setup/internal/config"
	"zsh-setup/internal/logger"
	"zsh-setup/internal/platform"
	"zsh-setup/internal/runner"
)

// ErrUnsupportedPlatform is returned when packages cannot be installed
// because the platform was not recognised.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// PackageManager installs system packages on one platform family.
type PackageManager interface {
	Name() string
	// Ensure makes the manager itself available, bootstrapping it if needed.
	Ensure(ctx context.Context) error
	// Sync refreshes the package repositories.
	Sync(ctx context.Context) error
	Install(ctx context.Context, pkgs []string) error
	// Cleanup undoes an ephemeral bootstrap done by Ensure.
	Cleanup(ctx context.Context) error
}

// NewPackageManager picks the adapter for family.
func NewPackageManager(family platform.Family, cfg config.Config, r runner.Runner, dl Downloader) (PackageManager, error) {
	switch family {
	case platform.Arch, platform.Debian, platform.RHEL, platform.BSD:
		return NewShimManager(cfg.Shim, r, dl), nil
	case platform.MacOS:
		return NewHomebrew(cfg.BrewURL, cfg.MacAddons, r, dl), nil
	case platform.Unknown:
		return nil, ErrUnsupportedPlatform
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, family)
}

// InstallPackages installs the package set of profile's family.
// An unknown platform performs no install action and returns
// ErrUnsupportedPlatform.
func InstallPackages(ctx context.Context, cfg config.Config, profile platform.Profile, r runner.Runner, dl Downloader) (err error) {
	pm, err := NewPackageManager(profile.Family, cfg, r, dl)
	if err != nil {
		logger.Error("[ERROR] OS NOT DETECTED, couldn't install packages.\n")
		return err
	}

	pkgs := cfg.Packages.For(profile.Family)
	logger.Info("[INFO] Using %s for %s\n", pm.Name(), profile)

	if err := pm.Ensure(ctx); err != nil {
		return fmt.Errorf("%s unavailable: %w", pm.Name(), err)
	}
	defer func() {
		if cerr := pm.Cleanup(ctx); cerr != nil {
			logger.Warn("[WARN] Failed to clean up %s: %v\n", pm.Name(), cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	if err := pm.Sync(ctx); err != nil {
		return fmt.Errorf("%s repository sync failed: %w", pm.Name(), err)
	}

	if len(pkgs) == 0 {
		logger.Info("[INFO] No packages declared for %s.\n", profile.Family)
	} else {
		logger.Info("[INFO] Installing %d packages: %v\n", len(pkgs), pkgs)
	}
	if err := pm.Install(ctx, pkgs); err != nil {
		return fmt.Errorf("%s install failed: %w", pm.Name(), err)
	}
	return nil
}
