package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rshade/entitydeck/internal/logging"
)

// ProjectConfigFile is the name of the per-directory overlay file.
const ProjectConfigFile = ".entitydeck.yaml"

// ResolveProjectConfig determines the project overlay file to apply.
// It checks (in order):
//  1. flagValue (--project-config CLI flag)
//  2. ENTITYDECK_PROJECT_CONFIG env var
//  3. a .entitydeck.yaml in startDir or any parent
//
// Returns an absolute path, or empty string when there is no overlay.
func ResolveProjectConfig(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbs(ctx, flagValue)
	}
	if envPath := os.Getenv("ENTITYDECK_PROJECT_CONFIG"); envPath != "" {
		return toAbs(ctx, envPath)
	}

	path, err := FindProjectConfig(startDir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger := logging.FromContext(ctx)
			logger.Warn().
				Str("component", "config").
				Err(err).
				Str("start_dir", startDir).
				Msg("unexpected error during project config discovery")
		}
		return ""
	}
	return path
}

// FindProjectConfig walks up from startDir looking for ProjectConfigFile.
// It returns fs.ErrNotExist when the filesystem root is reached without a match.
func FindProjectConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ProjectConfigFile)
		info, statErr := os.Stat(candidate)
		switch {
		case statErr == nil && !info.IsDir():
			return candidate, nil
		case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
			return "", statErr
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fs.ErrNotExist
		}
		dir = parent
	}
}

// WithProjectOverlay shallow-merges the overlay at path onto a copy of cfg. An empty
// path, a missing file or a broken overlay leave cfg as it was; the latter is logged.
func WithProjectOverlay(ctx context.Context, cfg *Config, path string) *Config {
	if path == "" {
		return cfg
	}
	if _, err := os.Stat(path); err != nil {
		return cfg
	}

	merged := *cfg
	if err := ShallowMergeYAML(&merged, path); err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", path).
			Msg("failed to merge project config, using global config")
		return cfg
	}
	return &merged
}

func toAbs(ctx context.Context, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("path", path).
			Msg("failed to resolve absolute path for project config")
		return path
	}
	return abs
}
