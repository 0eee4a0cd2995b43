// Package config loads the optional norn.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/norn-studio/norn/internal/adapters/fs"
)

const FileName = "norn.yaml"

// Config mirrors norn.yaml. Every field is optional.
type Config struct {
	Site  SiteConfig  `yaml:"site"`
	Build BuildConfig `yaml:"build"`
}

// SiteConfig contains presentation metadata.
type SiteConfig struct {
	Title string `yaml:"title,omitempty"`
}

// BuildConfig contains build pipeline settings.
type BuildConfig struct {
	OutDir string `yaml:"out_dir,omitempty"`
}

// Resolved contains configuration values with defaults applied.
type Resolved struct {
	Title  string
	OutDir string
}

const defaultOutDir = "dist"

// Load reads norn.yaml from dir. A missing file yields defaults.
func Load(filesystem fs.FileSystem, dir string) (Resolved, error) {
	resolved := Resolved{
		OutDir: defaultOutDir,
	}

	path := filepath.Join(dir, FileName)
	if !filesystem.FileExists(path) {
		return resolved, nil
	}

	data, err := filesystem.ReadFile(path)
	if err != nil {
		return Resolved{}, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Resolved{}, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	if cfg.Site.Title != "" {
		resolved.Title = cfg.Site.Title
	}
	if cfg.Build.OutDir != "" {
		resolved.OutDir = cfg.Build.OutDir
	}

	return resolved, nil
}

// DevMode reports whether the process runs in development mode, where
// render errors are shown in full and nothing is served from prebuilt
// output.
func DevMode() bool {
	return os.Getenv("NORN_DEV") == "1"
}

// BuildMode reports whether the process was started by the build pipeline;
// in that case App.Wrap runs the build and exits instead of serving.
func BuildMode() bool {
	return os.Getenv("NORN_BUILD") == "1"
}
