// Package build prerenders registered page templates: the build-pipeline
// side of the capability contract.
package build

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/norn-studio/norn/internal/adapters/fs"
	"github.com/norn-studio/norn/internal/core"
	"github.com/norn-studio/norn/internal/types"
)

const ManifestFile = "manifest.json"

// Engine walks every registered template, resolves its strategy, renders
// each concrete path and persists the output plus a manifest under OutDir.
// It reports nothing itself; callers own presentation.
type Engine struct {
	fs     fs.FileSystem
	outDir string
	title  string
	now    func() time.Time
}

func NewEngine(filesystem fs.FileSystem, outDir, title string) *Engine {
	return &Engine{
		fs:     filesystem,
		outDir: outDir,
		title:  title,
		now:    time.Now,
	}
}

// PageResult describes one prerendered concrete path, for build reporting.
type PageResult struct {
	TemplatePath string
	ConcretePath string
	File         string
	Strategy     []string
}

// Build prerenders all templates and writes the manifest. Templates whose
// only capability is request-time state produce no build output but still
// get a manifest entry carrying their strategy tags.
func (e *Engine) Build(ctx context.Context, templates []types.Template) (*core.Manifest, []PageResult, error) {
	manifest := core.NewManifest()
	results := make([]PageResult, 0, len(templates))

	for _, tmpl := range templates {
		if err := core.ValidateRoutePath(tmpl.Path()); err != nil {
			return nil, nil, fmt.Errorf("invalid template path %q: %w", tmpl.Path(), err)
		}

		strategy := tmpl.Strategy()
		entry := core.ManifestEntry{
			Strategy: strategy.Tags(),
		}

		if !strategy.Prerenders() {
			manifest.Entries[tmpl.Path()] = entry
			continue
		}

		paths, err := e.concretePaths(ctx, tmpl)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to enumerate paths for %s: %w", tmpl.Path(), err)
		}

		entry.Pages = make(map[string]core.PageArtifact, len(paths))
		for _, concretePath := range paths {
			artifact, err := e.buildPage(ctx, tmpl, concretePath)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to build %s: %w", concretePath, err)
			}
			entry.Pages[concretePath] = artifact
			results = append(results, PageResult{
				TemplatePath: tmpl.Path(),
				ConcretePath: concretePath,
				File:         artifact.File,
				Strategy:     entry.Strategy,
			})
		}

		manifest.Entries[tmpl.Path()] = entry
	}

	if err := e.writeManifest(manifest); err != nil {
		return nil, nil, err
	}

	return manifest, results, nil
}

// concretePaths enumerates the paths to prerender: the build-paths hook
// when configured, the template root alone otherwise. Hook-produced paths
// are normalized; a path escaping the template root is rejected.
func (e *Engine) concretePaths(ctx context.Context, tmpl types.Template) ([]string, error) {
	if !tmpl.UsesBuildPaths() {
		return []string{tmpl.Path()}, nil
	}

	raw, err := tmpl.BuildPaths(ctx)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(raw))
	for _, p := range raw {
		normalized := core.NormalizePath(p)
		if normalized != tmpl.Path() && !core.IsSubPath(tmpl.Path(), normalized) {
			return nil, fmt.Errorf("build path %q is outside template root %q", normalized, tmpl.Path())
		}
		paths = append(paths, normalized)
	}
	return paths, nil
}

func (e *Engine) buildPage(ctx context.Context, tmpl types.Template, concretePath string) (core.PageArtifact, error) {
	var props []byte
	if tmpl.UsesBuildState() {
		var err error
		props, err = tmpl.BuildProps(ctx, concretePath)
		if err != nil {
			return core.PageArtifact{}, err
		}
	}

	rendered, err := tmpl.RenderEncoded(props)
	if err != nil {
		return core.PageArtifact{}, err
	}

	doc := core.HTMLDocument(e.title, rendered.Head, rendered.Body)
	file := core.ArtifactPath(concretePath)
	fullPath := filepath.Join(e.outDir, filepath.FromSlash(file))

	if err := e.fs.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return core.PageArtifact{}, err
	}
	if err := e.fs.WriteFile(fullPath, []byte(doc), 0o644); err != nil {
		return core.PageArtifact{}, err
	}

	return core.PageArtifact{
		File:       file,
		Props:      props,
		PropsHash:  core.HashProps(props),
		RenderedAt: e.now(),
	}, nil
}

func (e *Engine) writeManifest(manifest *core.Manifest) error {
	data, err := manifest.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(e.outDir, ManifestFile)
	if err := e.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := e.fs.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a previously written manifest from outDir. A missing
// manifest is not an error; it simply means nothing was prerendered.
func LoadManifest(filesystem fs.FileSystem, outDir string) (*core.Manifest, error) {
	path := filepath.Join(outDir, ManifestFile)
	if !filesystem.FileExists(path) {
		return nil, nil
	}

	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	manifest, err := core.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Version != core.ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", manifest.Version)
	}
	return manifest, nil
}

// ReadArtifact loads one prerendered file referenced by the manifest.
func ReadArtifact(filesystem fs.FileSystem, outDir string, artifact core.PageArtifact) (string, error) {
	fullPath := filepath.Join(outDir, filepath.FromSlash(artifact.File))
	data, err := filesystem.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to read artifact %s: %w", artifact.File, err)
	}
	return string(data), nil
}
