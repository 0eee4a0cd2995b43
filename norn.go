// Package norn declares page templates for a multi-strategy web-rendering
// system. Each template opts into rendering capabilities (build-time path
// enumeration, build-time state, request-time state, revalidation,
// incremental rendering); norn resolves the resulting strategy and drives
// the template consistently at build time and at request time.
package norn

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"os"

	"github.com/norn-studio/norn/internal/adapters/cli"
	"github.com/norn-studio/norn/internal/adapters/fs"
	"github.com/norn-studio/norn/internal/build"
	"github.com/norn-studio/norn/internal/cache"
	"github.com/norn-studio/norn/internal/config"
	"github.com/norn-studio/norn/internal/core"
	"github.com/norn-studio/norn/internal/page"
)

// Route binds a mux pattern to a page template. The pattern should cover
// the template's root and, for templates with build paths or incremental
// rendering, the subtree beneath it (a trailing-slash pattern).
type Route struct {
	Pattern  string
	Template Template
}

// Mount builds a Route. Pass a subtree pattern ("/blog/") for templates
// that produce paths under their root.
func Mount(pattern string, tmpl Template) Route {
	return Route{
		Pattern:  pattern,
		Template: tmpl,
	}
}

// App holds the registered page templates of one application. Registration
// freezes every template; configuration afterwards panics.
type App struct {
	routes []Route
	fs     fs.FileSystem
	cfg    config.Resolved
	caches map[string]*cache.Cache
	isDev  bool
}

type AppOption func(*App)

// WithFileSystem replaces the filesystem used for builds and for loading
// prerendered output. Defaults to the OS filesystem.
func WithFileSystem(filesystem fs.FileSystem) AppOption {
	return func(a *App) {
		a.fs = filesystem
	}
}

// WithAssetsFS serves prerendered output from an embedded filesystem, for
// single-binary deployments.
func WithAssetsFS(assets embed.FS) AppOption {
	return func(a *App) {
		a.fs = fs.NewEmbedFileSystem(assets)
	}
}

// New registers routes, freezes their templates, loads norn.yaml when
// present, and warms the render caches from a previous build's manifest.
func New(routes []Route, opts ...AppOption) (*App, error) {
	app := &App{
		routes: routes,
		fs:     fs.NewOSFileSystem(),
		caches: make(map[string]*cache.Cache),
		isDev:  config.DevMode(),
	}
	for _, opt := range opts {
		opt(app)
	}

	cfg, err := config.Load(app.fs, ".")
	if err != nil {
		return nil, err
	}
	app.cfg = cfg

	for _, route := range routes {
		tmpl := route.Template
		if tmpl == nil {
			return nil, fmt.Errorf("norn: route %q has no template", route.Pattern)
		}
		if err := core.ValidateRoutePath(tmpl.Path()); err != nil {
			return nil, fmt.Errorf("norn: invalid template path %q: %w", tmpl.Path(), err)
		}
		if _, dup := app.caches[tmpl.Path()]; dup {
			return nil, fmt.Errorf("norn: duplicate template path %q", tmpl.Path())
		}
		tmpl.Freeze()
		app.caches[tmpl.Path()] = cache.New()
	}

	// Dev mode renders everything fresh; prebuilt output is ignored.
	if !app.isDev {
		if err := app.warmCaches(); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// warmCaches preloads rendered output from the build manifest so static
// pages serve without re-rendering. A missing manifest means nothing was
// prerendered yet; pages then render on demand where their strategy allows.
func (a *App) warmCaches() error {
	manifest, err := build.LoadManifest(a.fs, a.cfg.OutDir)
	if err != nil {
		return err
	}
	if manifest == nil {
		return nil
	}

	for _, route := range a.routes {
		entry, ok := manifest.Entries[route.Template.Path()]
		if !ok {
			continue
		}
		c := a.caches[route.Template.Path()]
		for concretePath, artifact := range entry.Pages {
			html, err := build.ReadArtifact(a.fs, a.cfg.OutDir, artifact)
			if err != nil {
				return err
			}
			c.Set(concretePath, cache.Entry{
				HTML:       html,
				Props:      artifact.Props,
				RenderedAt: artifact.RenderedAt,
			})
		}
	}
	return nil
}

type router interface {
	http.Handler
	Handle(pattern string, handler http.Handler)
}

// Wrap mounts one handler per registered template onto api and returns the
// composed handler. In build mode (NORN_BUILD=1) it instead runs the build
// pipeline and exits, mirroring how deployments produce their prerendered
// output from the same binary that serves it.
func (a *App) Wrap(api router) http.Handler {
	if config.BuildMode() {
		if err := a.runBuild(); err != nil {
			fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if api == nil {
		panic("norn: nil router passed to Wrap; use app.Handler()")
	}

	for _, route := range a.routes {
		tmpl := route.Template
		handler := page.NewHandler(tmpl, a.caches[tmpl.Path()], a.cfg.Title, a.isDev)
		api.Handle(route.Pattern, handler)
	}

	return api
}

// Handler mounts all routes on a fresh ServeMux.
func (a *App) Handler() http.Handler {
	return a.Wrap(http.NewServeMux())
}

// Build prerenders every registered template into the configured output
// directory and writes the build manifest.
func (a *App) Build(ctx context.Context) error {
	engine := build.NewEngine(a.fs, a.cfg.OutDir, a.cfg.Title)
	_, _, err := engine.Build(ctx, a.templates())
	return err
}

func (a *App) runBuild() error {
	out := cli.NewOutput()
	out.PrintHeader("Norn Build")
	report := cli.NewBuildReport(out, a.cfg.OutDir)

	engine := build.NewEngine(fs.NewOSFileSystem(), a.cfg.OutDir, a.cfg.Title)
	manifest, results, err := engine.Build(context.Background(), a.templates())
	if err != nil {
		report.Fail(err)
		report.Render()
		return err
	}

	counts := make(map[string]int)
	for _, res := range results {
		counts[res.TemplatePath]++
	}
	for _, tmpl := range a.templates() {
		entry := manifest.Entries[tmpl.Path()]
		report.AddTemplate(tmpl.Path(), entry.Strategy, counts[tmpl.Path()])
	}
	report.Render()
	return nil
}

func (a *App) templates() []Template {
	templates := make([]Template, 0, len(a.routes))
	for _, route := range a.routes {
		templates = append(templates, route.Template)
	}
	return templates
}
