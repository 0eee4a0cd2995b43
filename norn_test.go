package norn_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/norn-studio/norn"
	"github.com/norn-studio/norn/internal/adapters/fs"
)

type postProps struct {
	Slug string `json:"slug"`
}

func newApp(t *testing.T, routes []norn.Route, filesystem fs.FileSystem) *norn.App {
	t.Helper()
	t.Setenv("NORN_DEV", "")
	t.Setenv("NORN_BUILD", "")

	app, err := norn.New(routes, norn.WithFileSystem(filesystem))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return app
}

func TestNewFreezesTemplates(t *testing.T) {
	tmpl := norn.NewPage[postProps]("/about")
	newApp(t, []norn.Route{norn.Mount("/about", tmpl)}, fs.NewMemFileSystem())

	defer func() {
		if recover() == nil {
			t.Error("configuring a registered page should panic")
		}
	}()
	tmpl.With(norn.WithIncremental[postProps](true))
}

func TestNewRejectsDuplicateTemplatePaths(t *testing.T) {
	t.Setenv("NORN_DEV", "")
	routes := []norn.Route{
		norn.Mount("/about", norn.NewPage[postProps]("/about")),
		norn.Mount("/about/alt", norn.NewPage[postProps]("/about")),
	}

	if _, err := norn.New(routes, norn.WithFileSystem(fs.NewMemFileSystem())); err == nil {
		t.Error("New() should reject duplicate template paths")
	}
}

func TestNewRejectsNilTemplate(t *testing.T) {
	t.Setenv("NORN_DEV", "")
	if _, err := norn.New([]norn.Route{{Pattern: "/x"}}, norn.WithFileSystem(fs.NewMemFileSystem())); err == nil {
		t.Error("New() should reject a route without a template")
	}
}

func TestHandlerServesRegisteredPage(t *testing.T) {
	tmpl := norn.NewPage("/hello", norn.WithTemplate(func(*postProps) (norn.RenderedPage, error) {
		return norn.RenderedPage{Body: "<p>hello</p>"}, nil
	}))
	app := newApp(t, []norn.Route{norn.Mount("/hello", tmpl)}, fs.NewMemFileSystem())

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/hello")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<p>hello</p>") {
		t.Errorf("body = %s", body)
	}
}

func TestBuildThenServeFromPrebuiltOutput(t *testing.T) {
	mem := fs.NewMemFileSystem()

	renders := 0
	build := func() norn.Route {
		tmpl := norn.NewPage("/blog",
			norn.WithBuildPaths[postProps](func(context.Context) ([]string, error) {
				return []string{"/blog/hello"}, nil
			}),
			norn.WithBuildState(func(_ context.Context, path string) (postProps, error) {
				return postProps{Slug: path}, nil
			}),
			norn.WithTemplate(func(props *postProps) (norn.RenderedPage, error) {
				renders++
				return norn.RenderedPage{Body: "<h1>" + props.Slug + "</h1>"}, nil
			}),
		)
		return norn.Mount("/blog/", tmpl)
	}

	builder := newApp(t, []norn.Route{build()}, mem)
	if err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	buildRenders := renders
	if buildRenders != 1 {
		t.Fatalf("build renders = %d, want 1", buildRenders)
	}

	// A fresh app over the same filesystem warms its cache from the
	// manifest and serves without re-rendering.
	server := newApp(t, []norn.Route{build()}, mem)
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/blog/hello")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<h1>/blog/hello</h1>") {
		t.Errorf("body = %s", body)
	}
	if renders != buildRenders {
		t.Errorf("serving re-rendered the page: renders = %d", renders)
	}
}

func TestDevModeIgnoresPrebuiltOutput(t *testing.T) {
	mem := fs.NewMemFileSystem()

	tmpl := norn.NewPage("/about", norn.WithTemplate(func(*postProps) (norn.RenderedPage, error) {
		return norn.RenderedPage{Body: "<p>v1</p>"}, nil
	}))
	t.Setenv("NORN_DEV", "")
	t.Setenv("NORN_BUILD", "")
	builder, err := norn.New([]norn.Route{norn.Mount("/about", tmpl)}, norn.WithFileSystem(mem))
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.Build(context.Background()); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NORN_DEV", "1")
	fresh := norn.NewPage("/about", norn.WithTemplate(func(*postProps) (norn.RenderedPage, error) {
		return norn.RenderedPage{Body: "<p>v2</p>"}, nil
	}))
	devApp, err := norn.New([]norn.Route{norn.Mount("/about", fresh)}, norn.WithFileSystem(mem))
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(devApp.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/about")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<p>v2</p>") {
		t.Errorf("dev mode served prebuilt output: %s", body)
	}
}
