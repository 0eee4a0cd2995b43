package norn

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/norn-studio/norn/internal/core"
)

type blogProps struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func TestBasicPage(t *testing.T) {
	p := NewPage[blogProps]("/blog")

	if !p.IsBasic() {
		t.Error("page with no capabilities should be basic")
	}

	rendered, err := p.Render(nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if rendered.Body != "" || rendered.Head != "" {
		t.Errorf("default template should render empty output, got %+v", rendered)
	}
}

func TestPathNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/blog", "/blog"},
		{"blog", "/blog"},
		{"/blog/", "/blog"},
		{"/", "/"},
	}

	for _, tt := range tests {
		if got := NewPage[blogProps](tt.in).Path(); got != tt.want {
			t.Errorf("NewPage(%q).Path() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildPathsAccessor(t *testing.T) {
	p := NewPage("/blog", WithBuildPaths[blogProps](func(context.Context) ([]string, error) {
		return []string{"/blog/a", "/blog/b"}, nil
	}))

	if !p.UsesBuildPaths() {
		t.Error("UsesBuildPaths() = false after WithBuildPaths")
	}
	if p.IsBasic() {
		t.Error("IsBasic() = true after WithBuildPaths")
	}

	paths, err := p.BuildPaths(context.Background())
	if err != nil {
		t.Fatalf("BuildPaths() error = %v", err)
	}
	if !reflect.DeepEqual(paths, []string{"/blog/a", "/blog/b"}) {
		t.Errorf("BuildPaths() = %v", paths)
	}

	_, err = p.BuildState(context.Background(), "/blog/a")
	var notEnabled *FeatureNotEnabledError
	if !errors.As(err, &notEnabled) {
		t.Fatalf("BuildState() error = %v, want FeatureNotEnabledError", err)
	}
	if notEnabled.PagePath != "/blog" || notEnabled.Feature != "build_state" {
		t.Errorf("error = %+v, want path /blog feature build_state", notEnabled)
	}
}

func TestFeatureNotEnabledPerAccessor(t *testing.T) {
	p := NewPage[blogProps]("/docs")
	ctx := context.Background()

	tests := []struct {
		feature string
		call    func() error
	}{
		{"build_paths", func() error { _, err := p.BuildPaths(ctx); return err }},
		{"build_state", func() error { _, err := p.BuildState(ctx, "/docs"); return err }},
		{"request_state", func() error { _, err := p.RequestState(ctx, "/docs"); return err }},
		{"revalidate", func() error { _, err := p.ShouldRevalidate(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.feature, func(t *testing.T) {
			var notEnabled *FeatureNotEnabledError
			err := tt.call()
			if !errors.As(err, &notEnabled) {
				t.Fatalf("error = %v, want FeatureNotEnabledError", err)
			}
			if notEnabled.Feature != tt.feature {
				t.Errorf("Feature = %q, want %q", notEnabled.Feature, tt.feature)
			}
			if notEnabled.PagePath != "/docs" {
				t.Errorf("PagePath = %q, want /docs", notEnabled.PagePath)
			}
		})
	}
}

func TestBuildStateWithoutBuildPaths(t *testing.T) {
	p := NewPage("/blog", WithBuildState(func(_ context.Context, path string) (blogProps, error) {
		return blogProps{Slug: path}, nil
	}))

	props, err := p.BuildState(context.Background(), "/blog")
	if err != nil {
		t.Fatalf("BuildState() error = %v", err)
	}
	if props.Slug != "/blog" {
		t.Errorf("props.Slug = %q, want /blog", props.Slug)
	}
}

func TestRevalidates(t *testing.T) {
	tests := []struct {
		name string
		page *Page[blogProps]
		want bool
	}{
		{
			name: "neither configured",
			page: NewPage[blogProps]("/a"),
			want: false,
		},
		{
			name: "interval only",
			page: NewPage("/b", WithRevalidateAfter[blogProps](time.Hour)),
			want: true,
		},
		{
			name: "check only",
			page: NewPage("/c", WithRevalidateCheck[blogProps](func() (bool, error) { return true, nil })),
			want: true,
		},
		{
			name: "both",
			page: NewPage("/d",
				WithRevalidateAfter[blogProps](time.Hour),
				WithRevalidateCheck[blogProps](func() (bool, error) { return false, nil }),
			),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.Revalidates(); got != tt.want {
				t.Errorf("Revalidates() = %v, want %v", got, tt.want)
			}
			if tt.page.IsBasic() == tt.want {
				t.Errorf("IsBasic() = %v with Revalidates() = %v", tt.page.IsBasic(), tt.want)
			}
		})
	}
}

func TestIsBasicIsNegationOfAllPredicates(t *testing.T) {
	pages := map[string]*Page[blogProps]{
		"basic":        NewPage[blogProps]("/p"),
		"buildPaths":   NewPage("/p", WithBuildPaths[blogProps](func(context.Context) ([]string, error) { return nil, nil })),
		"buildState":   NewPage("/p", WithBuildState(func(context.Context, string) (blogProps, error) { return blogProps{}, nil })),
		"requestState": NewPage("/p", WithRequestState(func(context.Context, string) (blogProps, error) { return blogProps{}, nil })),
		"incremental":  NewPage("/p", WithIncremental[blogProps](true)),
		"revalidate":   NewPage("/p", WithRevalidateAfter[blogProps](time.Minute)),
	}

	for name, p := range pages {
		anyOther := p.UsesBuildPaths() || p.UsesBuildState() || p.UsesRequestState() ||
			p.Revalidates() || p.UsesIncremental()
		if p.IsBasic() == anyOther {
			t.Errorf("%s: IsBasic() = %v but other predicates = %v", name, p.IsBasic(), anyOther)
		}
	}
}

func TestOptionOrderIndependence(t *testing.T) {
	paths := func(context.Context) ([]string, error) { return []string{"/p/x"}, nil }
	state := func(context.Context, string) (blogProps, error) { return blogProps{Slug: "x"}, nil }

	a := NewPage("/p",
		WithBuildPaths[blogProps](paths),
		WithBuildState(state),
		WithIncremental[blogProps](true),
	)
	b := NewPage("/p",
		WithIncremental[blogProps](true),
		WithBuildState(state),
		WithBuildPaths[blogProps](paths),
	)

	if a.Strategy() != b.Strategy() {
		t.Errorf("option order changed strategy: %+v vs %+v", a.Strategy(), b.Strategy())
	}
}

func TestLastWriteWins(t *testing.T) {
	p := NewPage("/p",
		WithRevalidateAfter[blogProps](time.Minute),
		WithRevalidateAfter[blogProps](time.Hour),
	)
	if p.RevalidateAfter() != time.Hour {
		t.Errorf("RevalidateAfter() = %v, want 1h", p.RevalidateAfter())
	}
}

func TestIncrementalWithEmptyBuildPaths(t *testing.T) {
	p := NewPage("/blog",
		WithIncremental[blogProps](true),
		WithBuildPaths[blogProps](func(context.Context) ([]string, error) { return []string{}, nil }),
	)

	if !p.UsesIncremental() {
		t.Error("UsesIncremental() = false")
	}
	if !p.UsesBuildPaths() {
		t.Error("UsesBuildPaths() = false")
	}

	paths, err := p.BuildPaths(context.Background())
	if err != nil {
		t.Fatalf("BuildPaths() error = %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("BuildPaths() = %v, want empty", paths)
	}
}

func TestRenderEncodedRoundTrip(t *testing.T) {
	p := NewPage("/blog", WithTemplate(func(props *blogProps) (RenderedPage, error) {
		if props == nil {
			return RenderedPage{Body: "<p>no props</p>"}, nil
		}
		return RenderedPage{Body: "<h1>" + props.Title + "</h1>"}, nil
	}), WithBuildState(func(_ context.Context, path string) (blogProps, error) {
		return blogProps{Slug: path, Title: "Hello"}, nil
	}))

	encoded, err := p.BuildProps(context.Background(), "/blog/hello")
	if err != nil {
		t.Fatalf("BuildProps() error = %v", err)
	}

	rendered, err := p.RenderEncoded(encoded)
	if err != nil {
		t.Fatalf("RenderEncoded() error = %v", err)
	}
	if rendered.Body != "<h1>Hello</h1>" {
		t.Errorf("Body = %q", rendered.Body)
	}

	rendered, err = p.RenderEncoded(nil)
	if err != nil {
		t.Fatalf("RenderEncoded(nil) error = %v", err)
	}
	if rendered.Body != "<p>no props</p>" {
		t.Errorf("Body = %q, want propless render", rendered.Body)
	}
}

func TestStrategyTags(t *testing.T) {
	p := NewPage("/blog",
		WithBuildPaths[blogProps](func(context.Context) ([]string, error) { return nil, nil }),
		WithBuildState(func(context.Context, string) (blogProps, error) { return blogProps{}, nil }),
		WithIncremental[blogProps](true),
		WithRevalidateAfter[blogProps](time.Hour),
	)

	strategy := p.Strategy()
	want := core.Strategy{
		StaticWithBuildState: true,
		Incremental:          true,
		Revalidating:         true,
	}
	if strategy != want {
		t.Errorf("Strategy() = %+v, want %+v", strategy, want)
	}
}

func TestFreezePreventsMutation(t *testing.T) {
	p := NewPage[blogProps]("/blog")
	p.Freeze()

	defer func() {
		if recover() == nil {
			t.Error("With() after Freeze() should panic")
		}
	}()
	p.With(WithIncremental[blogProps](true))
}
