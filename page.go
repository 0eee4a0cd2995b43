package norn

import (
	"context"
	"fmt"
	"time"

	"github.com/norn-studio/norn/internal/core"
	"github.com/norn-studio/norn/internal/types"
)

type RenderedPage = types.RenderedPage

type Codec = types.Codec

type JSONCodec = types.JSONCodec

// Template is the non-generic view of a page descriptor consumed by the
// build pipeline and the request router.
type Template = types.Template

// Strategy is the set of rendering-strategy tags resolved from a page's
// configured capabilities.
type Strategy = core.Strategy

// FeatureNotEnabledError is returned by a capability accessor when the
// matching hook was never configured. Check the Uses* predicate first.
type FeatureNotEnabledError = core.FeatureNotEnabledError

// TemplateFunc renders the page. Props is nil when the page is rendered
// without state (basic pages, incremental paths without build state).
type TemplateFunc[Props any] func(props *Props) (RenderedPage, error)

// BuildPathsFunc enumerates the concrete routes to prerender under the
// template's root path.
type BuildPathsFunc func(ctx context.Context) ([]string, error)

// StateFunc produces props for one concrete path, at build time or at
// request time depending on which capability it is registered under.
type StateFunc[Props any] func(ctx context.Context, path string) (Props, error)

// RevalidateCheckFunc decides whether a previously built page should be
// rebuilt. It receives nothing about the triggering request.
type RevalidateCheckFunc func() (bool, error)

// Page declares one page template: its root path and the rendering
// capabilities it opts into. A page with no capabilities at all is rendered
// once at build time with no props and served as-is forever.
//
// Configuration happens through options, single-threaded, before the page
// is handed to an App; registration freezes the page and mutation
// afterwards panics. A frozen page is safe for concurrent reads.
type Page[Props any] struct {
	path            string
	codec           Codec
	template        TemplateFunc[Props]
	buildPaths      BuildPathsFunc
	incremental     bool
	buildState      StateFunc[Props]
	requestState    StateFunc[Props]
	revalidateCheck RevalidateCheckFunc
	revalidateAfter time.Duration
	frozen          bool
}

// PageOption configures a Page. Options are last-write-wins per field and
// order independent; nothing is validated at set time — classification
// happens when the strategy is resolved.
type PageOption[Props any] func(*Page[Props])

// NewPage creates a page template rooted at path with no capabilities and a
// template that renders empty output. The path is normalized to a leading
// slash and no trailing slash.
func NewPage[Props any](path string, opts ...PageOption[Props]) *Page[Props] {
	p := &Page[Props]{
		path:  core.NormalizePath(path),
		codec: JSONCodec{},
		template: func(*Props) (RenderedPage, error) {
			return RenderedPage{}, nil
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// With applies further options. It returns the same page for chaining and
// panics if the page was already registered with an App.
func (p *Page[Props]) With(opts ...PageOption[Props]) *Page[Props] {
	if p.frozen {
		panic(fmt.Sprintf("norn: page %q configured after registration", p.path))
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func WithTemplate[Props any](fn TemplateFunc[Props]) PageOption[Props] {
	return func(p *Page[Props]) {
		p.template = fn
	}
}

func WithBuildPaths[Props any](fn BuildPathsFunc) PageOption[Props] {
	return func(p *Page[Props]) {
		p.buildPaths = fn
	}
}

// WithIncremental allows concrete paths under the template root that were
// not enumerated at build time to be rendered on first request and cached.
// A missing build-paths hook is treated the same as one returning an empty
// list: every sub-path becomes eligible.
func WithIncremental[Props any](enabled bool) PageOption[Props] {
	return func(p *Page[Props]) {
		p.incremental = enabled
	}
}

func WithBuildState[Props any](fn StateFunc[Props]) PageOption[Props] {
	return func(p *Page[Props]) {
		p.buildState = fn
	}
}

// WithRequestState registers a per-request props source. When both build
// state and request state are configured the core exposes them
// independently and performs no merge; combining them is the caller's
// responsibility.
func WithRequestState[Props any](fn StateFunc[Props]) PageOption[Props] {
	return func(p *Page[Props]) {
		p.requestState = fn
	}
}

func WithRevalidateCheck[Props any](fn RevalidateCheckFunc) PageOption[Props] {
	return func(p *Page[Props]) {
		p.revalidateCheck = fn
	}
}

// WithRevalidateAfter marks a built page eligible for rebuild once the
// interval has elapsed since its last render. When a revalidate check is
// also configured, the interval gates whether the check runs at all.
func WithRevalidateAfter[Props any](d time.Duration) PageOption[Props] {
	return func(p *Page[Props]) {
		p.revalidateAfter = d
	}
}

// WithCodec replaces the props codec. The default encodes props as JSON.
func WithCodec[Props any](c Codec) PageOption[Props] {
	return func(p *Page[Props]) {
		p.codec = c
	}
}

func (p *Page[Props]) Path() string {
	return p.path
}

// Render invokes the template function. It never consults any other
// capability.
func (p *Page[Props]) Render(props *Props) (RenderedPage, error) {
	return p.template(props)
}

// BuildPaths invokes the build-paths hook, or fails with
// *FeatureNotEnabledError if none was configured.
func (p *Page[Props]) BuildPaths(ctx context.Context) ([]string, error) {
	if p.buildPaths == nil {
		return nil, core.NewFeatureNotEnabled(p.path, core.FeatureBuildPaths)
	}
	return p.buildPaths(ctx)
}

// BuildState invokes the build-state hook for one concrete path, or fails
// with *FeatureNotEnabledError if none was configured.
func (p *Page[Props]) BuildState(ctx context.Context, path string) (Props, error) {
	if p.buildState == nil {
		var zero Props
		return zero, core.NewFeatureNotEnabled(p.path, core.FeatureBuildState)
	}
	return p.buildState(ctx, path)
}

// RequestState invokes the request-state hook for one concrete path, or
// fails with *FeatureNotEnabledError if none was configured.
func (p *Page[Props]) RequestState(ctx context.Context, path string) (Props, error) {
	if p.requestState == nil {
		var zero Props
		return zero, core.NewFeatureNotEnabled(p.path, core.FeatureRequestState)
	}
	return p.requestState(ctx, path)
}

// ShouldRevalidate invokes the revalidate-check hook, or fails with
// *FeatureNotEnabledError if none was configured.
func (p *Page[Props]) ShouldRevalidate() (bool, error) {
	if p.revalidateCheck == nil {
		return false, core.NewFeatureNotEnabled(p.path, core.FeatureRevalidate)
	}
	return p.revalidateCheck()
}

// Revalidates reports whether a revalidate check or interval is configured.
func (p *Page[Props]) Revalidates() bool {
	return p.revalidateCheck != nil || p.revalidateAfter > 0
}

func (p *Page[Props]) UsesIncremental() bool {
	return p.incremental
}

func (p *Page[Props]) UsesBuildPaths() bool {
	return p.buildPaths != nil
}

func (p *Page[Props]) UsesRequestState() bool {
	return p.requestState != nil
}

func (p *Page[Props]) UsesBuildState() bool {
	return p.buildState != nil
}

// IsBasic reports whether the page declares no rendering capability at all.
// Recomputed on every call; it is the negation of every other predicate.
func (p *Page[Props]) IsBasic() bool {
	return p.features().Basic()
}

func (p *Page[Props]) RevalidateAfter() time.Duration {
	return p.revalidateAfter
}

func (p *Page[Props]) HasRevalidateCheck() bool {
	return p.revalidateCheck != nil
}

// Strategy resolves the set of active rendering-strategy tags from the
// configured capabilities.
func (p *Page[Props]) Strategy() core.Strategy {
	return core.Resolve(p.features())
}

func (p *Page[Props]) features() core.Features {
	return core.Features{
		BuildPaths:   p.buildPaths != nil,
		BuildState:   p.buildState != nil,
		RequestState: p.requestState != nil,
		Incremental:  p.incremental,
		Revalidates:  p.Revalidates(),
	}
}

// BuildProps fetches build state for a path and encodes it with the page's
// codec.
func (p *Page[Props]) BuildProps(ctx context.Context, path string) ([]byte, error) {
	props, err := p.BuildState(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.codec.Encode(props)
}

// RequestProps fetches request state for a path and encodes it with the
// page's codec.
func (p *Page[Props]) RequestProps(ctx context.Context, path string) ([]byte, error) {
	props, err := p.RequestState(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.codec.Encode(props)
}

// RenderEncoded decodes props produced by BuildProps or RequestProps and
// renders the page. A nil slice renders without props.
func (p *Page[Props]) RenderEncoded(encoded []byte) (RenderedPage, error) {
	if encoded == nil {
		return p.template(nil)
	}
	props := new(Props)
	if err := p.codec.Decode(encoded, props); err != nil {
		return RenderedPage{}, fmt.Errorf("failed to decode props for %s: %w", p.path, err)
	}
	return p.template(props)
}

// Freeze marks the page published. Further With calls panic.
func (p *Page[Props]) Freeze() {
	p.frozen = true
}
