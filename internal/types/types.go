package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/norn-studio/norn/internal/core"
)

// RenderedPage is the output of a template render: a body fragment and an
// optional head fragment, both already markup.
type RenderedPage struct {
	Body string
	Head string
}

// Codec is the opaque props serialization capability. The core never
// interprets encoded bytes; they cross the build/serve boundary as-is.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// JSONCodec is the default Codec.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Template is the non-generic view of a page descriptor. The build engine
// and the request handler hold descriptors of heterogeneous props types
// through this interface; props travel as Codec-encoded bytes.
//
// The Uses* predicates and Strategy never fail; the capability accessors
// fail with *core.FeatureNotEnabledError when the hook is absent.
type Template interface {
	Path() string
	Strategy() core.Strategy

	UsesBuildPaths() bool
	UsesBuildState() bool
	UsesRequestState() bool
	UsesIncremental() bool
	Revalidates() bool
	IsBasic() bool

	RevalidateAfter() time.Duration
	HasRevalidateCheck() bool
	ShouldRevalidate() (bool, error)

	BuildPaths(ctx context.Context) ([]string, error)
	BuildProps(ctx context.Context, path string) ([]byte, error)
	RequestProps(ctx context.Context, path string) ([]byte, error)

	// RenderEncoded decodes props (nil means render without props) and
	// invokes the template function.
	RenderEncoded(encoded []byte) (RenderedPage, error)

	// Freeze marks the descriptor published; capability mutation afterwards
	// is a programming error and panics.
	Freeze()
}
