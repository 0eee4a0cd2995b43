package core

// Features holds the orthogonal capability flags of a page template. Each
// flag reflects whether the corresponding hook was configured; none of them
// implies another.
type Features struct {
	BuildPaths   bool
	BuildState   bool
	RequestState bool
	Incremental  bool
	Revalidates  bool
}

// Basic reports whether the template declares no rendering capability at
// all. This is derived, never stored: it is the negation of every other
// flag, so a basic template cannot simultaneously carry any other tag.
func (f Features) Basic() bool {
	return !f.BuildPaths &&
		!f.BuildState &&
		!f.RequestState &&
		!f.Incremental &&
		!f.Revalidates
}

// Strategy is the set of rendering-strategy tags active for a template.
// Tags are not mutually exclusive (except StaticBasic, which is structurally
// the negation of the rest); the build pipeline and the request router must
// handle any combination, not a single label.
type Strategy struct {
	StaticBasic          bool
	StaticMultiPath      bool
	StaticWithBuildState bool
	Incremental          bool
	Revalidating         bool
	RequestRendered      bool
}

// Resolve classifies a template's features into its strategy tags. Pure
// function; the result is recomputed at each call site rather than cached so
// configuration changes before publication are always reflected.
func Resolve(f Features) Strategy {
	return Strategy{
		StaticBasic:          f.Basic(),
		StaticMultiPath:      f.BuildPaths && !f.BuildState && !f.RequestState && !f.Revalidates,
		StaticWithBuildState: f.BuildState,
		Incremental:          f.Incremental,
		Revalidating:         f.Revalidates,
		RequestRendered:      f.RequestState,
	}
}

// Prerenders reports whether the template produces any build-time output.
// Only a template whose sole capability is request-time state skips the
// build pipeline entirely.
func (s Strategy) Prerenders() bool {
	return s.StaticBasic || s.StaticMultiPath || s.StaticWithBuildState || s.Incremental || s.Revalidating
}

// Tags returns the active tag names, in a fixed order, for manifests and
// build reports.
func (s Strategy) Tags() []string {
	tags := make([]string, 0, 6)
	if s.StaticBasic {
		tags = append(tags, "static-basic")
	}
	if s.StaticMultiPath {
		tags = append(tags, "static-multi-path")
	}
	if s.StaticWithBuildState {
		tags = append(tags, "static-build-state")
	}
	if s.Incremental {
		tags = append(tags, "incremental")
	}
	if s.Revalidating {
		tags = append(tags, "revalidating")
	}
	if s.RequestRendered {
		tags = append(tags, "request-rendered")
	}
	return tags
}

// StrategyFromTags rebuilds a Strategy from manifest tag names. Unknown
// tags are ignored.
func StrategyFromTags(tags []string) Strategy {
	var s Strategy
	for _, tag := range tags {
		switch tag {
		case "static-basic":
			s.StaticBasic = true
		case "static-multi-path":
			s.StaticMultiPath = true
		case "static-build-state":
			s.StaticWithBuildState = true
		case "incremental":
			s.Incremental = true
		case "revalidating":
			s.Revalidating = true
		case "request-rendered":
			s.RequestRendered = true
		}
	}
	return s
}
