package core

import "fmt"

// Feature names used by FeatureNotEnabledError. These match the capability
// accessors on a page template one-to-one.
const (
	FeatureBuildPaths   = "build_paths"
	FeatureBuildState   = "build_state"
	FeatureRequestState = "request_state"
	FeatureRevalidate   = "revalidate"
)

// FeatureNotEnabledError is returned by a capability accessor when the
// corresponding hook was never configured on the page template. Callers are
// expected to check the matching Uses* predicate first; if this error
// surfaces anyway it indicates a caller-side defect and should be treated as
// fatal for that page or request rather than retried.
type FeatureNotEnabledError struct {
	PagePath string
	Feature  string
}

func (e *FeatureNotEnabledError) Error() string {
	return fmt.Sprintf("page %q does not enable feature %q", e.PagePath, e.Feature)
}

func NewFeatureNotEnabled(pagePath, feature string) error {
	return &FeatureNotEnabledError{PagePath: pagePath, Feature: feature}
}
