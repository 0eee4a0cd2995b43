package core

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// ArtifactPath maps a concrete route to its output file under the build
// output directory. The root path maps to the top-level index.html.
func ArtifactPath(path string) string {
	trimmed := strings.TrimPrefix(NormalizePath(path), "/")
	if trimmed == "" {
		return "pages/index.html"
	}
	return "pages/" + trimmed + "/index.html"
}

// HashProps produces a short stable fingerprint of encoded props, recorded
// in the manifest so callers can detect state drift between builds.
func HashProps(encoded []byte) string {
	if len(encoded) == 0 {
		return ""
	}
	h := fnv.New64a()
	h.Write(encoded)
	return fmt.Sprintf("%x", h.Sum64())
}
