package core

import (
	"encoding/json"
	"time"
)

// PageArtifact records one prerendered concrete path.
type PageArtifact struct {
	File       string          `json:"file"`
	Props      json.RawMessage `json:"props,omitempty"`
	PropsHash  string          `json:"propsHash,omitempty"`
	RenderedAt time.Time       `json:"renderedAt"`
}

// ManifestEntry records everything the request router needs to serve one
// template's prerendered output: its strategy tags and the artifact for
// each concrete path.
type ManifestEntry struct {
	Strategy []string                `json:"strategy"`
	Pages    map[string]PageArtifact `json:"pages,omitempty"`
}

// Manifest is written by the build pipeline and loaded by the request
// router at startup. Entries are keyed by template root path.
type Manifest struct {
	Version int                      `json:"version"`
	Entries map[string]ManifestEntry `json:"entries"`
}

const ManifestVersion = 1

func NewManifest() *Manifest {
	return &Manifest{
		Version: ManifestVersion,
		Entries: make(map[string]ManifestEntry),
	}
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
