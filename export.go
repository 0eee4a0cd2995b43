package norn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// BuildExport is the build-time data of an app in portable form: every
// prerenderable template with its concrete paths and encoded props. It
// feeds external pipelines (CDN uploaders, site audits) that consume build
// data without running the build engine.
type BuildExport struct {
	Version int          `json:"version"`
	Pages   []PageExport `json:"pages"`
}

type PageExport struct {
	TemplatePath string       `json:"templatePath"`
	Strategy     []string     `json:"strategy"`
	Entries      []PathExport `json:"entries"`
}

type PathExport struct {
	Path  string          `json:"path"`
	Props json.RawMessage `json:"props,omitempty"`
}

// ExportBuildData enumerates build paths and build state for every
// registered template that prerenders. Templates rendered only at request
// time are skipped; their state does not exist until a request arrives.
func (a *App) ExportBuildData(ctx context.Context) (*BuildExport, error) {
	export := &BuildExport{
		Version: 1,
		Pages:   make([]PageExport, 0, len(a.routes)),
	}

	for _, route := range a.routes {
		tmpl := route.Template
		strategy := tmpl.Strategy()
		if !strategy.Prerenders() {
			continue
		}

		paths := []string{tmpl.Path()}
		if tmpl.UsesBuildPaths() {
			var err error
			paths, err = tmpl.BuildPaths(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to enumerate paths for %s: %w", tmpl.Path(), err)
			}
		}

		pageExport := PageExport{
			TemplatePath: tmpl.Path(),
			Strategy:     strategy.Tags(),
			Entries:      make([]PathExport, 0, len(paths)),
		}

		for _, concretePath := range paths {
			entry := PathExport{Path: concretePath}
			if tmpl.UsesBuildState() {
				props, err := tmpl.BuildProps(ctx, concretePath)
				if err != nil {
					return nil, fmt.Errorf("failed to load build state for %s: %w", concretePath, err)
				}
				entry.Props = props
			}
			pageExport.Entries = append(pageExport.Entries, entry)
		}

		export.Pages = append(export.Pages, pageExport)
	}

	return export, nil
}

// WriteBuildData encodes the export as indented JSON.
func (a *App) WriteBuildData(ctx context.Context, w io.Writer) error {
	export, err := a.ExportBuildData(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("failed to encode export data: %w", err)
	}
	return nil
}
