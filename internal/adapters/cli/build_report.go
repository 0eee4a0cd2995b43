package cli

import (
	"fmt"
	"strings"
	"time"
)

// BuildReport accumulates per-template build results and renders a summary
// once the pipeline finishes.
type BuildReport struct {
	out       *Output
	startTime time.Time
	outputDir string
	templates []templateResult
	failure   error
}

type templateResult struct {
	path      string
	strategy  []string
	pageCount int
}

func NewBuildReport(out *Output, outputDir string) *BuildReport {
	return &BuildReport{
		out:       out,
		startTime: time.Now(),
		outputDir: outputDir,
	}
}

func (r *BuildReport) AddTemplate(path string, strategy []string, pageCount int) {
	r.templates = append(r.templates, templateResult{
		path:      path,
		strategy:  strategy,
		pageCount: pageCount,
	})
}

func (r *BuildReport) Fail(err error) {
	r.failure = err
}

func (r *BuildReport) Render() {
	duration := time.Since(r.startTime)

	pages := 0
	for _, t := range r.templates {
		tags := strings.Join(t.strategy, ", ")
		if t.pageCount == 0 {
			r.out.PrintStep("%s %s", t.path, r.out.Gray("["+tags+"] request-time only"))
		} else {
			r.out.PrintStep("%s %s", t.path, r.out.Gray(fmt.Sprintf("[%s] %d page(s)", tags, t.pageCount)))
		}
		pages += t.pageCount
	}

	if r.failure != nil {
		r.out.PrintError("Build failed after %s: %v", formatDuration(duration), r.failure)
		return
	}

	r.out.PrintSuccess("Built %d page(s) in %s", pages, formatDuration(duration))
	if r.outputDir != "" {
		fmt.Printf("\n  %s\n", r.out.Gray("Output: "+r.outputDir))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.1fs", float64(d)/float64(time.Second))
}
