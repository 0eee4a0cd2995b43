// Package page serves one page template over HTTP: the request-router side
// of the capability contract.
package page

import (
	"bytes"
	"context"
	"html"
	"net/http"
	"time"

	"github.com/norn-studio/norn/internal/cache"
	"github.com/norn-studio/norn/internal/core"
	"github.com/norn-studio/norn/internal/types"
)

// Handler drives a single frozen template. Per request it decides between
// serving cached output, rendering with request state, rendering an
// incremental path on demand, triggering a revalidation rebuild, or 404.
type Handler struct {
	tmpl  types.Template
	cache *cache.Cache
	title string
	isDev bool
	now   func() time.Time
}

func NewHandler(tmpl types.Template, c *cache.Cache, title string, isDev bool) *Handler {
	return &Handler{
		tmpl:  tmpl,
		cache: c,
		title: title,
		isDev: isDev,
		now:   time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	requestPath := core.NormalizePath(req.URL.Path)
	root := h.tmpl.Path()

	if requestPath != root && !core.IsSubPath(root, requestPath) {
		http.NotFound(w, req)
		return
	}

	// Request state trumps everything: a fresh render per request, never
	// cached. Build-time props for the same path remain available through
	// the build pipeline; the core does not merge the two.
	if h.tmpl.UsesRequestState() {
		h.renderRequestState(w, req, requestPath)
		return
	}

	if entry, ok := h.cache.Get(requestPath); ok {
		if h.tmpl.Revalidates() {
			rebuild, err := h.revalidateEligible(entry)
			if err != nil {
				h.serveError(w, err)
				return
			}
			if rebuild {
				h.renderAndCache(req.Context(), w, requestPath)
				return
			}
		}
		serveHTML(w, entry.HTML)
		return
	}

	// Cache miss. The template root always renders on demand; sub-paths
	// only when the template opted into incremental rendering.
	if requestPath == root || h.tmpl.UsesIncremental() {
		h.renderAndCache(req.Context(), w, requestPath)
		return
	}

	http.NotFound(w, req)
}

func (h *Handler) revalidateEligible(entry cache.Entry) (bool, error) {
	decision := core.DecideRevalidate(core.RevalidateInput{
		Elapsed:  h.now().Sub(entry.RenderedAt),
		After:    h.tmpl.RevalidateAfter(),
		HasCheck: h.tmpl.HasRevalidateCheck(),
	})
	if decision.ConsultCheck {
		return h.tmpl.ShouldRevalidate()
	}
	return decision.Rebuild, nil
}

func (h *Handler) renderRequestState(w http.ResponseWriter, req *http.Request, requestPath string) {
	props, err := h.tmpl.RequestProps(req.Context(), requestPath)
	if err != nil {
		h.serveError(w, err)
		return
	}

	rendered, err := h.tmpl.RenderEncoded(props)
	if err != nil {
		h.serveError(w, err)
		return
	}

	serveHTML(w, core.HTMLDocument(h.title, rendered.Head, rendered.Body))
}

func (h *Handler) renderAndCache(ctx context.Context, w http.ResponseWriter, requestPath string) {
	var props []byte
	if h.tmpl.UsesBuildState() {
		var err error
		props, err = h.tmpl.BuildProps(ctx, requestPath)
		if err != nil {
			h.serveError(w, err)
			return
		}
	}

	rendered, err := h.tmpl.RenderEncoded(props)
	if err != nil {
		h.serveError(w, err)
		return
	}

	doc := core.HTMLDocument(h.title, rendered.Head, rendered.Body)
	h.cache.Set(requestPath, cache.Entry{
		HTML:       doc,
		Props:      props,
		RenderedAt: h.now(),
	})

	serveHTML(w, doc)
}

func serveHTML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

func (h *Handler) serveError(w http.ResponseWriter, err error) {
	data := errorData{
		Message: "Internal Server Error",
		IsDev:   h.isDev,
	}
	if err != nil {
		data.Message = err.Error()
	}

	var buf bytes.Buffer
	if err := errorTemplate.Execute(&buf, data); err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<!doctype html><html><body><pre>" + html.EscapeString(data.Message) + "</pre></body></html>"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(buf.Bytes())
}
