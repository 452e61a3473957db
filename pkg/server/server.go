// Package server exposes the registry read API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Registry is the read side of the block registry the server renders.
type Registry interface {
	GetBlockType(name string) (*blocktype.Settings, bool)
	GetBlockTypes() []*blocktype.Settings
	GetUnprocessedBlockTypes() map[string]*blocktype.Settings
	GetBlockStyles(name string) []blocktype.Style
	GetBlockVariations(name, scope string) []blocktype.Variation
	GetCategories() []blocktype.Category
	GetCollections() []blocktype.Collection
	GetFallbacks() map[string]string
	IsMatchingSearchTerm(name, term string) bool
}

// Options configure the router.
type Options struct {
	// Gatherer backs /metrics. The route is not mounted when nil.
	Gatherer prometheus.Gatherer
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

type handler struct {
	registry Registry
	logger   zerolog.Logger
}

// NewRouter builds the HTTP router.
func NewRouter(registry Registry, opts Options) chi.Router {
	h := &handler{registry: registry, logger: logging.GetLogger("server")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(newLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/block-types", h.listBlockTypes)
	r.Get("/block-types/{namespace}/{name}", h.getBlockType)
	r.Get("/block-types/{namespace}/{name}/styles", h.getStyles)
	r.Get("/block-types/{namespace}/{name}/variations", h.getVariations)
	r.Get("/unprocessed-block-types", h.listUnprocessed)
	r.Get("/categories", h.listCategories)
	r.Get("/collections", h.listCollections)
	r.Get("/fallbacks", h.getFallbacks)

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.ErrNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errors.ErrInvalidInput, r.Method+" is not allowed")
	})
	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, readTimeout time.Duration) error {
	logger := logging.GetLogger("server")
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, errors.ErrServer, "server stopped").WithDetail(errors.DetailAddr, addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrServer, "server shutdown failed").WithDetail(errors.DetailAddr, addr)
	}
	logger.Info().Str("addr", addr).Msg("Server stopped")
	return nil
}

func (h *handler) listBlockTypes(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	out := []*blocktype.Settings{}
	for _, s := range h.registry.GetBlockTypes() {
		if category != "" && s.Category != category {
			continue
		}
		if search != "" && !h.registry.IsMatchingSearchTerm(s.Name, search) {
			continue
		}
		out = append(out, s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getBlockType(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handler) getStyles(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	styles := h.registry.GetBlockStyles(s.Name)
	if styles == nil {
		styles = []blocktype.Style{}
	}
	writeJSON(w, http.StatusOK, styles)
}

func (h *handler) getVariations(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	variations := h.registry.GetBlockVariations(s.Name, r.URL.Query().Get("scope"))
	if variations == nil {
		variations = []blocktype.Variation{}
	}
	writeJSON(w, http.StatusOK, blocktype.ExportValue(variations))
}

func (h *handler) listUnprocessed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.GetUnprocessedBlockTypes())
}

func (h *handler) listCategories(w http.ResponseWriter, _ *http.Request) {
	categories := h.registry.GetCategories()
	out := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		out = append(out, exported(c.Slug, "slug", c.Title, c.Icon))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) listCollections(w http.ResponseWriter, _ *http.Request) {
	collections := h.registry.GetCollections()
	out := make([]map[string]any, 0, len(collections))
	for _, c := range collections {
		out = append(out, exported(c.Namespace, "namespace", c.Title, c.Icon))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getFallbacks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.GetFallbacks())
}

func (h *handler) lookup(w http.ResponseWriter, r *http.Request) (*blocktype.Settings, bool) {
	name := chi.URLParam(r, "namespace") + "/" + chi.URLParam(r, "name")
	s, ok := h.registry.GetBlockType(name)
	if !ok {
		writeError(w, http.StatusNotFound, errors.ErrNotFound, "block type "+name+" is not registered")
		return nil, false
	}
	return s, true
}

func exported(key, keyName, title string, icon any) map[string]any {
	out := map[string]any{keyName: key, "title": title}
	if icon != nil {
		out["icon"] = blocktype.ExportValue(icon)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := logging.GetLogger("server")
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code errors.ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func newLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if r.URL.Path == "/metrics" {
				return
			}
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
