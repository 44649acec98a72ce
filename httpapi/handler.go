package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/ggoodman/chatcomponents-go/directive"
	"github.com/ggoodman/chatcomponents-go/internal/logctx"
	"github.com/ggoodman/chatcomponents-go/internal/metrics"
	"github.com/ggoodman/chatcomponents-go/pipeline"
	"github.com/ggoodman/chatcomponents-go/toolcall"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ http.Handler = (*Handler)(nil)

var jsonMediaType = contenttype.NewMediaType("application/json")

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// writeJSONError emits a minimal JSON error body.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": status, "message": msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Option configures the Handler.
type Option func(*newConfig)

type newConfig struct {
	logger     *slog.Logger
	registry   *prometheus.Registry
	extractor  *component.Extractor
	chartTools []string
	preprocess bool
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *newConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRegistry registers the handler's counters on reg and serves reg at
// /metrics. By default each Handler gets its own registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *newConfig) { c.registry = reg }
}

// WithExtractor sets the extractor used by /v1/extract.
func WithExtractor(e *component.Extractor) Option {
	return func(c *newConfig) { c.extractor = e }
}

// WithChartTools sets the tool names advertised by /v1/schema.
func WithChartTools(names ...string) Option {
	return func(c *newConfig) { c.chartTools = names }
}

// WithPreprocess makes /v1/extract rewrite directives unless the request
// sets preprocess=false.
func WithPreprocess(on bool) Option {
	return func(c *newConfig) { c.preprocess = on }
}

// Handler serves the extraction API.
type Handler struct {
	log        *slog.Logger
	proc       *pipeline.Processor
	chartTools []string
	mux        *http.ServeMux
}

// New builds a Handler.
func New(opts ...Option) *Handler {
	cfg := &newConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}

	h := &Handler{
		log:        logctx.New(cfg.logger),
		chartTools: cfg.chartTools,
	}
	extractor := cfg.extractor
	if extractor == nil {
		extractor = component.NewExtractor(component.WithLogger(h.log))
	}
	h.proc = pipeline.New(
		pipeline.WithLogger(h.log),
		pipeline.WithExtractor(extractor),
		pipeline.WithMetrics(metrics.New(cfg.registry)),
		pipeline.WithPreprocess(cfg.preprocess),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/extract", h.handleExtract)
	mux.HandleFunc("POST /v1/preprocess", h.handlePreprocess)
	mux.HandleFunc("POST /v1/resolve", h.handleResolve)
	mux.HandleFunc("GET /v1/schema", h.handleSchema)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.registry, promhttp.HandlerOpts{}))
	h.mux = mux
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r.WithContext(logctx.WithRequestData(r.Context(), &logctx.RequestData{
		RequestID:  uuid.NewString(),
		Method:     r.Method,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		Path:       r.URL.Path,
	})))
}

var errUnsupportedMediaType = errors.New("content-type must be application/json")

// decodeBody reads a JSON request body into v, writing the error response
// itself when it fails.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ctx := r.Context()
	ctype, err := contenttype.GetMediaType(r)
	if err != nil || !ctype.Matches(jsonMediaType) {
		writeJSONError(w, http.StatusUnsupportedMediaType, errUnsupportedMediaType.Error())
		h.log.WarnContext(ctx, "content_type.unsupported", slog.String("content_type", r.Header.Get("Content-Type")))
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		}
		h.log.WarnContext(ctx, "http.body.invalid", slog.String("err", err.Error()))
		return false
	}
	return true
}

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	preprocess := h.proc.Preprocessing()
	if q := r.URL.Query().Get("preprocess"); q != "" {
		on, err := strconv.ParseBool(q)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid preprocess flag %q", q))
			return
		}
		preprocess = on
	}

	var msg component.Message
	if !h.decodeBody(w, r, &msg) {
		return
	}
	out := h.proc.ProcessWith(ctx, msg, preprocess)
	writeJSON(w, http.StatusOK, out)
	h.log.InfoContext(ctx, "http.extract.ok",
		slog.String("strategy", string(out.Strategy)),
		slog.Duration("dur", time.Since(start)),
	)
}

type preprocessBody struct {
	Text string `json:"text"`
}

func (h *Handler) handlePreprocess(w http.ResponseWriter, r *http.Request) {
	var body preprocessBody
	if !h.decodeBody(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, preprocessBody{Text: directive.Rewrite(body.Text)})
}

type resolveResponse struct {
	Obligation any `json:"obligation"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var raw map[string]any
	if !h.decodeBody(w, r, &raw) {
		return
	}
	d, ok := component.DescriptorFrom(raw)
	if !ok {
		writeJSONError(w, http.StatusUnprocessableEntity, "descriptor requires a string type and non-null data")
		return
	}
	env, ok := h.proc.Resolve(ctx, d)
	if !ok {
		writeJSON(w, http.StatusOK, resolveResponse{})
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Obligation: env})
}

type schemaResponse struct {
	Descriptor any             `json:"descriptor"`
	Tools      []toolcall.Spec `json:"tools"`
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schemaResponse{
		Descriptor: toolcall.DescriptorSchema(),
		Tools:      toolcall.Specs(h.chartTools...),
	})
}
