// Package server exposes the tokenizer over HTTP: POST /tokenize plus
// /health and /model inspection endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	vaporetto "github.com/example/go-vaporetto"
	"github.com/example/go-vaporetto/internal/config"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Segmenter produces a token list from text.
type Segmenter interface {
	Tokenize(text string) vaporetto.TokenList
}

// ModelDescriber reports the shape of the loaded model.
type ModelDescriber interface {
	ModelInfo() vaporetto.ModelInfo
}

type options struct {
	maxTextBytes   int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   65536,
		workers:        0,
		requestTimeout: 10 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /tokenize.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers caps concurrent tokenization requests. Zero disables the cap.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

type handler struct {
	seg   Segmenter
	model ModelDescriber
	opts  options
	sem   chan struct{} // semaphore bounding concurrent requests
	log   *slog.Logger
}

// NewHandler returns an http.Handler serving /health, /model, and POST /tokenize.
func NewHandler(seg Segmenter, model ModelDescriber, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		seg:   seg,
		model: model,
		opts:  opts,
		log:   opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/model", h.handleModel)
	mux.HandleFunc("/tokenize", h.handleTokenize)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

func (h *handler) handleModel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.model.ModelInfo())
}

type tokenizeRequest struct {
	Text string `json:"text"`
}

type tokenJSON struct {
	Surface string   `json:"surface"`
	Start   int      `json:"start"`
	End     int      `json:"end"`
	Tags    []string `json:"tags,omitempty"`
}

type tokenizeResponse struct {
	Tokens []tokenJSON `json:"tokens"`
}

func (h *handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req tokenizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	// Acquire a worker slot, honouring cancellation while waiting.
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
			// slot acquired
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return
		}
		defer func() { <-h.sem }()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	list, err := tokenizeWithContext(ctx, h.seg, req.Text)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		h.log.WarnContext(r.Context(), "tokenization timed out",
			slog.Int("text_len", len(req.Text)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusGatewayTimeout, "tokenization timed out")
		return
	}

	resp := tokenizeResponse{Tokens: make([]tokenJSON, 0, list.Len())}
	for _, tok := range list.Tokens() {
		tj := tokenJSON{
			Surface: tok.Surface(),
			Start:   tok.Start(),
			End:     tok.End(),
		}
		for k := 0; k < tok.NumTags(); k++ {
			tag, err := tok.Tag(k)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			tj.Tags = append(tj.Tags, tag)
		}
		resp.Tokens = append(resp.Tokens, tj)
	}

	h.log.InfoContext(r.Context(), "tokenization complete",
		slog.Int("text_len", len(req.Text)),
		slog.Int("tokens", list.Len()),
		slog.Int64("duration_ms", durationMS),
	)

	writeJSON(w, http.StatusOK, resp)
}

// tokenizeWithContext runs the synchronous tokenization call under a
// deadline. Tokenization itself is linear and uninterruptible, so the
// deadline only covers pathological inputs.
func tokenizeWithContext(ctx context.Context, seg Segmenter, text string) (vaporetto.TokenList, error) {
	done := make(chan vaporetto.TokenList, 1)
	go func() {
		done <- seg.Tokenize(text)
	}()
	select {
	case list := <-done:
		return list, nil
	case <-ctx.Done():
		return vaporetto.TokenList{}, ctx.Err()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	tok             *vaporetto.Tokenizer
	shutdownTimeout time.Duration
}

func New(cfg config.Config, tok *vaporetto.Tokenizer) *Server {
	return &Server{
		cfg:             cfg,
		tok:             tok,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	h := NewHandler(s.tok, s.tok,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}
