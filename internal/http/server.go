// Package http serves the dashboard page and its JSON API.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"workboard/internal/core"
	"workboard/internal/dashboard"
	applog "workboard/internal/log"
	"workboard/internal/services"
	appweb "workboard/web"
)

type ctxKey int

const requestIDKey ctxKey = iota

// Options tunes a Server. Zero values pick defaults.
type Options struct {
	ExportFilename string
	RateLimit      int
	RateWindow     time.Duration
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	svc            *services.EntryService
	templates      *template.Template
	rateLimiter    *rateLimiter
	metrics        *securityMetrics
	logger         *applog.Logger
	httpLog        *applog.StructuredLogger
	exportFilename string

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.EntryService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	exportName := opts.ExportFilename
	if exportName == "" {
		exportName = dashboard.DefaultFilename
	}

	s := &Server{
		svc:            svc,
		rateLimiter:    newRateLimiter(opts.RateLimit, opts.RateWindow),
		metrics:        &securityMetrics{},
		logger:         logger,
		httpLog:        applog.NewStructuredLogger(logger),
		exportFilename: exportName,
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("GET /api/entries/{id}", s.handleGetEntry)
	mux.HandleFunc("PUT /api/entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)
	mux.HandleFunc("POST /api/entries/{id}/image", s.handleUploadImage)
	mux.HandleFunc("GET /api/entries/{id}/image", s.handleGetImage)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /export.csv", s.handleExport)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withRequestLogging(s.withSecurity(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

var templateFuncs = template.FuncMap{
	"inr":         core.FormatINR,
	"statusLabel": statusLabel,
	"longDate":    func(d core.Date) string { return d.Long() },
}

// SecurityStats reports rate-limit rejections and flagged requests.
func (s *Server) SecurityStats() SecurityStats {
	return s.metrics.snapshot()
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestLogging assigns a request id, stores a request-scoped logger in
// the context and logs completion with the final status.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	scoped := applog.Middleware(s.logger, requestIDFromRequest)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		scoped.ServeHTTP(rw, r)

		s.httpLog.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), extractClientIP(r))
	})
}

func requestIDFromRequest(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// withSecurity sets security headers, flags probing requests and rate limits
// mutations per client IP.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		logger := applog.FromContext(r.Context())

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(r.Context(), "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}

		applySecurityHeaders(w.Header(), r.TLS != nil)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			TooManyRequestsError(int(s.rateLimiter.window / time.Second)).Write(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isMutation(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
