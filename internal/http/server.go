// Package http exposes the upload, report, reset, and account endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/auth"
	"tally/internal/pipeline"
	"tally/internal/query"
)

type Server struct {
	http.Server
	processor *pipeline.Processor
	queries   *query.Service
	accounts  *auth.Service

	rateLimiter    *rateLimiter
	maxUploadBytes int64
	itemsPerPage   int

	shutdownOnce sync.Once
}

// Options tune request handling; zero values fall back to defaults.
type Options struct {
	MaxUploadBytes int64
	ItemsPerPage   int
}

const defaultMaxUploadBytes = 16 << 20 // 16MB

// NewServer wires routes and middleware and returns a ready-to-run server.
func NewServer(addr string, processor *pipeline.Processor, queries *query.Service, accounts *auth.Service, opts Options) *Server {
	mux := http.NewServeMux()

	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.ItemsPerPage <= 0 {
		opts.ItemsPerPage = query.DefaultItemsPerPage
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		processor:      processor,
		queries:        queries,
		accounts:       accounts,
		rateLimiter:    newRateLimiter(),
		maxUploadBytes: opts.MaxUploadBytes,
		itemsPerPage:   opts.ItemsPerPage,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/upload", s.withMiddleware(s.handleUpload))
	mux.HandleFunc("/api/reset", s.withMiddleware(s.handleReset))
	mux.HandleFunc("/api/chart-of-accounts", s.withMiddleware(s.viewHandler(query.ChartOfAccounts, "chart_of_accounts")))
	mux.HandleFunc("/api/collections-accounts", s.withMiddleware(s.viewHandler(query.CollectionsAccounts, "collections_accounts")))
	mux.HandleFunc("/api/bad-transactions", s.withMiddleware(s.viewHandler(query.BadTransactions, "bad_transactions")))
	mux.HandleFunc("/api/create-account", s.withMiddleware(s.handleCreateAccount))
	mux.HandleFunc("/api/login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("/users", s.withMiddleware(s.handleListUsers))

	return s
}

// Shutdown stops the server and its background cleanup once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds CORS, security headers, rate limiting, and request
// logging around a handler. The frontend is a browser SPA on another origin,
// so CORS is applied to every API route and preflights are answered here.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		requestID := "req_" + uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
