// Package server provides the HTTP API around the parsing engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kaldeqca/sex-sim-ai/internal/config"
	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/observability"
	"github.com/kaldeqca/sex-sim-ai/internal/parsing"
	"github.com/kaldeqca/sex-sim-ai/internal/server/middleware"
	"github.com/kaldeqca/sex-sim-ai/internal/server/ratelimit"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
)

// RequestIDHeader carries the per-request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxCardBodyBytes bounds card uploads, which carry whole images.
const maxCardBodyBytes = 16 << 20

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	engine         *parsing.Engine
	defaultProfile *locale.Profile
	defaultMode    types.Mode
	maxBodyBytes   int64
	rateLimiter    *ratelimit.Limiter
	jwtService     *JWTService
	authHandler    *AuthHandler
	logger         *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port int
	// App supplies locale, mode, engine limits and API clients.
	App *config.Config
	// JWT enables bearer authentication when non-nil.
	JWT       *config.JWTConfig
	Hasher    *config.SecretHasher
	RateLimit *ratelimit.Config
	Logger    *slog.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	app := cfg.App
	if app == nil {
		builtin := config.Builtin()
		app = &builtin
	}

	profile, err := app.Profile()
	if err != nil {
		return nil, fmt.Errorf("failed to load locale profile: %w", err)
	}
	mode := types.ModeClassic
	if app.Mode != "" {
		if mode, err = types.ParseMode(app.Mode); err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.DiscardLogger()
	}

	maxInput := app.MaxInputBytes
	if maxInput <= 0 {
		maxInput = parsing.DefaultMaxInputBytes
	}

	s := &Server{
		engine: parsing.New(
			parsing.WithMaxInputBytes(maxInput),
			parsing.WithStrictStructure(app.StrictStructure),
			parsing.WithLenientRepair(app.LenientRepair),
			parsing.WithNumberedOptions(app.NumberedOptions),
			parsing.WithLogger(logger),
		),
		defaultProfile: profile,
		defaultMode:    mode,
		// JSON escaping can double the text; leave room for the envelope.
		maxBodyBytes: int64(maxInput)*2 + 64<<10,
		rateLimiter:  ratelimit.NewLimiter(cfg.RateLimit),
		logger:       logger,
	}

	if cfg.JWT != nil {
		hasher := cfg.Hasher
		if hasher == nil {
			if hasher, err = config.NewSecretHasher(); err != nil {
				return nil, fmt.Errorf("failed to create secret hasher: %w", err)
			}
		}
		s.jwtService = NewJWTService(cfg.JWT)
		s.authHandler = NewAuthHandler(app, hasher, s.jwtService)
	}

	port := cfg.Port
	if port == 0 {
		port = app.Port
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /parse", s.handleParse)
	mux.HandleFunc("GET /profiles", s.handleListProfiles)
	mux.HandleFunc("GET /profiles/{name}", s.handleGetProfile)
	mux.HandleFunc("POST /cards/extract", s.handleExtractCard)
	mux.HandleFunc("POST /cards/embed", s.handleEmbedCard)
	if s.authHandler != nil {
		mux.HandleFunc("POST /auth/token", s.authHandler.IssueToken)
	}

	return s.withRequestID(s.withLogging(s.withCORS(s.withRateLimit(s.withAuth(mux)))))
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr, "auth", s.jwtService != nil)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

type requestIDKey struct{}

// RequestID returns the ID assigned to the request by the server.
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// withRequestID reuses a well-formed incoming X-Request-ID or assigns a new one.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader+", Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withAuth requires a bearer token on every route except the health check and
// token issuance. It is a no-op when JWT is not configured.
func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.jwtService == nil {
		return next
	}
	protected := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicRoute(r) {
			next.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	})
}

func isPublicRoute(r *http.Request) bool {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		return true
	case r.Method == http.MethodPost && r.URL.Path == "/auth/token":
		return true
	}
	return false
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request completed",
			"request_id", RequestID(r),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"remote", r.RemoteAddr,
			"duration", time.Since(start))
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID keys rate limits by the bearer token when present, else by
// the remote IP.
func (s *Server) extractClientID(r *http.Request) string {
	if s.jwtService != nil {
		if token, ok := middleware.BearerToken(r); ok {
			if claims, err := s.jwtService.ValidateToken(token); err == nil {
				return claims.ClientID.String()
			}
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":      "Rate limit exceeded. Please try again later.",
		"code":       "rate_limit_exceeded",
		"request_id": RequestID(r),
		"limit":      info.Limit,
		"remaining":  info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded", "request_id", RequestID(r), "path", r.URL.Path, "limit", info.Limit)
	writeJSON(w, r, http.StatusTooManyRequests, response)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode JSON response", "request_id", RequestID(r), "error", err)
	}
}

// writeError maps err to a status and writes {"error", "code", "request_id"}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := map[string]any{
		"error":      err.Error(),
		"code":       errorCode(err),
		"request_id": RequestID(r),
	}
	if status == http.StatusInternalServerError {
		slog.Default().Error("request failed", "request_id", RequestID(r), "error", err)
		body["error"] = "internal server error"
	}
	writeJSON(w, r, status, body)
}
