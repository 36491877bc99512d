// Package httpserver wires the API handlers, middleware, storage and
// collaborators into one HTTP server.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/fdg312/fitplan/internal/ai"
	"github.com/fdg312/fitplan/internal/auth"
	"github.com/fdg312/fitplan/internal/blob"
	"github.com/fdg312/fitplan/internal/config"
	"github.com/fdg312/fitplan/internal/generation"
	"github.com/fdg312/fitplan/internal/plans"
	"github.com/fdg312/fitplan/internal/storage"
	"github.com/fdg312/fitplan/internal/storage/memory"
	"github.com/fdg312/fitplan/internal/storage/postgres"
	"github.com/fdg312/fitplan/internal/tdee"
)

type Server struct {
	config         *config.Config
	logger         zerolog.Logger
	mux            *http.ServeMux
	storage        storage.Storage
	storageKind    string
	blobs          blob.Store
	blobMode       string
	provider       ai.Provider
	authMiddleware *auth.Middleware
}

type Option func(*Server)

// WithStorage replaces the storage chosen from DATABASE_URL.
func WithStorage(st storage.Storage, kind string) Option {
	return func(s *Server) { s.storage, s.storageKind = st, kind }
}

// WithBlobStore replaces the store chosen from BLOB_MODE.
func WithBlobStore(store blob.Store, mode string) Option {
	return func(s *Server) { s.blobs, s.blobMode = store, mode }
}

// WithProvider replaces the completion provider chosen from AI_MODE.
func WithProvider(p ai.Provider) Option {
	return func(s *Server) { s.provider = p }
}

func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.storage == nil {
		s.initStorage(ctx)
	}
	if s.blobs == nil {
		store, mode, err := blob.NewBlobStore(ctx, cfg.Blob, logger)
		if err != nil {
			return nil, err
		}
		s.blobs, s.blobMode = store, mode
	}
	if s.provider == nil {
		s.provider = ai.NewProvider(cfg, logger)
	}

	s.routes()
	return s, nil
}

// initStorage picks Postgres when a database URL is set and falls back to
// memory when it cannot connect.
func (s *Server) initStorage(ctx context.Context) {
	if s.config.DatabaseURL == "" {
		s.logger.Info().Msg("storage: in-memory")
		s.storage, s.storageKind = memory.New(), "memory"
		return
	}

	pg, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		s.logger.Error().Err(err).Msg("storage: postgres connect failed, fallback=memory")
		s.storage, s.storageKind = memory.New(), "memory"
		return
	}
	s.logger.Info().Msg("storage: postgres connected")
	s.storage, s.storageKind = pg, "postgres"
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.config.MetricsEnabled {
		s.mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Auth
	authService := auth.NewService(s.config)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)
	if s.config.AuthMode == config.AuthModeGoogle {
		auth.SetupGoogle(s.config, s.logger)
	}
	authHandler := auth.NewHandlers(s.config, authService, s.logger)
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)
	s.mux.HandleFunc("GET /v1/auth/google", authHandler.HandleGoogleBegin)
	s.mux.HandleFunc("GET "+auth.GoogleCallbackPath, authHandler.HandleGoogleCallback)
	s.mux.HandleFunc("GET /v1/auth/me", authHandler.HandleMe)
	s.mux.HandleFunc("POST /v1/auth/signout", authHandler.HandleSignOut)

	// TDEE
	tdeeHandler := tdee.NewHandler(s.logger)
	s.mux.HandleFunc("POST /v1/tdee", tdeeHandler.HandleCompute)
	s.mux.HandleFunc("GET /v1/tdee/activity-levels", tdeeHandler.HandleActivityLevels)

	// Plan generation
	genService := generation.NewService(s.provider, generation.OptionsFromConfig(s.config), nil, s.logger)
	genHandler := generation.NewHandlers(genService, s.logger)
	s.mux.HandleFunc("POST /v1/plans/workout/generate", genHandler.HandleGenerateWorkout)
	s.mux.HandleFunc("POST /v1/plans/meal/generate", genHandler.HandleGenerateMeal)
	s.mux.HandleFunc("GET /v1/schemas/{kind}", genHandler.HandleSchema)

	// Saved plans
	planService := plans.NewService(s.storage, s.blobs, plans.OptionsFromConfig(s.config, s.blobMode), s.logger)
	planHandler := plans.NewHandlers(planService, s.logger)
	s.mux.HandleFunc("POST /v1/plans", auth.RequireUser(planHandler.HandleSave))
	s.mux.HandleFunc("POST /v1/plans/screenshot", auth.RequireUser(planHandler.HandleSaveScreenshot))
	s.mux.HandleFunc("GET /v1/plans", auth.RequireUser(planHandler.HandleList))
	s.mux.HandleFunc("GET /v1/plans/{id}", auth.RequireUser(planHandler.HandleGet))
	s.mux.HandleFunc("DELETE /v1/plans/{id}", auth.RequireUser(planHandler.HandleDelete))
	s.mux.HandleFunc("GET /v1/plans/{id}/image", auth.RequireUser(planHandler.HandleImage))
	s.mux.HandleFunc("GET /v1/plans/{id}/export.pdf", auth.RequireUser(planHandler.HandleExportPDF))
}

// Handler returns the router wrapped in the middleware chain, outermost
// first: request logging, CORS, rate limit, auth.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMiddleware.Authenticate(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	handler = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(handler)
	handler = hlog.RemoteAddrHandler("remote_addr")(handler)
	handler = hlog.RequestIDHandler("req_id", "X-Request-Id")(handler)
	handler = hlog.NewHandler(s.logger)(handler)
	return handler
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Blob    string `json:"blob"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Storage: s.storageKind, Blob: s.blobMode}
	if err := s.storage.Ping(ctx); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("healthz: storage ping failed")
		resp.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
		// Generation waits on the completion provider.
		WriteTimeout: time.Duration(s.config.AITimeoutSeconds+30) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases storage resources.
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
