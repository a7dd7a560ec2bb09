package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"voicedecoder/internal/config"
	"voicedecoder/internal/device"
	"voicedecoder/internal/estimate"
	"voicedecoder/internal/history"
	"voicedecoder/internal/logging"
	"voicedecoder/internal/preflight"
	"voicedecoder/internal/runexec"
	"voicedecoder/internal/services"
	"voicedecoder/internal/whisper"
)

// DeviceSelector picks the compute device.
type DeviceSelector interface {
	Select(ctx context.Context) device.Choice
}

// Estimator projects processing time for a file.
type Estimator interface {
	Estimate(ctx context.Context, path string, size whisper.Size) (estimate.Result, error)
}

// HistoryStore persists and reads runs. *history.Store satisfies it.
type HistoryStore interface {
	runexec.Recorder
	List(ctx context.Context, limit int) ([]history.Run, error)
	Get(ctx context.Context, id string) (*history.Run, error)
}

// Dependencies are the collaborators the service drives.
type Dependencies struct {
	Config      *config.Config
	Transcriber runexec.Transcriber
	Selector    DeviceSelector
	Estimator   Estimator
	// History is optional.
	History HistoryStore
	Logger  *slog.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithQueueSize bounds the number of waiting submissions.
func WithQueueSize(size int) Option {
	return func(s *Server) { s.queue = newJobQueue(size) }
}

// WithRetainedJobs bounds how many finished jobs are kept in memory.
func WithRetainedJobs(n int) Option {
	return func(s *Server) { s.retainJobs = n }
}

// Server is the local transcription service.
type Server struct {
	deps   Dependencies
	logger *slog.Logger
	hub    *Hub
	queue  *jobQueue
	router chi.Router

	retainJobs int

	mu       sync.Mutex
	listener net.Listener
	http     *http.Server
	cancel   context.CancelFunc
}

// New builds a Server. Start must be called before submissions are processed.
func New(deps Dependencies, opts ...Option) (*Server, error) {
	if deps.Config == nil {
		return nil, services.Wrap(services.ErrConfiguration, "server", "init", "config is required", nil)
	}
	if deps.Transcriber == nil {
		return nil, services.Wrap(services.ErrConfiguration, "server", "init", "transcriber is required", nil)
	}
	s := &Server{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "api-server"),
		queue:  newJobQueue(DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retainJobs > 0 {
		s.queue.retain = s.retainJobs
	}
	s.hub = NewHub(deps.Logger)
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(authMiddleware(s.deps.Config.Server.Token))

	r.Get("/ws", s.hub.HandleConnection)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/device", s.handleDevice)
		r.Get("/estimate", s.handleEstimate)
		r.Route("/transcriptions", func(r chi.Router) {
			r.Post("/", s.handleSubmit)
			r.Get("/", s.handleList)
			r.Get("/{id}", s.handleGet)
		})
	})
	return r
}

// Start binds the listener and launches the hub, the worker, and the HTTP
// server. Everything stops when ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.deps.Config.Server.Bind)
	if bind == "" {
		return services.Wrap(services.ErrConfiguration, "server", "listen", "server.bind is empty", nil)
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return runCtx },
	}

	s.mu.Lock()
	s.listener = listener
	s.http = srv
	s.cancel = cancel
	s.mu.Unlock()

	go s.hub.Run(runCtx)
	s.startWorker(runCtx)

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-runCtx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and waits for the active run to return.
func (s *Server) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	srv := s.http
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(shutdownCtx)
	}
	s.queue.wg.Wait()
}

// Preflight runs readiness checks against the configured paths and tools.
func (s *Server) Preflight(ctx context.Context) []preflight.Result {
	results := preflight.RunAll(ctx, s.deps.Config)
	if s.deps.Selector != nil {
		results = append(results, preflight.CheckDevice(ctx, s.deps.Selector))
	}
	return results
}

func (s *Server) recorder() runexec.Recorder {
	if s.deps.History == nil {
		return nil
	}
	return s.deps.History
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("elapsed", time.Since(started)),
		)
	})
}
