package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/KaramelBytes/tabscope/internal/analysis"
	"github.com/KaramelBytes/tabscope/internal/dataset"
	"github.com/KaramelBytes/tabscope/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures one dashboard.
type Options struct {
	// DataPath is the default dataset loaded on every render pass.
	DataPath string
	// TopN bars in the frequency chart.
	TopN int
	// Bins in the numeric histogram.
	Bins int
	// HeadRows shown in previews.
	HeadRows int
	// MaxUploadBytes caps a single upload request.
	MaxUploadBytes int64
	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		DataPath:        "MOCK_DATA.csv",
		TopN:            analysis.DefaultTopN,
		Bins:            analysis.DefaultBins,
		HeadRows:        5,
		MaxUploadBytes:  200 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server renders the dashboard. Each request is an independent render pass;
// the dataset cache is the only state shared between them.
type Server struct {
	opt     Options
	log     zerolog.Logger
	loader  *dataset.Loader
	cache   *dataset.Cache
	metrics *metrics.Collector
	tmpl    *template.Template
	router  *chi.Mux
}

// New wires the router, templates and cache.
func New(opt Options, loader *dataset.Loader, m *metrics.Collector, log zerolog.Logger) (*Server, error) {
	def := DefaultOptions()
	if opt.TopN <= 0 {
		opt.TopN = def.TopN
	}
	if opt.Bins <= 0 {
		opt.Bins = def.Bins
	}
	if opt.HeadRows <= 0 {
		opt.HeadRows = def.HeadRows
	}
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = def.MaxUploadBytes
	}
	if opt.ShutdownTimeout <= 0 {
		opt.ShutdownTimeout = def.ShutdownTimeout
	}
	if m == nil {
		m = metrics.New()
	}
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s := &Server{
		opt:     opt,
		log:     log.With().Str("component", "dashboard").Logger(),
		loader:  loader,
		cache:   dataset.NewCache(loader),
		metrics: m,
		tmpl:    tmpl,
		router:  chi.NewRouter(),
	}
	s.cache.OnHit(m.CacheHit)
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Post("/upload", s.handleUpload)
	s.router.Post("/feedback", s.handleFeedback)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", addr).Str("data_path", s.opt.DataPath).Msg("dashboard listening")
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

	s.log.Info().Dur("timeout", s.opt.ShutdownTimeout).Msg("starting graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opt.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
