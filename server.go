package busboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/busboard/arrivals"
	"github.com/theoremus-urban-solutions/busboard/config"
	"github.com/theoremus-urban-solutions/busboard/metrics"
)

// ArrivalsResolver produces per-stop arrival results.
type ArrivalsResolver interface {
	ResolveAll(ctx context.Context, stopIDs []string) []arrivals.StopResult
}

// VehicleLocator finds the last known position of a vehicle.
type VehicleLocator interface {
	Lookup(ctx context.Context, vehicleID string) (*arrivals.VehiclePosition, error)
}

// ForecastFetcher returns a forecast document, or nil when unavailable.
type ForecastFetcher interface {
	FetchForecast(ctx context.Context, location string, days int) json.RawMessage
}

// Deps are the components the HTTP handlers call into.
type Deps struct {
	Arrivals ArrivalsResolver
	Vehicles VehicleLocator
	Weather  ForecastFetcher
	Metrics  *metrics.Collector
}

// Server is the busboard HTTP API.
type Server struct {
	cfg        *config.AppConfig
	logger     *zap.Logger
	deps       Deps
	now        func() time.Time
	httpServer *http.Server
}

// NewServer creates a Server. Call Start to begin serving.
func NewServer(cfg *config.AppConfig, logger *zap.Logger, deps Deps) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		deps:   deps,
		now:    time.Now,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Routes builds the router with every enabled endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	if s.cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	if s.cfg.Server.EnableRequestLogging {
		r.Use(s.requestLogger)
	}
	if s.deps.Metrics != nil {
		r.Use(s.recordMetrics)
	}
	r.Use(middleware.Recoverer)
	if s.cfg.Server.CORSEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/api/arrivals", s.handleArrivals)
	r.Get("/api/vehicle/{vehicleId}", s.handleVehicle)
	r.Get("/api/weather", s.handleWeather)

	if s.cfg.Server.HealthCheckEnabled {
		r.Get("/health", s.handleHealth)
	}
	if s.cfg.Server.MetricsEnabled && s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	return r
}

// Start serves in the background. A listener failure is fatal.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()
	s.logger.Info("server listening",
		zap.String("addr", s.httpServer.Addr),
		zap.String("environment", s.cfg.Server.Environment))
	s.announceEndpoints()
}

// announceEndpoints logs the served URLs in development.
func (s *Server) announceEndpoints() {
	if !s.cfg.IsDevelopment() {
		return
	}
	paths := []string{"/api/arrivals", "/api/vehicle/{vehicleId}", "/api/weather"}
	if s.cfg.Server.HealthCheckEnabled {
		paths = append(paths, "/health")
	}
	if s.cfg.Server.MetricsEnabled && s.deps.Metrics != nil {
		paths = append(paths, "/metrics")
	}
	base := fmt.Sprintf("http://localhost:%d", s.cfg.Server.Port)
	for _, p := range paths {
		s.logger.Info("endpoint", zap.String("url", base+p))
	}
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// HandleGracefulShutdown blocks until SIGINT or SIGTERM, then shuts down
// with a ten second grace period.
func (s *Server) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	s.logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		s.logger.Error("server shutdown error", zap.Error(err))
		return
	}
	s.logger.Info("server shut down successfully")
}
