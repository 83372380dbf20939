// Package server exposes the latest assessment over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg"
	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
)

// AssessmentProvider produces assessments on demand
type AssessmentProvider interface {
	GetAssessment() eeg.Assessment
	WindowFill() (int, int)
}

// StatsProvider reports ingestion counters
type StatsProvider func() common.SourceStats

// AssessmentObserver is notified of every assessment served
type AssessmentObserver interface {
	ObserveAssessment(eeg.Assessment)
}

// Config contains HTTP server settings
type Config struct {
	Addr            string        `json:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	EnableMetrics   bool          `json:"enable_metrics"`
	AllowOrigins    []string      `json:"allow_origins"`
}

// DefaultConfig returns the default server settings
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8000",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		EnableMetrics:   true,
		AllowOrigins:    []string{"*"},
	}
}

// Server serves /eeg-latest, /health and /metrics
type Server struct {
	config    *Config
	assessor  AssessmentProvider
	stats     StatsProvider
	observers []AssessmentObserver
	metrics   *Metrics
	engine    *gin.Engine
	started   time.Time
	logger    logging.Logger
}

// NewServer creates the HTTP server. stats may be nil when no ingestor runs.
func NewServer(config *Config, assessor AssessmentProvider, stats StatsProvider, logger logging.Logger, observers ...AssessmentObserver) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	s := &Server{
		config:    config,
		assessor:  assessor,
		stats:     stats,
		observers: observers,
		started:   time.Now(),
		logger: logger.WithFields(logging.Fields{
			"component": "http_server",
			"addr":      config.Addr,
		}),
	}

	if config.EnableMetrics {
		s.metrics = NewMetrics(assessor, stats)
		s.observers = append(s.observers, s.metrics)
	}

	s.engine = s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if len(s.config.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.config.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	if s.metrics != nil {
		r.Use(s.metrics.middleware())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	}

	r.GET("/eeg-latest", s.handleLatest)
	r.GET("/health", s.handleHealth)

	return r
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is done
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", logging.Fields{
			"listen_addr": listener.Addr().String(),
		})
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
