// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManimeghanathA/chief-of-staff-ai/internal/assistant"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/config"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
)

// Assistant is the workflow entry point the server dispatches chat
// requests to.
type Assistant interface {
	Run(ctx context.Context, userID, message string) *assistant.RequestContext
}

// Server wires the HTTP surface over the assistant and the Google
// connectors.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server

	assistant Assistant
	calendar  assistant.CalendarReader
	writer    assistant.CalendarWriter
	mail      assistant.MailReader

	metrics   *Metrics
	logger    logging.Logger
	startTime time.Time

	shutdownTimeout time.Duration
}

// NewServer builds the HTTP server. calendar, writer, and mail back the
// direct REST endpoints; chat requests flow through the assistant workflow.
func NewServer(cfg config.ServerConfig, asst Assistant, calendar assistant.CalendarReader, writer assistant.CalendarWriter, mail assistant.MailReader, logger logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine:          engine,
		assistant:       asst,
		calendar:        calendar,
		writer:          writer,
		mail:            mail,
		metrics:         NewMetrics(),
		logger:          logging.OrNop(logger),
		startTime:       time.Now(),
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	s.engine.POST("/chat", s.instrument("chat", s.handleChat))
	s.engine.GET("/calendar/events", s.instrument("calendar_events", s.handleCalendarEvents))
	s.engine.POST("/calendar/create-event", s.instrument("calendar_create", s.handleCalendarCreate))
	s.engine.GET("/gmail/latest", s.instrument("gmail_latest", s.handleGmailLatest))
}

// instrument wraps a handler with the request counter and latency histogram.
func (s *Server) instrument(route string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		handler(c)
		s.metrics.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		s.metrics.requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler exposes the underlying gin engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}
