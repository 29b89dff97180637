// Package api exposes the KPI pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rekpi/app"
	"rekpi/domain/forecast"
	"rekpi/domain/schema"
	"rekpi/internal"
	"rekpi/internal/config"
)

// Server wires the pipeline and forecast services behind a gin router.
type Server struct {
	router    *gin.Engine
	cfg       *config.Config
	pipeline  *app.Pipeline
	forecasts *app.ForecastService
	log       *internal.Logger
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(cfg *config.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:    gin.New(),
		cfg:       cfg,
		pipeline:  app.NewPipeline(schema.Default(), logger),
		forecasts: app.NewForecastService(forecastConfig(cfg), logger),
		log:       logger,
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func forecastConfig(cfg *config.Config) forecast.Config {
	fc := forecast.DefaultConfig()
	fc.Seasonal.Period = cfg.Forecast.SeasonalPeriod
	fc.MinObservations = cfg.Forecast.MinObservations
	fc.FitTimeout = cfg.Forecast.FitTimeout
	return fc
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.POST("/kpis", s.handleKPIs)
	v1.POST("/forecast", s.handleForecast)
	v1.POST("/report", s.handleReport)
	v1.GET("/demo", s.handleDemo)
}

// Router exposes the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the server on the configured port.
func (s *Server) Start() error {
	addr := ":" + s.cfg.Server.Port
	s.log.Info("listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
