// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"application-gateway/internal/common/config"
	"application-gateway/internal/common/logger"
	"application-gateway/internal/common/observability"
	"application-gateway/internal/discord"
	"application-gateway/internal/lifecycle"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CodeExchanger performs the OAuth2 authorization-code exchange.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*discord.Identity, error)
}

// Lifecycle is the controller surface the HTTP adapter drives.
type Lifecycle interface {
	Submit(ctx context.Context, sub lifecycle.Submission, now time.Time) error
	Decide(ctx context.Context, kind lifecycle.DecisionKind, identity string, now time.Time) (lifecycle.DecideResult, error)
}

// Server wires the gin engine to the lifecycle controller and the
// platform collaborators.
type Server struct {
	engine    *gin.Engine
	lifecycle Lifecycle
	exchanger CodeExchanger
	verifier  *discord.Verifier
	obs       *observability.Observability
	logger    logger.Logger
	cfg       config.ServerConfig
}

func New(cfg config.ServerConfig, lc Lifecycle, exchanger CodeExchanger, verifier *discord.Verifier, obs *observability.Observability, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:    engine,
		lifecycle: lc,
		exchanger: exchanger,
		verifier:  verifier,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "http"}),
		cfg:       cfg,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.Use(s.requestLogger())

	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.POST("/oauth2/token", s.handleTokenExchange)
	s.engine.POST("/apply", s.handleApply)
	s.engine.POST("/interactions", s.handleInteraction)

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	debug := s.engine.Group("/debug/pprof")
	debug.GET("/", gin.WrapF(pprof.Index))
	debug.GET("/profile", gin.WrapF(pprof.Profile))
	debug.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	debug.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

// requestLogger records every request through the structured logger and
// the observability counters.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := fmt.Sprintf("%d", c.Writer.Status())

		if s.obs != nil {
			s.obs.RecordRequest(c.Request.Context(), route, status)
			s.obs.RecordRequestDuration(c.Request.Context(), route, duration)
		}
		s.logger.Debug("request handled", map[string]interface{}{
			"method":   c.Request.Method,
			"route":    route,
			"status":   c.Writer.Status(),
			"duration": duration.String(),
		})
	}
}

// Handler exposes the engine for tests and for the http.Server wiring.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving HTTP until the context is cancelled, then shuts the
// listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.engine,
		ReadTimeout:  config.GetDuration(s.cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{
			"address": s.cfg.Address,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
