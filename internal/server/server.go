// Package server exposes the classifier, guidance and stores over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/wildaware/internal/model"
	"github.com/ppiankov/wildaware/internal/pipeline"
	"github.com/ppiankov/wildaware/internal/store"
	"github.com/ppiankov/wildaware/internal/worker"
)

// UserHeader carries the caller's user id, set by the auth gateway
const UserHeader = "X-User-ID"

// Server is the HTTP API
type Server struct {
	engine   *gin.Engine
	pipeline *pipeline.Pipeline
	store    store.Store
	limiter  *worker.Limiter
	metrics  *Metrics
	logger   *zap.Logger
	addr     string
}

// New wires the routes. Chat requests are limited per client IP using cfg's
// rate and burst. The client IP is the peer address unless the peer is one of
// cfg.TrustedProxies.
func New(p *pipeline.Pipeline, st store.Store, cfg model.ServerConfig, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ratePerSecond := cfg.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s := &Server{
		engine:   engine,
		pipeline: p,
		store:    st,
		limiter:  worker.NewLimiter(ratePerSecond, burst),
		metrics:  NewMetrics(),
		logger:   logger,
		addr:     cfg.Addr,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.engine
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/classify", s.classify)
		v1.POST("/chat", s.rateLimit(), s.chat)
		v1.GET("/species", s.listSpecies)
		v1.GET("/species/:name/guidelines", s.speciesGuidelines)
		v1.GET("/rescue", s.rescue)
		v1.POST("/sightings", s.addSighting)
		v1.GET("/sightings", s.listSightings)
		v1.POST("/activities", s.requireUser(), s.logActivity)
		v1.GET("/activities", s.requireUser(), s.listActivities)
	}
}

// Handler returns the router for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// observe records request latency and logs each request
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		s.metrics.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("client_ip", c.ClientIP()))
	}
}

// rateLimit rejects clients that exceed their token bucket
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			s.metrics.rateLimited.Inc()
			abortError(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}

// requireUser aborts with 401 when the user header is missing
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(UserHeader) == "" {
			abortError(c, http.StatusUnauthorized, store.ErrNoUser.Error())
			return
		}
		c.Next()
	}
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
