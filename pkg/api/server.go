// Package api exposes the decision service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turnos-ai/orchestrator/pkg/metrics"
	"github.com/turnos-ai/orchestrator/pkg/orchestrator"
)

// Server wraps the gin engine and its lifecycle.
type Server struct {
	router  *orchestrator.Router
	metrics *metrics.Metrics
	engine  *gin.Engine
	http    *http.Server
}

func NewServer(router *orchestrator.Router, m *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{router: router, metrics: m}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestIDMiddleware(), loggingMiddleware())

	engine.POST("/orchestrator/decide", s.handleDecide)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	s.engine = engine
	return s
}

// Handler exposes the engine for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
