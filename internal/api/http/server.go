// Package http assembles the gin engine and owns the HTTP listener
// lifecycle.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/privlend/v1/internal/api/http/handlers"
	"github.com/privlend/v1/internal/api/http/middleware"
	"github.com/privlend/v1/internal/api/websocket"
	"github.com/privlend/v1/internal/config"
	"github.com/privlend/v1/internal/core/infrastructure/metrics"
	"github.com/privlend/v1/pkg/interfaces/infrastructure/log"
)

// Server is the HTTP front of the proving service.
type Server struct {
	cfg    config.Server
	logger log.Logger
	engine *gin.Engine
	srv    *http.Server
}

// NewServer builds the engine, wires middleware and registers all routes.
// Metrics and hub may be nil; the corresponding endpoints are then omitted.
func NewServer(cfg config.Server, logger log.Logger, h *handlers.Handlers, m *metrics.Metrics, hub *websocket.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog(logger))
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}

	engine.GET("/health", h.Health)
	engine.GET("/health/live", h.Live)
	engine.GET("/health/ready", h.Ready)
	if m != nil {
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}
	if hub != nil {
		engine.GET("/ws", gin.WrapH(hub))
	}

	v1 := engine.Group("/api/v1")
	{
		proof := v1.Group("/proof")
		proof.POST("/collateral", h.CollateralProof)
		proof.POST("/ltv", h.LTVProof)
		proof.POST("/liquidation", h.LiquidationProof)
		proof.POST("/verify", h.VerifyProof)
		proof.GET("/jobs/:id", h.ProofJob)

		v1.POST("/commitment", h.Commitment)
		v1.GET("/price", h.Price)

		position := v1.Group("/position")
		position.GET("", h.ListPositions)
		position.GET("/:address", h.GetPosition)
		position.PUT("/:address", h.PutPosition)
		position.DELETE("/:address", h.DeletePosition)
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		srv: &http.Server{
			Addr:         cfg.Listen,
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout.Std(),
			WriteTimeout: cfg.WriteTimeout.Std(),
		},
	}
}

// Engine exposes the router for httptest-based tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("http server listening on %s", s.cfg.Listen)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Std())
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Infof("http server stopped")
	return nil
}
