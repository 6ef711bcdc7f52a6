// Package httpapi hosts the Gin-powered REST surface for stockflow. It maps
// service error kinds onto HTTP statuses and never leaks internal error
// detail to clients.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockflow/config"
	"stockflow/internal/metrics"
	"stockflow/internal/service"
	"stockflow/logger"
)

// Server hosts the stock metadata API.
type Server struct {
	cfg        config.ServerConfig
	log        *logger.Log
	stocks     *service.StockService
	metrics    *metrics.Reporter
	httpServer *http.Server
}

func NewServer(cfg config.ServerConfig, stocks *service.StockService, reporter *metrics.Reporter, log *logger.Log) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		stocks:  stocks,
		metrics: reporter,
	}
}

// Run starts the HTTP server and blocks until the provided context is
// cancelled or the underlying HTTP server exits with an error.
func (s *Server) Run(ctx context.Context) error {
	router, err := s.buildRouter()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.log.WithComponent("httpapi").WithFields(logger.Fields{
		"address": s.cfg.Address,
	}).Info("starting http server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownTimeout := s.cfg.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return err
	}
}

func (s *Server) buildRouter() (*gin.Engine, error) {
	if config.IsProductionLike(config.AppEnvironment()) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	router.Use(s.requestID(), s.requestLogger(), s.cors())
	if s.cfg.RateLimit.Enabled {
		router.Use(s.rateLimit())
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.GET("/stocks", s.listStocks)
	v1.GET("/stocks/:id", s.getStock)

	return router, nil
}
