package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stockpos/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second

	// writeMargin leaves room to encode and send the response after the
	// slowest sale has finished.
	writeMargin = time.Second
)

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func New(cfg config.ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// EffectiveWriteTimeout returns a write timeout no shorter than the longest
// request the server must answer, so a response is never cut off after its
// work committed. A zero configured timeout stays unlimited. A zero
// longestRequest means that request has no bound, so neither can the write.
func EffectiveWriteTimeout(configured, longestRequest time.Duration) time.Duration {
	if configured <= 0 || longestRequest <= 0 {
		return 0
	}
	if needed := longestRequest + writeMargin; configured < needed {
		return needed
	}
	return configured
}

func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("addr", s.httpServer.Addr),
		zap.Duration("writeTimeout", s.httpServer.WriteTimeout),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
