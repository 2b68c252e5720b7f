package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/goclaw/kernelbus/config"
	"github.com/goclaw/kernelbus/pkg/logger"
)

// Server is the admin HTTP server.
type Server struct {
	server *http.Server
	logger logger.Logger

	mu   sync.Mutex
	addr net.Addr
}

// NewServer creates an admin server for handler.
func NewServer(cfg config.AdminConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
		},
		logger: log,
	}
}

// Start listens and serves until Shutdown. It returns nil after a graceful
// shutdown.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to start admin server: %w", err)
	}

	s.mu.Lock()
	s.addr = l.Addr()
	s.mu.Unlock()

	s.logger.Info("Starting admin server", "addr", l.Addr().String())
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Admin server failed", "error", err)
		return fmt.Errorf("admin server: %w", err)
	}
	return nil
}

// Addr returns the bound address once Start is listening, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down admin server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown admin server: %w", err)
	}
	s.logger.Info("Admin server stopped")
	return nil
}
