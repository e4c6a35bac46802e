package chatserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"chatcore/internal/config"
	"chatcore/internal/logging"
	"chatcore/internal/metrics"
	"chatcore/internal/registry"
)

// Server owns the listening socket and the shared registry every accepted
// connection is handed.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics metrics.Collector
	reg     *registry.Registry

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// New builds a Server. coll may be metrics.NoopCollector{} when metrics
// are disabled.
func New(cfg config.Config, logger *slog.Logger, coll metrics.Collector) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: coll,
		reg:     registry.New(coll),
	}
}

// Run binds the configured listen address and accepts connections until
// ctx is cancelled, at which point it closes the listener and every open
// connection's socket, waits for the connection handlers to tear down, and
// returns.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen.Address)
	if err != nil {
		return fmt.Errorf("chatserver: listen %s: %w", s.cfg.Listen.Address, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("server listening", slog.String("addr", s.cfg.Listen.Address))

	ctx = logging.WithContext(ctx, s.logger)

	go func() {
		<-ctx.Done()
		s.logger.Info("server shutting down")
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				s.logger.Info("server stopped")
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
					return nil
				}
			}
			s.logger.Warn("accept failed", slog.String("error", err.Error()))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			stop := context.AfterFunc(ctx, func() { conn.Close() })
			defer stop()
			c := NewConnection(ctx, conn, s.reg, s.metrics, s.cfg)
			c.Run()
		}()
	}
}

// Shutdown closes the listener, causing Run's accept loop to exit once any
// in-flight Accept returns.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}
