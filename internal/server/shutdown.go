package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const hookTimeout = 10 * time.Second

// GracefulServer runs an http.Server until SIGINT/SIGTERM, then drains
// in-flight requests and runs the registered shutdown hooks in order.
type GracefulServer struct {
	server          *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
	hooks           []func(ctx context.Context) error
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, shutdownTimeout time.Duration) *GracefulServer {
	return &GracefulServer{
		server:          server,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// RegisterShutdownHook appends a hook. Hooks run after the listener has
// drained, so they may safely flush caches or log final statistics.
// Not safe to call once ListenAndServe has started.
func (gs *GracefulServer) RegisterShutdownHook(fn func(ctx context.Context) error) {
	gs.hooks = append(gs.hooks, fn)
}

func (gs *GracefulServer) ListenAndServe() error {
	serverErrors := make(chan error, 1)

	go func() {
		gs.logger.Info("listening",
			"addr", gs.server.Addr,
			"read_timeout", gs.server.ReadTimeout,
			"write_timeout", gs.server.WriteTimeout,
		)
		serverErrors <- gs.server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case sig := <-stop:
		gs.logger.Info("shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), gs.shutdownTimeout)
		defer cancel()

		return gs.shutdown(ctx)
	}
}

func (gs *GracefulServer) shutdown(ctx context.Context) error {
	gs.logger.Info("draining HTTP server", "timeout", gs.shutdownTimeout)

	if err := gs.server.Shutdown(ctx); err != nil {
		gs.logger.Error("HTTP server shutdown failed", "error", err)
		return fmt.Errorf("http shutdown: %w", err)
	}

	var firstErr error
	for i, hook := range gs.hooks {
		hookCtx, cancel := context.WithTimeout(ctx, hookTimeout)
		err := hook(hookCtx)
		cancel()

		if err != nil {
			gs.logger.Error("shutdown hook failed", "hook", i, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("shutdown hook %d: %w", i, err)
			}
		}
	}

	if firstErr != nil {
		return firstErr
	}
	gs.logger.Info("shutdown complete")
	return nil
}
