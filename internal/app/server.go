package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const fallbackShutdownTimeout = 15 * time.Second

// Run serves HTTP until SIGINT, SIGTERM or SIGHUP, or until the server
// fails, then releases every resource. The returned error is the serve
// failure, if any.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	lis, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		a.shutdown(ctx)
		return fmt.Errorf("listen %s: %w", a.httpServer.Addr, err)
	}

	return a.serve(ctx, lis)
}

func (a *App) serve(ctx context.Context, lis net.Listener) error {
	served := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "address", lis.Addr().String())
		served <- a.httpServer.Serve(lis)
	}()

	var err error
	select {
	case <-ctx.Done():
		slog.Info("shutdown requested")
	case err = <-served:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	a.shutdown(ctx)
	return err
}

func (a *App) shutdownTimeout() time.Duration {
	if d := a.config.GetSecond("app.server.shutdown_timeout_seconds"); d > 0 {
		return d
	}
	return fallbackShutdownTimeout
}

// shutdown drains the HTTP server first so no request can schedule work on
// the goroutine manager after it is closed.
func (a *App) shutdown(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), a.shutdownTimeout())
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "http server shutdown", "error", err)
	}

	a.cancel()

	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background tasks finished with errors", "error", err, "dropped", a.goroutine.Dropped())
	}

	a.closeAll(ctx)
	slog.InfoContext(ctx, "application stopped")
}
