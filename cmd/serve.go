package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/desertthunder/melodi/internal/server"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP API until the context is cancelled or SIGINT/SIGTERM arrives.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = int(port)
	}

	s, err := r.Store()
	if err != nil {
		return err
	}
	assistant, err := r.Assistant()
	if err != nil {
		return err
	}

	srv := server.New(server.Opts{
		Store:     s,
		Assistant: assistant,
		Search:    r.Search(),
		Logger:    r.logger,
	})

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.serve(ctx, ln, srv.Handler(), cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)
}

func (r *Runner) serve(ctx context.Context, ln net.Listener, handler http.Handler, readTimeout, writeTimeout int) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadTimeout:       time.Duration(readTimeout) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
