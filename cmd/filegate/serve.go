package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filegate/config"
	filegatehttp "github.com/sagarc03/filegate/http"
)

// shutdownTimeout bounds how long in-flight requests may take to finish.
const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the filegate HTTP server.

Routes:
  PUT    /files/{path}   upload (multipart field "file")
  GET    /files          list, with page_size, directory or page_token
  HEAD   /files/{path}   metadata headers
  GET    /files/{path}   download
  DELETE /files/{path}   delete`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port (env: FILEGATE_SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, _, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	handlerConfig := cfg.HandlerConfig(slog.Default())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           filegatehttp.NewHandler(&handlerConfig, service).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", server.Addr,
			"provider", cfg.Storage.Provider, "bucket", cfg.Storage.Bucket)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
