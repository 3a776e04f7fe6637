package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docgen/internal/logger"
	"docgen/internal/server"
)

const (
	readHeaderTimeout     = 5 * time.Second
	gracefulShutdownDelay = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document API over HTTP",
	Long: `Start an HTTP server exposing document generation:

  POST /api/documents               generate invoice and/or act, JSON result
  POST /api/documents/{kind}/html   generate one document, rendered HTML
  GET  /api/rate?currency=&date=    official exchange rate
  GET  /api/qr?payload=             payment QR code as PNG
  GET  /healthz                     liveness probe

Documents issued through the API are recorded in the register but not
written to OUTPUT_DIR.`,
	Example: `  docgen serve
  docgen serve --addr 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := loadApp(ctx, log)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = a.cfg.HTTPAddr
	}

	handler := server.NewHandler(a.issuer, a.rates, a.renderer, a.qr, a.cfg.BaseCurrency)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(handler),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server starting")
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("HTTP server failed")
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownDelay)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
