package cmd

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

	"github.com/notefig/notefig/internal/pipeline"
	"github.com/notefig/notefig/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the figure extraction API",
	Long: `Start an HTTP server that provides REST and WebSocket endpoints for
figure extraction and content block synthesis.

The server provides the following endpoints:
  POST /extract    - Extract figure crops from an uploaded image
  POST /blocks     - Synthesize content blocks from text
  GET  /health     - Health check endpoint
  GET  /ws/extract - WebSocket endpoint with streaming progress
  GET  /metrics    - Prometheus metrics

Examples:
  notefig serve
  notefig serve --port 8080
  notefig serve --host 0.0.0.0 --port 3000`,
	SilenceUsage: true,
	RunE:         runServeCommand,
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	host := cfg.Server.Host
	if cmd.Flags().Changed("host") {
		host, _ = cmd.Flags().GetString("host")
	}

	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}

	corsOrigin := cfg.Server.CORSOrigin
	if cmd.Flags().Changed("cors-origin") {
		corsOrigin, _ = cmd.Flags().GetString("cors-origin")
	}

	maxUploadMB := cfg.Server.MaxUploadMB
	if cmd.Flags().Changed("max-upload-size") {
		maxUploadMB, _ = cmd.Flags().GetInt("max-upload-size")
	}

	timeout := cfg.Server.TimeoutSec
	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetInt("timeout")
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if cmd.Flags().Changed("shutdown-timeout") {
		shutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	source, err := buildRegionSource(cmd, cfg)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg.ToPipelineConfig(), source, cfg.Tables(), slog.Default())
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	srv := server.NewServer(p, server.Config{
		Host:        host,
		Port:        port,
		CORSOrigin:  corsOrigin,
		MaxUploadMB: int64(maxUploadMB),
		TimeoutSec:  timeout,
	})

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(timeout) * time.Second,
		WriteTimeout:      time.Duration(timeout) * time.Second,
	}

	go func() {
		slog.Info("Starting notefig server", "host", host, "port", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(shutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "host to bind the server to")
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on")
	serveCmd.Flags().String("cors-origin", "", "allowed CORS origin")
	serveCmd.Flags().Int("max-upload-size", 0, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 0, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 0, "graceful shutdown timeout in seconds")
	serveCmd.Flags().String("regions-file", "", "replay a saved detection payload instead of calling the backend")
	serveCmd.Flags().String("vision-url", "", "vision backend base URL")
	serveCmd.Flags().String("vision-model", "", "vision backend model name")
	serveCmd.Flags().String("vision-key", "", "vision backend API key")
}
