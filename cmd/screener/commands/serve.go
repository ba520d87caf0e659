package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhzhou/ashare-screener/internal/api"
	"github.com/mhzhou/ashare-screener/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the screening API server",
	Long: `Starts the HTTP API server.

Endpoints:
  GET  /health                  - Health check
  GET  /api/v1/universe         - Qualified universe
  POST /api/v1/screen           - Run a screening pass
  GET  /api/v1/screen/export    - Run and download CSV
  GET  /api/v1/screen/ws        - Run with websocket progress

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 8080`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	if servePort != "" {
		app.cfg.Port = servePort
	}

	handler := handlers.NewScreenHandler(app.runner, app.logger)
	router := api.NewRouter(handler, app.logger)
	server := api.New(app.cfg, app.logger, router)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	PrintSuccess(fmt.Sprintf("API server listening on :%s", app.cfg.Port))
	PrintInfo("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		PrintError(fmt.Sprintf("Server failed: %v", err))
		return err
	case sig := <-quit:
		fmt.Println()
		PrintInfo(fmt.Sprintf("Received %s, shutting down", sig))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		PrintError(fmt.Sprintf("Shutdown failed: %v", err))
		return err
	}

	PrintSuccess("Server stopped")
	return nil
}
