package cmd

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the liturgical calendar web server",
	Long: `Start the web server that serves the embeddable fragments and the admin screen.

Routes:
  GET  /embed/calendar?date=&show=
  GET  /embed/banner?date=&style=&show=
  GET  /admin/settings, POST /admin/settings
  POST /admin/preview, POST /admin/clear-cache
  GET  /health, GET /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, cleanup, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := a.Activate(ctx); err != nil {
			return logFatal(a, "activation failed", err)
		}

		// Flag wins over PORT when given explicitly
		listenPort := a.Config.Port
		if cmd.Flags().Changed("port") {
			listenPort = port
		}

		server := a.Server()
		errCh := make(chan error, 1)
		go func() {
			a.Logger.Info("starting server", zap.Int("port", listenPort))
			errCh <- server.Listen(":" + strconv.Itoa(listenPort))
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return logFatal(a, "failed to start server", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			return logFatal(a, "graceful shutdown failed", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to run the server on (overrides PORT)")
}
