package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/liturgical/internal/app"
	"github.com/jjenkins/liturgical/internal/config"
	"github.com/jjenkins/liturgical/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "liturgical",
	Short: "Liturgical calendar embeds",
	Long: `Serve the Anglican liturgical calendar as embeddable HTML fragments.

The server fetches each day from the liturgical calendar API, caches it,
and renders either a detailed calendar block or a colored banner. An admin
screen selects the prayer book, bible version and banner defaults.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the application. The caller must
// call the returned cleanup function.
func bootstrap(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return build(ctx, cfg)
}

func build(ctx context.Context, cfg *config.Config) (*app.App, func(), error) {
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		a.Close()
		_ = log.Sync()
	}
	return a, cleanup, nil
}

func logFatal(a *app.App, msg string, err error) error {
	a.Logger.Error(msg, zap.Error(err))
	return fmt.Errorf("%s: %w", msg, err)
}
