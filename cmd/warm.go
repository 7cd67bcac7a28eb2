package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jjenkins/liturgical/internal/config"
	"github.com/jjenkins/liturgical/internal/service"
)

var (
	warmDays    int
	warmSundays int
)

// errEphemeralCache is returned when the configured cache would not outlive
// the warm command.
var errEphemeralCache = errors.New("warm needs CACHE_DRIVER=redis: the memory cache is discarded when the command exits")

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Pre-fetch upcoming calendar days into the cache",
	Long: `Warm downloads the upcoming calendar days with the stored preferences and
stores them in the cache, together with the prayer book and bible version
lists. Run it from cron shortly before the cache TTL expires so embeds never
wait on the API. The server and this command must share a Redis cache
(CACHE_DRIVER=redis); warm refuses to run against the in-process memory cache.

Examples:
  # Today plus the next six days and the next four Sundays
  liturgical warm

  # Only the next eight Sundays
  liturgical warm --days 0 --sundays 8`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := requireSharedCache(cfg); err != nil {
			return err
		}

		a, cleanup, err := build(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		prefs, err := a.Prefs.Load(ctx)
		if err != nil {
			return logFatal(a, "failed to load preferences", err)
		}

		dates := a.Clock.UpcomingDates(warmDays, warmSundays)
		warmer := service.NewWarmer(a.Client, a.Logger)
		stats, err := warmer.Warm(ctx, dates, prefs.API())
		if err != nil {
			return logFatal(a, "warm cancelled", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Warmed %d of %d dates in %s\n", stats.Fetched, stats.Total, stats.Duration.Round(time.Millisecond))
		if stats.Failed > 0 {
			return errors.New("some dates failed to warm")
		}
		return nil
	},
}

func requireSharedCache(cfg *config.Config) error {
	if cfg.Cache.Driver != config.CacheRedis {
		return errEphemeralCache
	}
	return nil
}

func init() {
	rootCmd.AddCommand(warmCmd)
	warmCmd.Flags().IntVar(&warmDays, "days", 7, "Number of consecutive days to fetch starting today")
	warmCmd.Flags().IntVar(&warmSundays, "sundays", 4, "Number of upcoming Sundays to fetch")
}
