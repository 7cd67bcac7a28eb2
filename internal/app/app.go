// Package app wires configuration, storage, the API client and the HTTP
// server together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/jjenkins/liturgical/internal/cache"
	"github.com/jjenkins/liturgical/internal/config"
	"github.com/jjenkins/liturgical/internal/handlers"
	"github.com/jjenkins/liturgical/internal/logger"
	"github.com/jjenkins/liturgical/internal/metrics"
	"github.com/jjenkins/liturgical/internal/service"
	"github.com/jjenkins/liturgical/internal/shortcode"
	"github.com/jjenkins/liturgical/internal/store"
)

// App holds every long-lived dependency, built once at startup.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Cache    cache.Store
	Prefs    store.PreferenceStore
	Client   *service.CalendarClient
	Clock    *service.Clock
	Renderer *shortcode.Renderer

	db *sqlx.DB
}

// New builds the application from cfg. The cache and preference backends are
// chosen by configuration; Close releases them.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.New(),
		Clock:   service.NewClock(cfg.Location()),
	}

	switch cfg.Cache.Driver {
	case config.CacheRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.Cache = cache.NewRedis(client)
	default:
		a.Cache = cache.NewMemory()
	}

	if cfg.DatabaseURL != "" {
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = db

		settings := store.NewSettingsStore(db)
		if err := settings.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.Prefs = settings
	} else {
		a.Prefs = store.NewMemoryPreferences()
	}

	a.Client = service.NewCalendarClient(a.Cache, service.ClientOptions{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		CalendarTTL: cfg.Cache.CalendarTTL,
		ListTTL:     cfg.Cache.ListTTL,
		Metrics:     a.Metrics,
		Logger:      log.Named("api"),
	})
	a.Renderer = shortcode.NewRenderer(a.Client, a.Prefs, a.Clock, log.Named("shortcode"))

	log.Info("application initialized",
		zap.String("env", cfg.Env),
		zap.String("cache", cfg.Cache.Driver),
		zap.Bool("database", a.db != nil),
		zap.String("timezone", cfg.Timezone),
	)
	return a, nil
}

// Activate stores the default preferences that are not set yet.
func (a *App) Activate(ctx context.Context) error {
	if err := a.Prefs.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to store default preferences: %w", err)
	}
	return nil
}

// Server builds the fiber application with all routes.
func (a *App) Server() *fiber.App {
	f := fiber.New(fiber.Config{
		AppName:      "Liturgical Calendar",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	f.Use(recover.New())
	f.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	f.Use(logger.Middleware(a.Logger))

	f.Get("/health", handlers.HealthHandler())
	f.Get("/metrics", handlers.MetricsHandler(a.Metrics))

	// Embeddable fragments
	f.Get("/embed/calendar", handlers.CalendarEmbedHandler(a.Renderer))
	f.Get("/embed/banner", handlers.BannerEmbedHandler(a.Renderer))

	admin := handlers.Admin{
		Calendar: a.Client,
		Prefs:    a.Prefs,
		Clock:    a.Clock,
		Validate: validator.New(),
		Logger:   a.Logger.Named("admin"),
	}
	if a.Config.AdminOpen() {
		a.Logger.Warn("admin endpoints are open: set ADMIN_PASSWORD_HASH to protect them")
	}

	group := f.Group("/admin", handlers.AdminAuth(a.Config.Admin.User, a.Config.Admin.PasswordHash, a.Config.AdminOpen()))
	group.Get("/settings", handlers.SettingsPageHandler(admin))
	group.Post("/settings", handlers.SaveSettingsHandler(admin))
	group.Post("/preview", handlers.PreviewHandler(admin))
	group.Post("/clear-cache", handlers.ClearCacheHandler(admin))

	return f
}

// Close releases the cache and database connections.
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn("failed to close cache", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Warn("failed to close database", zap.Error(err))
		}
	}
}
