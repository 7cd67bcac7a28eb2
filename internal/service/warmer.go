package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/liturgical/internal/apperr"
	"github.com/jjenkins/liturgical/internal/model"
)

// WarmStats tracks cache warming statistics
type WarmStats struct {
	Total    int
	Fetched  int
	Failed   int
	Duration time.Duration
}

type warmSource interface {
	GetCalendar(ctx context.Context, date string, prefs model.APIPreferences) (*model.CalendarEntry, error)
	GetPrayerBooks(ctx context.Context) ([]model.PrayerBook, error)
	GetBibleVersions(ctx context.Context) ([]model.BibleVersion, error)
}

// Warmer pre-fetches calendar days so the first visitor does not wait for
// the API.
type Warmer struct {
	client warmSource
	logger *zap.Logger
}

// NewWarmer creates a new Warmer
func NewWarmer(client warmSource, logger *zap.Logger) *Warmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Warmer{client: client, logger: logger}
}

// Warm fetches the option lists and every date for prefs. Individual failures
// are counted and logged; only cancellation stops the run early.
func (w *Warmer) Warm(ctx context.Context, dates []string, prefs model.APIPreferences) (*WarmStats, error) {
	start := time.Now()
	stats := &WarmStats{Total: len(dates)}

	if _, err := w.client.GetPrayerBooks(ctx); err != nil {
		w.logger.Warn("failed to warm prayer books", zap.String("error", apperr.Detail(err)))
	}
	if _, err := w.client.GetBibleVersions(ctx); err != nil {
		w.logger.Warn("failed to warm bible versions", zap.String("error", apperr.Detail(err)))
	}

	for idx, date := range dates {
		select {
		case <-ctx.Done():
			stats.Duration = time.Since(start)
			return stats, ctx.Err()
		default:
		}

		progress := fmt.Sprintf("[%d/%d]", idx+1, stats.Total)
		if _, err := w.client.GetCalendar(ctx, date, prefs); err != nil {
			stats.Failed++
			w.logger.Warn("failed to warm date", zap.String("progress", progress), zap.String("date", date), zap.String("error", apperr.Detail(err)))
			continue
		}
		stats.Fetched++
		w.logger.Debug("warmed date", zap.String("progress", progress), zap.String("date", date))
	}

	stats.Duration = time.Since(start)
	w.logger.Info("cache warm complete",
		zap.Int("total", stats.Total),
		zap.Int("fetched", stats.Fetched),
		zap.Int("failed", stats.Failed),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}
