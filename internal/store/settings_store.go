package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jjenkins/liturgical/internal/model"
)

// Setting names as stored in liturgical_settings.name
const (
	settingPrayerBook     = "prayer_book_code"
	settingBibleVersion   = "bible_version"
	settingBannerStyle    = "banner_style"
	settingBannerElements = "banner_elements"
)

const settingsSchema = `
	CREATE TABLE IF NOT EXISTS liturgical_settings (
		name       TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

type settingRow struct {
	Name  string `db:"name"`
	Value string `db:"value"`
}

// SettingsStore handles database operations for preferences. Each preference
// is one name/value row; banner elements are stored comma separated.
type SettingsStore struct {
	db *sqlx.DB
}

// NewSettingsStore creates a new SettingsStore
func NewSettingsStore(db *sqlx.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Migrate creates the settings table if it does not exist.
func (s *SettingsStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, settingsSchema); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

// Load retrieves the stored preferences. Missing rows keep their defaults.
func (s *SettingsStore) Load(ctx context.Context) (model.Preferences, error) {
	var rows []settingRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT name, value FROM liturgical_settings`); err != nil {
		return model.Preferences{}, fmt.Errorf("failed to load settings: %w", err)
	}

	prefs := model.DefaultPreferences()
	for _, row := range rows {
		switch row.Name {
		case settingPrayerBook:
			prefs.PrayerBookCode = row.Value
		case settingBibleVersion:
			prefs.BibleVersion = row.Value
		case settingBannerStyle:
			prefs.BannerStyle = row.Value
		case settingBannerElements:
			prefs.BannerElements = splitElements(row.Value)
		}
	}
	return prefs, nil
}

// Save upserts every preference in a single transaction.
func (s *SettingsStore) Save(ctx context.Context, prefs model.Preferences) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO liturgical_settings (name, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	for _, row := range toRows(prefs) {
		if _, err := tx.ExecContext(ctx, query, row.Name, row.Value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", row.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

// EnsureDefaults inserts the default rows without touching existing ones.
func (s *SettingsStore) EnsureDefaults(ctx context.Context) error {
	query := `
		INSERT INTO liturgical_settings (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`
	for _, row := range toRows(model.DefaultPreferences()) {
		if _, err := s.db.ExecContext(ctx, query, row.Name, row.Value); err != nil {
			return fmt.Errorf("failed to add default setting %s: %w", row.Name, err)
		}
	}
	return nil
}

func toRows(p model.Preferences) []settingRow {
	return []settingRow{
		{Name: settingPrayerBook, Value: p.PrayerBookCode},
		{Name: settingBibleVersion, Value: p.BibleVersion},
		{Name: settingBannerStyle, Value: p.BannerStyle},
		{Name: settingBannerElements, Value: strings.Join(p.BannerElements, ",")},
	}
}

// splitElements returns an empty, non-nil slice for an empty value: a saved
// empty selection is different from a missing row.
func splitElements(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
