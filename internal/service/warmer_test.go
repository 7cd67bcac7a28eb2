package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/liturgical/internal/apperr"
	"github.com/jjenkins/liturgical/internal/cache"
	"github.com/jjenkins/liturgical/internal/model"
)

type stubSource struct {
	failDates map[string]bool
	listErr   error
	fetched   []string
}

func (s *stubSource) GetCalendar(_ context.Context, date string, _ model.APIPreferences) (*model.CalendarEntry, error) {
	s.fetched = append(s.fetched, date)
	if s.failDates[date] {
		return nil, apperr.HTTPStatus(500)
	}
	return &model.CalendarEntry{Date: date}, nil
}

func (s *stubSource) GetPrayerBooks(context.Context) ([]model.PrayerBook, error) {
	return nil, s.listErr
}

func (s *stubSource) GetBibleVersions(context.Context) ([]model.BibleVersion, error) {
	return nil, s.listErr
}

func TestWarmer_CountsFailures(t *testing.T) {
	src := &stubSource{failDates: map[string]bool{"2024-06-10": true}, listErr: errors.New("down")}
	w := NewWarmer(src, nil)

	stats, err := w.Warm(context.Background(), []string{"2024-06-09", "2024-06-10", "2024-06-16"}, defaultPrefs)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, []string{"2024-06-09", "2024-06-10", "2024-06-16"}, src.fetched)
}

func TestWarmer_StopsOnCancel(t *testing.T) {
	src := &stubSource{}
	w := NewWarmer(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := w.Warm(ctx, []string{"2024-06-09"}, defaultPrefs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Fetched)
	assert.Empty(t, src.fetched)
}

func TestWarmer_FillsClientCache(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(cache.NewMemory(), nil)

	stats, err := NewWarmer(c, nil).Warm(context.Background(), []string{"2024-06-09", "2024-06-16"}, defaultPrefs)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 4, api.count(), "two lists and two days")

	_, err = c.GetCalendar(context.Background(), "2024-06-16", defaultPrefs)
	require.NoError(t, err)
	_, err = c.GetBibleVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, api.count(), "warmed entries are served from cache")
}
