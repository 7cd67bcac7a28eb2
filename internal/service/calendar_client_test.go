package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jjenkins/liturgical/internal/apperr"
	"github.com/jjenkins/liturgical/internal/cache"
	"github.com/jjenkins/liturgical/internal/metrics"
	"github.com/jjenkins/liturgical/internal/model"
)

const pentecostPayload = `{
	"date": "2024-06-09",
	"liturgical_season": "Tempo Comum",
	"liturgical_color": "verde",
	"liturgical_year": "B",
	"sunday_name": "2º Domingo após Pentecostes",
	"collect": [{"title": "Coleta do Dia", "text": "Ó Deus..."}],
	"readings": {
		"gospel": {"reference": "Mc 3.20-35", "content": {"verses": [{"number": 20, "text": "E foi para casa."}]}}
	}
}`

type fakeAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []*http.Request

	calendarStatus int
	calendarBody   string
	listBody       string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		calendarStatus: http.StatusOK,
		calendarBody:   pentecostPayload,
		listBody:       `{"data":[{"code":"loc_2015","name":"LOC 2015","jurisdiction":"IEAB"}]}`,
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(context.Background()))
		status, calendarBody, listBody := f.calendarStatus, f.calendarBody, f.listBody
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/prayer_books", "/api/v1/bible_versions":
			_, _ = w.Write([]byte(listBody))
		default:
			w.WriteHeader(status)
			_, _ = w.Write([]byte(calendarBody))
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) client(store cache.Store, m *metrics.Metrics) *CalendarClient {
	return NewCalendarClient(store, ClientOptions{
		BaseURL: f.server.URL + "/api/v1",
		Timeout: time.Second,
		Metrics: m,
	})
}

// storedEntries empties store and reports how many client entries it held.
func storedEntries(t *testing.T, store cache.Store) int {
	t.Helper()
	n, err := store.DeleteByPrefix(context.Background(), CachePrefix)
	require.NoError(t, err)
	return n
}

var defaultPrefs = model.APIPreferences{PrayerBookCode: "loc_2015", BibleVersion: "nvi"}

func TestGetCalendar_BuildsRequest(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(cache.NewMemory(), nil)

	entry, err := c.GetCalendar(context.Background(), "2024-06-09", defaultPrefs)
	require.NoError(t, err)

	req := api.last()
	assert.Equal(t, "/api/v1/calendar/2024/06/09", req.URL.Path)
	assert.Equal(t, "application/json", req.Header.Get("Accept"))

	var sent model.APIPreferences
	require.NoError(t, json.Unmarshal([]byte(req.URL.Query().Get("preferences")), &sent))
	assert.Equal(t, defaultPrefs, sent)

	assert.Equal(t, "verde", entry.LiturgicalColor)
	assert.Equal(t, "2º Domingo após Pentecostes", entry.DayName())
	require.NotNil(t, entry.Readings.Gospel)
	assert.Equal(t, model.VerseNumber("20"), entry.Readings.Gospel.Content.Verses[0].Number)
	assert.JSONEq(t, pentecostPayload, string(entry.Raw))
}

func TestGetCalendar_CachesPerPreferences(t *testing.T) {
	api := newFakeAPI(t)
	m := metrics.New()
	c := api.client(cache.NewMemory(), m)
	ctx := context.Background()

	_, err := c.GetCalendar(ctx, "2024-06-09", defaultPrefs)
	require.NoError(t, err)
	_, err = c.GetCalendar(ctx, "2024-06-09", defaultPrefs)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count(), "second call should be served from cache")

	other := model.APIPreferences{PrayerBookCode: "loc_2015", BibleVersion: "arc"}
	_, err = c.GetCalendar(ctx, "2024-06-09", other)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count(), "a different bible version must not share the cached entry")

	_, err = c.GetCalendar(ctx, "2024-06-10", defaultPrefs)
	require.NoError(t, err)
	assert.Equal(t, 3, api.count())

	series, err := testutil.GatherAndCount(m.Registry(), "liturgical_cache_hits_total", "liturgical_cache_misses_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one hit series and one miss series for the calendar endpoint")
}

func TestGetCalendar_ClearCacheForcesRefetch(t *testing.T) {
	api := newFakeAPI(t)
	store := cache.NewMemory()
	c := api.client(store, nil)
	ctx := context.Background()

	_, err := c.GetCalendar(ctx, "2024-06-09", defaultPrefs)
	require.NoError(t, err)
	_, err = c.GetPrayerBooks(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "someone_else", []byte("x"), time.Hour))

	n, err := c.ClearCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, _ := store.Get(ctx, "someone_else")
	assert.True(t, ok, "keys outside the namespace survive a clear")

	_, err = c.GetCalendar(ctx, "2024-06-09", defaultPrefs)
	require.NoError(t, err)
	assert.Equal(t, 3, api.count())
}

func TestGetCalendar_InvalidDateSkipsNetwork(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(cache.NewMemory(), nil)

	for _, date := range []string{"2024-6-9", "2024-02-30", "today"} {
		_, err := c.GetCalendar(context.Background(), date, defaultPrefs)
		assert.True(t, apperr.Is(err, apperr.KindInvalidDate), date)
	}
	assert.Equal(t, 0, api.count())
}

func TestGetCalendar_HTTPStatus(t *testing.T) {
	api := newFakeAPI(t)
	api.calendarStatus = http.StatusNotFound
	store := cache.NewMemory()
	c := api.client(store, nil)

	_, err := c.GetCalendar(context.Background(), "2024-06-09", defaultPrefs)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindHTTPStatus))
	assert.Equal(t, "Erro na API: código 404", err.Error())
	assert.Zero(t, storedEntries(t, store), "failures are not cached")
}

func TestGetCalendar_DecodeError(t *testing.T) {
	api := newFakeAPI(t)
	api.calendarBody = `<html>oops</html>`
	store := cache.NewMemory()
	c := api.client(store, nil)

	_, err := c.GetCalendar(context.Background(), "2024-06-09", defaultPrefs)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindDecode))
	assert.Equal(t, "Erro ao processar resposta da API", err.Error())
	assert.Zero(t, storedEntries(t, store))
}

func TestGetCalendar_NetworkError(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(cache.NewMemory(), nil)
	api.server.Close()

	_, err := c.GetCalendar(context.Background(), "2024-06-09", defaultPrefs)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNetwork))
}

func TestGetPrayerBooks_Cached(t *testing.T) {
	api := newFakeAPI(t)
	store := cache.NewMemory()
	c := api.client(store, nil)
	ctx := context.Background()

	books, err := c.GetPrayerBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "LOC 2015 - IEAB", books[0].Label())

	books, err = c.GetPrayerBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, 1, api.count())
	assert.Equal(t, "/api/v1/prayer_books", api.last().URL.Path)
}

func TestGetBibleVersions_MissingDataIsEmptyAndUncached(t *testing.T) {
	api := newFakeAPI(t)
	api.listBody = `{"message":"no versions"}`
	store := cache.NewMemory()
	c := api.client(store, nil)
	ctx := context.Background()

	versions, err := c.GetBibleVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)
	assert.Zero(t, storedEntries(t, store))

	_, err = c.GetBibleVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count())
	assert.Equal(t, "/api/v1/bible_versions", api.last().URL.Path)
}

func TestGetCalendar_ConcurrentCallsAreSafe(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(cache.NewMemory(), nil)

	var failures atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetCalendar(context.Background(), "2024-06-09", defaultPrefs); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, failures.Load())
}

func TestGetCalendar_LogsFailureCause(t *testing.T) {
	api := newFakeAPI(t)
	api.calendarBody = "<html>maintenance</html>"
	core, logs := observer.New(zap.WarnLevel)
	c := NewCalendarClient(cache.NewMemory(), ClientOptions{
		BaseURL: api.server.URL + "/api/v1",
		Logger:  zap.New(core),
	})

	_, err := c.GetCalendar(context.Background(), "2024-06-09", defaultPrefs)
	require.Error(t, err)
	assert.Equal(t, "Erro ao processar resposta da API", err.Error())

	entries := logs.FilterMessage("calendar API request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "calendar", fields["endpoint"])
	assert.Equal(t, "decode", fields["kind"])
	assert.Equal(t, "Erro ao processar resposta da API: response body is not valid JSON", fields["error"])
}

func TestCalendarCacheKey(t *testing.T) {
	assert.Equal(t, "liturgical_cal_2024-06-09_8:loc_2015_3:nvi", CalendarCacheKey("2024-06-09", defaultPrefs))

	split := model.APIPreferences{PrayerBookCode: "loc", BibleVersion: "2015_nvi"}
	assert.NotEqual(t, CalendarCacheKey("2024-06-09", defaultPrefs), CalendarCacheKey("2024-06-09", split))

	// Two clients sharing one store must not read each other's entries when
	// the underscore falls on a different side of the preference values.
	api := newFakeAPI(t)
	store := cache.NewMemory()
	ctx := context.Background()

	_, err := api.client(store, nil).GetCalendar(ctx, "2024-06-09", defaultPrefs)
	require.NoError(t, err)
	_, err = api.client(store, nil).GetCalendar(ctx, "2024-06-09", split)
	require.NoError(t, err)
	require.Equal(t, 2, api.count())

	var sent model.APIPreferences
	require.NoError(t, json.Unmarshal([]byte(api.last().URL.Query().Get("preferences")), &sent))
	assert.Equal(t, split, sent)
}
