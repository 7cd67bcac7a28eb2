package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/liturgical/internal/apperr"
	"github.com/jjenkins/liturgical/internal/cache"
	"github.com/jjenkins/liturgical/internal/metrics"
	"github.com/jjenkins/liturgical/internal/model"
)

const (
	DefaultBaseURL     = "https://api.caminhoanglicano.com.br/api/v1/"
	defaultTimeout     = 15 * time.Second
	defaultCalendarTTL = time.Hour
	defaultListTTL     = 24 * time.Hour

	// CachePrefix namespaces every key this client writes.
	CachePrefix      = "liturgical_"
	prayerBooksKey   = CachePrefix + "prayer_books"
	bibleVersionsKey = CachePrefix + "bible_versions"
)

// Endpoint labels used for logs and metrics
const (
	endpointCalendar      = "calendar"
	endpointPrayerBooks   = "prayer_books"
	endpointBibleVersions = "bible_versions"
)

// ClientOptions configures a CalendarClient. Zero values select the defaults.
type ClientOptions struct {
	BaseURL     string
	Timeout     time.Duration
	CalendarTTL time.Duration
	ListTTL     time.Duration
	HTTPClient  *http.Client
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// CalendarClient handles communication with the liturgical calendar API and
// caches its responses.
type CalendarClient struct {
	baseURL     string
	client      *http.Client
	cache       cache.Store
	metrics     *metrics.Metrics
	logger      *zap.Logger
	calendarTTL time.Duration
	listTTL     time.Duration
}

// NewCalendarClient creates a new calendar API client backed by store.
func NewCalendarClient(store cache.Store, opts ClientOptions) *CalendarClient {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	calendarTTL := opts.CalendarTTL
	if calendarTTL <= 0 {
		calendarTTL = defaultCalendarTTL
	}
	listTTL := opts.ListTTL
	if listTTL <= 0 {
		listTTL = defaultListTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CalendarClient{
		baseURL:     strings.TrimRight(base, "/") + "/",
		client:      httpClient,
		cache:       store,
		metrics:     opts.Metrics,
		logger:      logger,
		calendarTTL: calendarTTL,
		listTTL:     listTTL,
	}
}

// CalendarCacheKey builds the cache key for a day. Both preference values are
// part of the key so data fetched for one prayer book or bible version is never
// served for another. Each value is length-prefixed since codes may contain '_'.
func CalendarCacheKey(date string, prefs model.APIPreferences) string {
	return CachePrefix + "cal_" + date + "_" + keyPart(prefs.PrayerBookCode) + "_" + keyPart(prefs.BibleVersion)
}

func keyPart(s string) string {
	return strconv.Itoa(len(s)) + ":" + s
}

// GetCalendar returns the calendar entry for date (YYYY-MM-DD) as seen with prefs.
func (c *CalendarClient) GetCalendar(ctx context.Context, date string, prefs model.APIPreferences) (*model.CalendarEntry, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}

	key := CalendarCacheKey(date, prefs)
	if body, ok := c.cached(ctx, endpointCalendar, key); ok {
		entry, err := decodeCalendar(body)
		if err == nil {
			return entry, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
	}

	preferences, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}

	parts := strings.Split(date, "-")
	endpoint := fmt.Sprintf("%scalendar/%s/%s/%s", c.baseURL, parts[0], parts[1], parts[2])
	query := url.Values{"preferences": {string(preferences)}}

	body, err := c.fetch(ctx, endpointCalendar, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	entry, err := decodeCalendar(body)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, body, c.calendarTTL)
	return entry, nil
}

// GetPrayerBooks retrieves the prayer books offered by the API.
func (c *CalendarClient) GetPrayerBooks(ctx context.Context) ([]model.PrayerBook, error) {
	var books []model.PrayerBook
	if err := c.getList(ctx, endpointPrayerBooks, prayerBooksKey, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBibleVersions retrieves the bible versions offered by the API.
func (c *CalendarClient) GetBibleVersions(ctx context.Context) ([]model.BibleVersion, error) {
	var versions []model.BibleVersion
	if err := c.getList(ctx, endpointBibleVersions, bibleVersionsKey, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// ClearCache deletes every entry in this client's namespace.
func (c *CalendarClient) ClearCache(ctx context.Context) (int, error) {
	n, err := c.cache.DeleteByPrefix(ctx, CachePrefix)
	if err != nil {
		return n, fmt.Errorf("failed to clear cache: %w", err)
	}
	c.metrics.RecordClear()
	c.logger.Info("cache cleared", zap.Int("entries", n))
	return n, nil
}

// getList fetches a list endpoint and unwraps its data envelope into dest.
// A response without data leaves dest untouched and is not cached.
func (c *CalendarClient) getList(ctx context.Context, endpoint, key string, dest any) error {
	if body, ok := c.cached(ctx, endpoint, key); ok {
		if err := json.Unmarshal(body, dest); err == nil {
			return nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	body, err := c.fetch(ctx, endpoint, c.baseURL+endpoint)
	if err != nil {
		return err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apperr.Decode(err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return apperr.Decode(err)
	}

	c.store(ctx, key, envelope.Data, c.listTTL)
	return nil
}

// cached looks key up, treating store failures as misses.
func (c *CalendarClient) cached(ctx context.Context, endpoint, key string) ([]byte, bool) {
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		ok = false
	}
	c.metrics.RecordCache(endpoint, ok)
	return body, ok
}

func (c *CalendarClient) store(ctx context.Context, key string, body []byte, ttl time.Duration) {
	if err := c.cache.Set(ctx, key, body, ttl); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// fetch performs one GET and records its outcome.
func (c *CalendarClient) fetch(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	start := time.Now()
	body, err := c.get(ctx, rawURL)

	outcome := "ok"
	if err != nil {
		outcome = string(apperr.KindOf(err))
		c.logger.Warn("calendar API request failed",
			zap.String("endpoint", endpoint),
			zap.String("kind", outcome),
			zap.String("error", apperr.Detail(err)),
		)
	}
	c.metrics.ObserveAPI(endpoint, outcome, time.Since(start))

	return body, err
}

func (c *CalendarClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.Network(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Network(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Network(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.HTTPStatus(resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, apperr.Decode(errors.New("response body is not valid JSON"))
	}

	return body, nil
}

func decodeCalendar(body []byte) (*model.CalendarEntry, error) {
	var entry model.CalendarEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, apperr.Decode(err)
	}
	entry.Raw = append(json.RawMessage(nil), body...)
	return &entry, nil
}
